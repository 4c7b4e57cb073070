/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package csvimport builds DataTables from CSV input, detecting a column
// kind for every header unless one is configured.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/google/taxinomia-cube/core/columns"
	"github.com/google/taxinomia-cube/core/tables"
)

var (
	ErrEmpty  = errors.New("csv input is empty")
	ErrNoRows = errors.New("csv input has no data rows")
)

// ColumnType specifies the data type for a column
type ColumnType int

const (
	// ColumnTypeAuto detects the type from the sampled rows (default)
	ColumnTypeAuto ColumnType = iota
	ColumnTypeString
	ColumnTypeInt64
	ColumnTypeFloat64
	ColumnTypeBool
)

func (t ColumnType) String() string {
	switch t {
	case ColumnTypeString:
		return "string"
	case ColumnTypeInt64:
		return "int64"
	case ColumnTypeFloat64:
		return "float64"
	case ColumnTypeBool:
		return "bool"
	}
	return "auto"
}

// ColumnSource defines how a single CSV column is imported.
type ColumnSource struct {
	// Name is the column name (defaults to the header)
	Name        string
	DisplayName string
	// EntityType groups columns that hold the same kind of entity
	EntityType string
	Type       ColumnType
}

// ImportOptions configures CSV import behavior
type ImportOptions struct {
	// HasHeader indicates whether the first row contains column headers
	HasHeader bool
	// Delimiter is the field delimiter (defaults to comma)
	Delimiter rune
	// ColumnSources is keyed by header name
	ColumnSources map[string]ColumnSource
	// SampleSize is the number of rows sampled for type detection (default: 100)
	SampleSize int
}

// DefaultOptions returns default import options
func DefaultOptions() ImportOptions {
	return ImportOptions{
		HasHeader:     true,
		Delimiter:     ',',
		ColumnSources: make(map[string]ColumnSource),
		SampleSize:    100,
	}
}

// ImportFromFile imports a CSV file and returns a DataTable
func ImportFromFile(path string, options ImportOptions) (*tables.DataTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ImportFromReader(file, options)
}

// ImportFromReader imports CSV data from an io.Reader and returns a DataTable.
// Values that do not parse as the column type import as the zero value, or
// NaN for float columns.
func ImportFromReader(reader io.Reader, options ImportOptions) (*tables.DataTable, error) {
	csvReader := csv.NewReader(reader)
	if options.Delimiter != 0 {
		csvReader.Comma = options.Delimiter
	}
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmpty
	}

	var headers []string
	dataRows := records
	if options.HasHeader {
		headers = records[0]
		dataRows = records[1:]
	} else {
		headers = make([]string, len(records[0]))
		for i := range headers {
			headers[i] = fmt.Sprintf("column_%d", i+1)
		}
	}
	if len(dataRows) == 0 {
		return nil, ErrNoRows
	}

	sampleSize := options.SampleSize
	if sampleSize <= 0 {
		sampleSize = 100
	}
	types := detectColumnTypes(headers, dataRows, sampleSize, options.ColumnSources)

	table := tables.NewDataTable()
	for i, header := range headers {
		source := options.ColumnSources[header]
		name, displayName := header, header
		if source.Name != "" {
			name = source.Name
		}
		if source.DisplayName != "" {
			displayName = source.DisplayName
		}
		colDef := columns.NewColumnDef(name, displayName, source.EntityType)

		col := buildColumn(colDef, types[i], dataRows, i)
		if err := table.AddColumn(col); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func buildColumn(colDef *columns.ColumnDef, t ColumnType, rows [][]string, i int) columns.IDataColumn {
	switch t {
	case ColumnTypeInt64:
		col := columns.NewInt64Column(colDef)
		for _, row := range rows {
			n, err := columns.ParseInt64(cell(row, i))
			if err != nil {
				n = 0
			}
			col.Append(n)
		}
		return col
	case ColumnTypeFloat64:
		col := columns.NewFloat64Column(colDef)
		for _, row := range rows {
			value := cell(row, i)
			if value == "" {
				col.Append(0)
				continue
			}
			f, err := columns.ParseFloat64(value)
			if err != nil {
				f = math.NaN()
			}
			col.Append(f)
		}
		return col
	case ColumnTypeBool:
		col := columns.NewBoolColumn(colDef)
		for _, row := range rows {
			b, err := columns.ParseBool(cell(row, i))
			col.Append(err == nil && b)
		}
		return col
	default:
		col := columns.NewStringColumn(colDef)
		for _, row := range rows {
			col.Append(cell(row, i))
		}
		return col
	}
}

// detectColumnTypes picks the narrowest kind that parses every non-empty
// sampled value: int64, then float64, then bool, then string. A column with
// no non-empty sample is a string column.
func detectColumnTypes(headers []string, dataRows [][]string, sampleSize int, sources map[string]ColumnSource) []ColumnType {
	types := make([]ColumnType, len(headers))
	rows := dataRows[:min(sampleSize, len(dataRows))]

	for i, header := range headers {
		if source, ok := sources[header]; ok && source.Type != ColumnTypeAuto {
			types[i] = source.Type
			continue
		}

		isInt, isFloat, isBool := true, true, true
		nonEmpty := false
		for _, row := range rows {
			value := cell(row, i)
			if value == "" {
				continue
			}
			nonEmpty = true
			if _, err := columns.ParseInt64(value); err != nil {
				isInt = false
			}
			if _, err := columns.ParseFloat64(value); err != nil {
				isFloat = false
			}
			if _, err := columns.ParseBool(value); err != nil {
				isBool = false
			}
		}

		switch {
		case !nonEmpty:
			types[i] = ColumnTypeString
		case isInt:
			types[i] = ColumnTypeInt64
		case isFloat:
			types[i] = ColumnTypeFloat64
		case isBool:
			types[i] = ColumnTypeBool
		default:
			types[i] = ColumnTypeString
		}
	}
	return types
}
