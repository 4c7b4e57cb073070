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

// Package tables provides the mutable row store the cube is built on. A DataTable
// is a set of equally long named columns; every mutation is announced to observers
// so that category providers and cubes can follow row insertions, removals and
// edits incrementally.
package tables

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/taxinomia-cube/core/columns"
)

var (
	ErrRowRange      = errors.New("row out of range")
	ErrUnknownColumn = errors.New("unknown column")
	ErrRowWidth      = errors.New("row width does not match column count")
)

// Observer receives row level change notifications. Row numbers refer to the table
// as it is at the time of the call: RowsAboutToBeRemoved is called while the rows
// are still present, RowsRemoved after they are gone.
type Observer interface {
	RowsInserted(first, count int)
	RowsAboutToBeRemoved(first, count int)
	RowsRemoved(first, count int)
	DataChanged(first, last int)
}

// IndexObserver is an observer that maintains an index over row values, such as a
// category provider. Index observers see insertions and changes before regular
// observers and removals after them, so regular observers always find the index
// covering every row they are told about. DataSettled is delivered once all
// observers have handled a DataChanged.
type IndexObserver interface {
	Observer
	DataSettled(first, last int)
}

type DataTable struct {
	names   []string
	columns map[string]columns.IDataColumn
	length  int

	indexObservers []IndexObserver
	observers      []Observer
}

func NewDataTable() *DataTable {
	return &DataTable{
		columns: make(map[string]columns.IDataColumn),
	}
}

// AddColumn adds a column. The first column defines the table length; later
// columns must have the same length.
func (dt *DataTable) AddColumn(col columns.IDataColumn) error {
	name := col.ColumnDef().Name()
	if _, exists := dt.columns[name]; exists {
		return fmt.Errorf("column %q already exists", name)
	}
	if len(dt.names) > 0 && col.Length() != dt.length {
		return fmt.Errorf("column %q has %d rows, table has %d", name, col.Length(), dt.length)
	}
	dt.names = append(dt.names, name)
	dt.columns[name] = col
	dt.length = col.Length()
	return nil
}

func (dt *DataTable) GetColumn(name string) columns.IDataColumn {
	return dt.columns[name]
}

// GetColumnNames returns the column names in the order they were added
func (dt *DataTable) GetColumnNames() []string {
	return slices.Clone(dt.names)
}

// Length returns the number of rows
func (dt *DataTable) Length() int {
	return dt.length
}

// GetString returns the value of a cell in string form
func (dt *DataTable) GetString(row int, column string) (string, error) {
	col := dt.columns[column]
	if col == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	if row < 0 || row >= dt.length {
		return "", fmt.Errorf("%w: %d (length: %d)", ErrRowRange, row, dt.length)
	}
	return col.GetString(row)
}

// Row returns all values of a row in column order
func (dt *DataTable) Row(row int) ([]string, error) {
	if row < 0 || row >= dt.length {
		return nil, fmt.Errorf("%w: %d (length: %d)", ErrRowRange, row, dt.length)
	}
	values := make([]string, len(dt.names))
	for i, name := range dt.names {
		v, err := dt.columns[name].GetString(row)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// AppendRow appends one row, values given in column order
func (dt *DataTable) AppendRow(values ...string) error {
	return dt.InsertRows(dt.length, [][]string{values})
}

// InsertRows inserts rows before row at. Either all rows are inserted or, on a
// parse error, none.
func (dt *DataTable) InsertRows(at int, rows [][]string) error {
	if at < 0 || at > dt.length {
		return fmt.Errorf("%w: insert at %d (length: %d)", ErrRowRange, at, dt.length)
	}
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		if len(row) != len(dt.names) {
			return fmt.Errorf("%w: got %d values, want %d", ErrRowWidth, len(row), len(dt.names))
		}
	}

	values := make([]string, len(rows))
	for c, name := range dt.names {
		for r, row := range rows {
			values[r] = row[c]
		}
		if err := dt.columns[name].InsertStrings(at, values); err != nil {
			// roll back the columns that already took the rows
			for _, done := range dt.names[:c] {
				_ = dt.columns[done].Remove(at, len(rows))
			}
			return err
		}
	}
	dt.length += len(rows)

	for _, o := range slices.Clone(dt.indexObservers) {
		o.RowsInserted(at, len(rows))
	}
	for _, o := range slices.Clone(dt.observers) {
		o.RowsInserted(at, len(rows))
	}
	return nil
}

// RemoveRows removes count rows starting at row at
func (dt *DataTable) RemoveRows(at, count int) error {
	if at < 0 || count < 0 || at+count > dt.length {
		return fmt.Errorf("%w: remove [%d,%d) (length: %d)", ErrRowRange, at, at+count, dt.length)
	}
	if count == 0 {
		return nil
	}

	observers := slices.Clone(dt.observers)
	indexObservers := slices.Clone(dt.indexObservers)
	for _, o := range observers {
		o.RowsAboutToBeRemoved(at, count)
	}
	for _, o := range indexObservers {
		o.RowsAboutToBeRemoved(at, count)
	}

	for _, name := range dt.names {
		if err := dt.columns[name].Remove(at, count); err != nil {
			// all columns share the table length, so this is a broken table
			panic(fmt.Sprintf("tables: column %q out of sync: %v", name, err))
		}
	}
	dt.length -= count

	for _, o := range observers {
		o.RowsRemoved(at, count)
	}
	for _, o := range indexObservers {
		o.RowsRemoved(at, count)
	}
	return nil
}

// SetString sets a single cell from its string form
func (dt *DataTable) SetString(row int, column string, value string) error {
	return dt.SetStrings(row, map[string]string{column: value})
}

// SetStrings sets several cells of one row and sends a single change
// notification. Either all cells change or, on a parse error, none.
func (dt *DataTable) SetStrings(row int, values map[string]string) error {
	if row < 0 || row >= dt.length {
		return fmt.Errorf("%w: %d (length: %d)", ErrRowRange, row, dt.length)
	}
	for name := range values {
		if dt.columns[name] == nil {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
	}

	// column order makes the partial writes undone below deterministic
	var written []string
	old := make(map[string]string, len(values))
	for _, name := range dt.names {
		v, ok := values[name]
		if !ok {
			continue
		}
		col := dt.columns[name]
		prev, err := col.GetString(row)
		if err == nil {
			err = col.SetString(row, v)
		}
		if err != nil {
			// formatted values parse back to themselves
			for _, done := range written {
				_ = dt.columns[done].SetString(row, old[done])
			}
			return err
		}
		old[name] = prev
		written = append(written, name)
	}
	dt.notifyChanged(row, row)
	return nil
}

func (dt *DataTable) notifyChanged(first, last int) {
	indexObservers := slices.Clone(dt.indexObservers)
	for _, o := range indexObservers {
		o.DataChanged(first, last)
	}
	for _, o := range slices.Clone(dt.observers) {
		o.DataChanged(first, last)
	}
	for _, o := range indexObservers {
		o.DataSettled(first, last)
	}
}

func (dt *DataTable) AddObserver(o Observer) {
	dt.observers = append(dt.observers, o)
}

func (dt *DataTable) RemoveObserver(o Observer) {
	dt.observers = slices.DeleteFunc(dt.observers, func(x Observer) bool { return x == o })
}

func (dt *DataTable) AddIndexObserver(o IndexObserver) {
	dt.indexObservers = append(dt.indexObservers, o)
}

func (dt *DataTable) RemoveIndexObserver(o IndexObserver) {
	dt.indexObservers = slices.DeleteFunc(dt.indexObservers, func(x IndexObserver) bool { return x == o })
}
