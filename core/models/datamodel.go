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

package models

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/taxinomia-cube/core/columns"
	"github.com/google/taxinomia-cube/core/tables"
)

var ErrDuplicateTable = errors.New("table already registered")

// DataModel is the registry of named tables served by the application
type DataModel struct {
	tables map[string]*tables.DataTable

	// entity type to list of table.column
	columnsByEntityType map[string][]TableColumnRef
}

// NewDataModel creates a new DataModel instance
func NewDataModel() *DataModel {
	return &DataModel{
		tables:              make(map[string]*tables.DataTable),
		columnsByEntityType: make(map[string][]TableColumnRef),
	}
}

// AddTable adds a table to the data model and registers the entity types of its
// columns. Names must be unique.
func (dm *DataModel) AddTable(name string, table *tables.DataTable) error {
	if _, exists := dm.tables[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateTable, name)
	}
	dm.tables[name] = table

	for _, colName := range table.GetColumnNames() {
		col := table.GetColumn(colName)
		if entityType := col.ColumnDef().EntityType(); entityType != "" {
			dm.columnsByEntityType[entityType] = append(dm.columnsByEntityType[entityType], TableColumnRef{
				TableName:  name,
				ColumnName: colName,
			})
		}
	}
	return nil
}

// GetTable returns a table by name
func (dm *DataModel) GetTable(name string) *tables.DataTable {
	return dm.tables[name]
}

// TableNames returns the names of all tables, sorted
func (dm *DataModel) TableNames() []string {
	names := make([]string, 0, len(dm.tables))
	for name := range dm.tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// GetColumnsByEntityType returns all columns for a specific entity type
func (dm *DataModel) GetColumnsByEntityType(entityType string) []columns.IDataColumn {
	var result []columns.IDataColumn
	for _, ref := range dm.columnsByEntityType[entityType] {
		if table := dm.tables[ref.TableName]; table != nil {
			if col := table.GetColumn(ref.ColumnName); col != nil {
				result = append(result, col)
			}
		}
	}
	return result
}

// EntityTypeUsage represents where an entity type is used
type EntityTypeUsage struct {
	EntityType string
	Usage      []TableColumnRef
}

// TableColumnRef represents a reference to a table and column
type TableColumnRef struct {
	TableName  string
	ColumnName string
}

// GetAllEntityTypes returns all entity types and their usage across tables,
// sorted by entity type
func (dm *DataModel) GetAllEntityTypes() []EntityTypeUsage {
	result := make([]EntityTypeUsage, 0, len(dm.columnsByEntityType))
	for entityType, usage := range dm.columnsByEntityType {
		result = append(result, EntityTypeUsage{
			EntityType: entityType,
			Usage:      slices.Clone(usage),
		})
	}
	slices.SortFunc(result, func(a, b EntityTypeUsage) int {
		if a.EntityType < b.EntityType {
			return -1
		}
		if a.EntityType > b.EntityType {
			return 1
		}
		return 0
	})
	return result
}
