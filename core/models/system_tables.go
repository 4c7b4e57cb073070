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
	"slices"

	"github.com/google/taxinomia-cube/core/columns"
	"github.com/google/taxinomia-cube/core/tables"
)

// System table name constants
const (
	ColumnsTableName = "_columns"
)

// BuildColumnsTable creates a system table containing metadata about all columns
// in the DataModel. Each row represents one column from any table, so the schema
// itself can be pivoted like any other table.
//
// Schema:
//   - table_name: string - The table this column belongs to
//   - column_name: string - The column's internal name
//   - display_name: string - The column's display name
//   - data_type: string - The column kind ("string", "int64", "float64" or "bool")
//   - entity_type: string - The entity type of the column (empty if none)
//   - distinct: int64 - Number of distinct values
//   - is_key: bool - Whether every value is distinct
//   - row_count: int64 - Number of rows in the column
//   - position: int64 - Column index within the table
func BuildColumnsTable(dm *DataModel) *tables.DataTable {
	tableNameCol := columns.NewStringColumn(columns.NewColumnDef("table_name", "Table", ""))
	columnNameCol := columns.NewStringColumn(columns.NewColumnDef("column_name", "Column", ""))
	displayNameCol := columns.NewStringColumn(columns.NewColumnDef("display_name", "Display Name", ""))
	dataTypeCol := columns.NewStringColumn(columns.NewColumnDef("data_type", "Data Type", ""))
	entityTypeCol := columns.NewStringColumn(columns.NewColumnDef("entity_type", "Entity Type", ""))
	distinctCol := columns.NewInt64Column(columns.NewColumnDef("distinct", "Distinct Values", ""))
	isKeyCol := columns.NewBoolColumn(columns.NewColumnDef("is_key", "Is Key", ""))
	rowCountCol := columns.NewInt64Column(columns.NewColumnDef("row_count", "Row Count", ""))
	positionCol := columns.NewInt64Column(columns.NewColumnDef("position", "Position", ""))

	for _, tableName := range dm.TableNames() {
		// Skip system tables
		if isSystemTable(tableName) {
			continue
		}
		table := dm.tables[tableName]
		for position, colName := range table.GetColumnNames() {
			col := table.GetColumn(colName)
			colDef := col.ColumnDef()
			distinct := distinctValues(col)

			tableNameCol.Append(tableName)
			columnNameCol.Append(colName)
			displayNameCol.Append(colDef.DisplayName())
			dataTypeCol.Append(col.Kind().String())
			entityTypeCol.Append(colDef.EntityType())
			distinctCol.Append(int64(distinct))
			isKeyCol.Append(col.Length() > 0 && distinct == col.Length())
			rowCountCol.Append(int64(col.Length()))
			positionCol.Append(int64(position))
		}
	}

	columnsTable := tables.NewDataTable()
	for _, col := range []columns.IDataColumn{
		tableNameCol, columnNameCol, displayNameCol, dataTypeCol, entityTypeCol,
		distinctCol, isKeyCol, rowCountCol, positionCol,
	} {
		// All columns have one row per described column
		_ = columnsTable.AddColumn(col)
	}
	return columnsTable
}

// distinctValues counts the distinct values of a column in string form
func distinctValues(col columns.IDataColumn) int {
	seen := make(map[string]struct{}, col.Length())
	for i := 0; i < col.Length(); i++ {
		if v, err := col.GetString(i); err == nil {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}

// isSystemTable returns true if the table name is a system table
func isSystemTable(name string) bool {
	return slices.Contains([]string{ColumnsTableName}, name)
}

// AddSystemTables creates and adds all system tables to the DataModel.
// This should be called after all user tables have been added.
func AddSystemTables(dm *DataModel) error {
	return dm.AddTable(ColumnsTableName, BuildColumnsTable(dm))
}
