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

package views

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/google/taxinomia-cube/core/categories"
	"github.com/google/taxinomia-cube/core/columns"
	"github.com/google/taxinomia-cube/core/cube"
	"github.com/google/taxinomia-cube/core/models"
	"github.com/google/taxinomia-cube/core/query"
	"github.com/google/taxinomia-cube/core/selection"
	"github.com/google/taxinomia-cube/core/tables"
)

// newTable returns a three row table: (a, x), (a, y), (b, x)
func newTable(t *testing.T) *tables.DataTable {
	t.Helper()
	dt := tables.NewDataTable()
	for _, def := range []struct {
		name   string
		values []string
	}{
		{"col1", []string{"a", "a", "b"}},
		{"col2", []string{"x", "y", "x"}},
	} {
		col := columns.NewStringColumn(columns.NewColumnDef(def.name, strings.ToUpper(def.name), ""))
		for _, v := range def.values {
			col.Append(v)
		}
		require.NoError(t, dt.AddColumn(col))
	}
	return dt
}

func newCube(t *testing.T, dt *tables.DataTable, rows, cols string) *cube.Cube {
	t.Helper()
	var rp, cp categories.Provider
	if rows != "" {
		p, err := categories.NewColumnCategorizer(dt, rows)
		require.NoError(t, err)
		rp = p
	}
	if cols != "" {
		p, err := categories.NewColumnCategorizer(dt, cols)
		require.NoError(t, err)
		cp = p
	}
	c, err := cube.New(dt, rp, cp)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func newQuery(t *testing.T, raw string) *query.Query {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return query.NewQuery(u)
}

func TestToAscii(t *testing.T) {
	dt := newTable(t)
	want := strings.Join([]string{
		"| col1  | x | y | Total |",
		"|-------+---+---+-------|",
		"| a     | 1 | 1 |     2 |",
		"| b     | 1 |   |     1 |",
		"|-------+---+---+-------|",
		"| Total | 2 | 1 |     3 |",
		"",
	}, "\n")
	require.Equal(t, want, ToAscii(newCube(t, dt, "col1", "col2")))
}

func TestToAsciiWithoutProviders(t *testing.T) {
	dt := newTable(t)
	want := strings.Join([]string{
		"|       | Total |",
		"|-------+-------|",
		"| All   |     3 |",
		"|-------+-------|",
		"| Total |     3 |",
		"",
	}, "\n")
	require.Equal(t, want, ToAscii(newCube(t, dt, "", "")))
}

func TestToAsciiNested(t *testing.T) {
	dt := newTable(t)
	c := newCube(t, dt, "col1", "")
	p, err := categories.NewColumnCategorizer(dt, "col2")
	require.NoError(t, err)
	require.NoError(t, c.Split(cube.Vertical, 1, p))

	lines := strings.Split(ToAscii(c), "\n")
	require.Equal(t, "| col1  | col2 | Total |", lines[0])
	require.Equal(t, "| a     | x    |     1 |", lines[2])
	require.Equal(t, "|       | y    |     1 |", lines[3])
	require.Equal(t, "| b     | x    |     1 |", lines[4])
}

func TestBuildPivotViewModel(t *testing.T) {
	dt := newTable(t)
	c := newCube(t, dt, "col1", "col2")
	sel := selection.New(c)
	t.Cleanup(sel.Close)
	sel.Select(0)

	vm := BuildPivotViewModel(c, sel, dt, newQuery(t, "/cube/t?table=t&rows=col1&columns=col2"), "T")
	require.Equal(t, "T", vm.Title)
	require.Equal(t, 3, vm.Records)
	require.Equal(t, []LevelInfo{{Name: "col1", CollapseURL: vm.RowLevels[0].CollapseURL}}, vm.RowLevels)
	require.Len(t, vm.ColumnHeaders, 1)
	require.Equal(t, "col2", vm.ColumnHeaders[0].Name)
	require.Len(t, vm.ColumnHeaders[0].Cells, 2)
	require.Equal(t, "x", vm.ColumnHeaders[0].Cells[0].Label)
	require.Equal(t, "partial", vm.ColumnHeaders[0].Cells[0].State)
	require.Equal(t, "none", vm.ColumnHeaders[0].Cells[1].State)

	require.Equal(t, 2, vm.TotalRows)
	require.Equal(t, 2, vm.DisplayedRows)
	require.False(t, vm.HasMoreRows)
	require.Len(t, vm.Rows, 2)

	a := vm.Rows[0]
	require.Len(t, a.Headers, 1)
	require.Equal(t, "a", a.Headers[0].Label)
	require.Equal(t, 1, a.Headers[0].Span)
	require.Equal(t, 2, a.Headers[0].Count)
	require.Equal(t, 1, a.Headers[0].Selected)
	require.Equal(t, "partial", a.Headers[0].State)
	require.Equal(t, Cell{Count: 1, Selected: 1, State: "full", SelectURL: a.Cells[0].SelectURL}, a.Cells[0])
	require.Equal(t, "none", a.Cells[1].State)
	require.Equal(t, 2, a.Total.Count)

	require.Zero(t, vm.Rows[1].Cells[1].Count)
	require.Equal(t, []int{2, 1}, []int{vm.ColumnTotals[0].Count, vm.ColumnTotals[1].Count})
	require.Equal(t, 3, vm.Total.Count)
	require.Equal(t, 1, vm.Total.Selected)
	require.Equal(t, "partial", vm.Total.State)

	require.Len(t, vm.Choices, 2)
	for _, choice := range vm.Choices {
		require.Equal(t, strings.ToUpper(choice.Name), choice.DisplayName)
		require.Equal(t, choice.Name == "col1", choice.IsRow)
		require.Equal(t, choice.Name == "col2", choice.IsColumn)
	}

	u, err := url.Parse(a.Headers[0].FilterURL.String())
	require.NoError(t, err)
	filtered := query.NewQuery(u)
	require.Equal(t, []string{`col1 == "a"`}, filtered.Filters)
	require.Empty(t, filtered.Rows)

	u, err = url.Parse(a.Cells[0].SelectURL.String())
	require.NoError(t, err)
	require.Equal(t, "/cube/t/select", u.Path)
	require.Equal(t, "0", u.Query().Get("row"))
	require.Equal(t, "0", u.Query().Get("col"))
}

func TestBuildPivotViewModelLimit(t *testing.T) {
	dt := newTable(t)
	c := newCube(t, dt, "col1", "")
	p, err := categories.NewColumnCategorizer(dt, "col2")
	require.NoError(t, err)
	require.NoError(t, c.Split(cube.Vertical, 1, p))

	vm := BuildPivotViewModel(c, nil, dt, newQuery(t, "/cube/t?rows=col1,col2&limit=1&filter=col1+!%3D+%22c%22"), "T")
	require.Equal(t, 3, vm.TotalRows)
	require.Equal(t, 1, vm.DisplayedRows)
	require.True(t, vm.HasMoreRows)
	require.Len(t, vm.Rows, 1)
	require.Len(t, vm.Rows[0].Headers, 2)
	// "a" spans two rows but only one is shown
	require.Equal(t, 1, vm.Rows[0].Headers[0].Span)
	require.Equal(t, 2, vm.Rows[0].Headers[0].Count)
	require.Equal(t, "none", vm.Rows[0].Headers[0].State)
	require.Equal(t, []FilterInfo{{Expression: `col1 != "c"`, RemoveURL: vm.Filters[0].RemoveURL}}, vm.Filters)

	u, err := url.Parse(vm.ShowAllURL.String())
	require.NoError(t, err)
	require.Equal(t, 0, query.NewQuery(u).Limit)
}

func TestBuildLandingViewModel(t *testing.T) {
	dm := models.NewDataModel()
	require.NoError(t, dm.AddTable("t", newTable(t)))

	vm := BuildLandingViewModel(dm, "Title", "")
	require.Len(t, vm.Tables, 1)
	require.Equal(t, "t", vm.Tables[0].Name)
	require.Equal(t, 3, vm.Tables[0].Rows)
	require.Equal(t, "/cube/t", vm.Tables[0].URL.String())
}
