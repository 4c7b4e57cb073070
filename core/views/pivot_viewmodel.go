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
	"strconv"

	"github.com/google/safehtml"
	"github.com/google/taxinomia-cube/core/categories"
	"github.com/google/taxinomia-cube/core/cube"
	"github.com/google/taxinomia-cube/core/query"
	"github.com/google/taxinomia-cube/core/selection"
	"github.com/google/taxinomia-cube/core/tables"
)

// PivotViewModel contains a cube formatted for template consumption
type PivotViewModel struct {
	Title      string       `json:"title"`
	Table      string       `json:"table"`
	CurrentURL safehtml.URL `json:"-"`

	RowLevels     []LevelInfo `json:"rowLevels"`    // Vertical providers, outermost first
	ColumnLevels  []LevelInfo `json:"columnLevels"` // Horizontal providers, outermost first
	ColumnHeaders []HeaderRow `json:"columnHeaders"`
	Rows          []PivotRow  `json:"rows"`
	ColumnTotals  []Cell      `json:"columnTotals"`
	Total         Cell        `json:"total"`

	// Pagination info
	TotalRows     int          `json:"totalRows"`     // Number of row sections in the cube
	DisplayedRows int          `json:"displayedRows"` // Number of row sections actually displayed
	HasMoreRows   bool         `json:"hasMoreRows"`
	ShowAllURL    safehtml.URL `json:"-"`

	Records      int           `json:"records"` // Records in the table, filtered or not
	Choices      []SplitChoice `json:"choices"`
	Filters      []FilterInfo  `json:"filters"`
	Errors       []string      `json:"errors,omitempty"`
	SwapURL      safehtml.URL  `json:"-"`
	ClearURL     safehtml.URL  `json:"-"` // Clears the selection
	ClearFilters safehtml.URL  `json:"-"`
	AddFilterURL safehtml.URL  `json:"-"` // Form target adding the posted expression
}

// LevelInfo describes one provider stacked on an axis
type LevelInfo struct {
	Name        string       `json:"name"`
	CollapseURL safehtml.URL `json:"-"`
}

// Cell is a count of records with its selection state
type Cell struct {
	Count     int          `json:"count"`
	Selected  int          `json:"selected"`
	State     string       `json:"state"`
	SelectURL safehtml.URL `json:"-"`
}

// HeaderCell is a header spanning one or more leaf sections
type HeaderCell struct {
	Cell
	Label     string       `json:"label"`
	ToolTip   string       `json:"toolTip"`
	Span      int          `json:"span"`
	Level     int          `json:"level"`
	FilterURL safehtml.URL `json:"-"` // Keeps only this category, when the provider is a plain column
}

// HeaderRow holds the headers of one horizontal level
type HeaderRow struct {
	Name  string       `json:"name"`
	Cells []HeaderCell `json:"cells"`
}

// PivotRow is one vertical leaf section
type PivotRow struct {
	Headers []HeaderCell `json:"headers"` // Headers starting at this row, outermost first
	Cells   []Cell       `json:"cells"`
	Total   Cell         `json:"total"`
}

// SplitChoice describes a table column that can be split on an axis
type SplitChoice struct {
	Name        string       `json:"name"`
	DisplayName string       `json:"displayName"`
	IsRow       bool         `json:"isRow"`
	IsColumn    bool         `json:"isColumn"`
	RowURL      safehtml.URL `json:"-"`
	ColumnURL   safehtml.URL `json:"-"`
	CollapseURL safehtml.URL `json:"-"`
}

// FilterInfo describes an active filter expression
type FilterInfo struct {
	Expression string       `json:"expression"`
	RemoveURL  safehtml.URL `json:"-"`
}

// builder carries what every part of the view model needs
type builder struct {
	c   *cube.Cube
	sel *selection.Tracker
	q   *query.Query
}

func (b *builder) cell(count, selected int, params url.Values) Cell {
	cell := Cell{Count: count, Selected: selected, State: selection.None.String()}
	if count > 0 && selected > 0 {
		cell.State = selection.Partial.String()
		if selected >= count {
			cell.State = selection.Full.String()
		}
	}
	if count > 0 {
		cell.SelectURL = b.q.WithAction("select", params)
	}
	return cell
}

func (b *builder) header(a cube.Axis, level, hs int, h cube.Header) HeaderCell {
	selected := 0
	if b.sel != nil {
		selected = b.sel.HeaderCount(a, level, hs)
	}
	params := url.Values{
		"axis":  {axisParam(a)},
		"level": {strconv.Itoa(level)},
		"hs":    {strconv.Itoa(hs)},
	}
	cell := HeaderCell{
		Cell:    b.cell(h.Elements, selected, params),
		Label:   h.Label,
		ToolTip: h.ToolTip,
		Span:    h.Span,
		Level:   level,
	}
	if column, ok := plainColumn(b.c.Providers(a)[level]); ok {
		cell.FilterURL = b.q.WithCategoryFilter(column, h.Label)
	}
	return cell
}

// plainColumn reports the column of a provider whose labels are whole column values
func plainColumn(p categories.Provider) (string, bool) {
	cc, ok := p.(*categories.ColumnCategorizer)
	if !ok || cc.Name() != cc.Column() {
		return "", false
	}
	return cc.Column(), true
}

func axisParam(a cube.Axis) string {
	if a == cube.Vertical {
		return "rows"
	}
	return "columns"
}

// ParseAxis is the inverse of the axis parameter used by select links
func ParseAxis(s string) (cube.Axis, bool) {
	switch s {
	case "rows":
		return cube.Vertical, true
	case "columns":
		return cube.Horizontal, true
	}
	return 0, false
}

func (b *builder) levels(a cube.Axis) []LevelInfo {
	providers := b.c.Providers(a)
	levels := make([]LevelInfo, len(providers))
	for i, p := range providers {
		levels[i] = LevelInfo{Name: p.Name()}
		if column, ok := plainColumn(p); ok {
			levels[i].CollapseURL = b.q.WithoutSplit(column)
		}
	}
	return levels
}

// BuildPivotViewModel creates a view model from a cube and an optional selection
// tracker. At most q.Limit row sections are included.
func BuildPivotViewModel(c *cube.Cube, sel *selection.Tracker, table *tables.DataTable, q *query.Query, title string) PivotViewModel {
	b := &builder{c: c, sel: sel, q: q}
	vm := PivotViewModel{
		Title:        title,
		Table:        q.Table,
		CurrentURL:   q.ToSafeURL(),
		RowLevels:    b.levels(cube.Vertical),
		ColumnLevels: b.levels(cube.Horizontal),
		TotalRows:    c.RowCount(),
		Records:      table.Length(),
		SwapURL:      q.WithAxesSwapped(),
		ClearURL:     q.WithAction("clear", nil),
		ClearFilters: q.WithoutFilters(),
		AddFilterURL: q.WithAction("filter", nil),
	}

	for level, info := range vm.ColumnLevels {
		row := HeaderRow{Name: info.Name}
		for hs, h := range c.Headers(cube.Horizontal, level) {
			row.Cells = append(row.Cells, b.header(cube.Horizontal, level, hs, h))
		}
		vm.ColumnHeaders = append(vm.ColumnHeaders, row)
	}

	vm.DisplayedRows = vm.TotalRows
	if q.Limit > 0 && q.Limit < vm.TotalRows {
		vm.DisplayedRows = q.Limit
		vm.HasMoreRows = true
		vm.ShowAllURL = q.WithLimit(0)
	}

	// Row headers are placed on the row they start at and clipped to the page
	starts := make([]map[int]HeaderCell, len(vm.RowLevels))
	for level := range vm.RowLevels {
		starts[level] = make(map[int]HeaderCell)
		for hs, h := range c.Headers(cube.Vertical, level) {
			if h.Section >= vm.DisplayedRows {
				break
			}
			cell := b.header(cube.Vertical, level, hs, h)
			cell.Span = min(cell.Span, vm.DisplayedRows-h.Section)
			starts[level][h.Section] = cell
		}
	}

	cols := c.ColumnCount()
	for r := 0; r < vm.DisplayedRows; r++ {
		row := PivotRow{Cells: make([]Cell, cols)}
		for level := range starts {
			if h, ok := starts[level][r]; ok {
				row.Headers = append(row.Headers, h)
			}
		}
		for col := 0; col < cols; col++ {
			row.Cells[col] = b.cell(c.ElementCount(r, col), b.cellSelected(r, col), url.Values{
				"row": {strconv.Itoa(r)},
				"col": {strconv.Itoa(col)},
			})
		}
		row.Total = b.cell(c.SectionElementCount(cube.Vertical, r), b.sectionSelected(cube.Vertical, r), url.Values{
			"row": {strconv.Itoa(r)},
		})
		vm.Rows = append(vm.Rows, row)
	}

	vm.ColumnTotals = make([]Cell, cols)
	for col := 0; col < cols; col++ {
		vm.ColumnTotals[col] = b.cell(c.SectionElementCount(cube.Horizontal, col), b.sectionSelected(cube.Horizontal, col), url.Values{
			"col": {strconv.Itoa(col)},
		})
	}
	selected := 0
	if sel != nil {
		selected = sel.Counted()
	}
	vm.Total = b.cell(c.TotalElements(), selected, url.Values{"all": {"1"}})

	for _, name := range table.GetColumnNames() {
		displayName := name
		if col := table.GetColumn(name); col != nil && col.ColumnDef().DisplayName() != "" {
			displayName = col.ColumnDef().DisplayName()
		}
		vm.Choices = append(vm.Choices, SplitChoice{
			Name:        name,
			DisplayName: displayName,
			IsRow:       q.IsRow(name),
			IsColumn:    q.IsColumn(name),
			RowURL:      q.WithRow(name),
			ColumnURL:   q.WithColumn(name),
			CollapseURL: q.WithoutSplit(name),
		})
	}
	for _, f := range q.Filters {
		vm.Filters = append(vm.Filters, FilterInfo{Expression: f, RemoveURL: q.WithoutFilter(f)})
	}
	return vm
}

func (b *builder) cellSelected(row, col int) int {
	if b.sel == nil {
		return 0
	}
	return b.sel.CellCount(row, col)
}

func (b *builder) sectionSelected(a cube.Axis, section int) int {
	if b.sel == nil {
		return 0
	}
	return b.sel.SectionCount(a, section)
}
