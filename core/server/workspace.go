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

package server

import (
	"fmt"
	"slices"

	"github.com/google/taxinomia-cube/core/categories"
	"github.com/google/taxinomia-cube/core/cube"
	"github.com/google/taxinomia-cube/core/filters"
	"github.com/google/taxinomia-cube/core/query"
	"github.com/google/taxinomia-cube/core/selection"
	"github.com/google/taxinomia-cube/core/tables"
)

// workspace is the live pivot state of one table: a cube over the table and the
// selection made in it. Requests reshape the cube incrementally to match their
// query instead of rebuilding it.
type workspace struct {
	name    string
	table   *tables.DataTable
	cube    *cube.Cube
	tracker *selection.Tracker

	providers map[string]*categories.ColumnCategorizer
	filters   []activeFilter
}

type activeFilter struct {
	expression string
	filter     filters.Filter
}

func newWorkspace(name string, table *tables.DataTable, maxBuckets int) (*workspace, error) {
	c, err := cube.New(table, nil, nil, cube.WithMaxBuckets(maxBuckets))
	if err != nil {
		return nil, err
	}
	return &workspace{
		name:      name,
		table:     table,
		cube:      c,
		tracker:   selection.New(c),
		providers: make(map[string]*categories.ColumnCategorizer),
	}, nil
}

func (w *workspace) close() {
	w.tracker.Close()
	w.cube.Close()
}

// provider returns the categorizer of a column, creating it on first use
func (w *workspace) provider(column string) (*categories.ColumnCategorizer, error) {
	if p, ok := w.providers[column]; ok {
		return p, nil
	}
	p, err := categories.NewColumnCategorizer(w.table, column)
	if err != nil {
		return nil, err
	}
	w.providers[column] = p
	return p, nil
}

// apply reshapes the cube to the splits and filters of q. Splits or filters that
// cannot be applied are skipped and reported.
func (w *workspace) apply(q *query.Query) []string {
	var problems []string
	want := map[cube.Axis][]string{cube.Vertical: q.Rows, cube.Horizontal: q.Columns}

	// Collapse everything below the first difference on both axes first, so a
	// column can move from one axis to the other
	keep := make(map[cube.Axis]int)
	for a, columns := range want {
		current := providerNames(w.cube.Providers(a))
		common := 0
		for common < len(current) && common < len(columns) && current[common] == columns[common] {
			common++
		}
		for level := len(current) - 1; level >= common; level-- {
			if err := w.cube.Collapse(a, level); err != nil {
				problems = append(problems, fmt.Sprintf("collapse %s: %v", current[level], err))
			}
		}
		keep[a] = common
	}
	for _, a := range []cube.Axis{cube.Vertical, cube.Horizontal} {
		for level := keep[a]; level < len(want[a]); level++ {
			column := want[a][level]
			p, err := w.provider(column)
			if err == nil {
				err = w.cube.Split(a, level, p)
			}
			if err != nil {
				problems = append(problems, fmt.Sprintf("split %s: %v", column, err))
				break
			}
		}
	}

	return append(problems, w.applyFilters(q.Filters)...)
}

func (w *workspace) applyFilters(expressions []string) []string {
	var problems []string
	kept := w.filters[:0]
	for _, f := range w.filters {
		if slices.Contains(expressions, f.expression) {
			kept = append(kept, f)
			continue
		}
		if err := w.cube.RemoveGlobalFilter(f.filter); err != nil {
			problems = append(problems, fmt.Sprintf("filter %s: %v", f.expression, err))
		}
	}
	w.filters = kept

	for _, expression := range expressions {
		if slices.ContainsFunc(w.filters, func(f activeFilter) bool { return f.expression == expression }) {
			continue
		}
		f, err := filters.NewExpressionFilter(w.table, expression)
		if err == nil {
			err = w.cube.AddGlobalFilter(f)
		}
		if err != nil {
			problems = append(problems, fmt.Sprintf("filter %s: %v", expression, err))
			continue
		}
		w.filters = append(w.filters, activeFilter{expression: expression, filter: f})
	}
	return problems
}

func providerNames(providers []categories.Provider) []string {
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.Name()
	}
	return names
}

// target addresses the records of a select link
type target struct {
	all       bool
	row, col  int // -1 when not given
	axis      cube.Axis
	level, hs int
	isHeader  bool
}

// members returns the records of t in the current layout
func (w *workspace) members(t target) []int {
	switch {
	case t.all:
		return w.cube.Records()
	case t.isHeader:
		return w.cube.HeaderElements(t.axis, t.level, t.hs)
	case t.row >= 0 && t.col >= 0:
		return w.cube.Elements(t.row, t.col)
	case t.row >= 0:
		return w.cube.SectionElements(cube.Vertical, t.row)
	case t.col >= 0:
		return w.cube.SectionElements(cube.Horizontal, t.col)
	}
	return nil
}

// toggle selects the records of t, or deselects them when all are selected
func (w *workspace) toggle(t target) int {
	records := w.members(t)
	if len(records) == 0 {
		return 0
	}
	if slices.IndexFunc(records, func(r int) bool { return !w.tracker.IsSelected(r) }) < 0 {
		w.tracker.Deselect(records...)
	} else {
		w.tracker.Select(records...)
	}
	return len(records)
}
