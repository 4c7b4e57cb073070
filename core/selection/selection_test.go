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

package selection

import (
	"bytes"
	"log"
	"os"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/google/taxinomia-cube/core/categories"
	"github.com/google/taxinomia-cube/core/cube"
	"github.com/google/taxinomia-cube/core/filters"
	"github.com/google/taxinomia-cube/core/tables"
	"github.com/google/taxinomia-cube/demo"
)

type fixture struct {
	table   *tables.DataTable
	cube    *cube.Cube
	tracker *Tracker
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dt := demo.CreatePeopleTable()
	last, err := categories.NewColumnCategorizer(dt, "last_name")
	require.NoError(t, err)
	city, err := categories.NewColumnCategorizer(dt, "city")
	require.NoError(t, err)
	c, err := cube.New(dt, last, city)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return fixture{table: dt, cube: c, tracker: New(c)}
}

// partialCell finds a non-empty cell that does not hold every record of its row
func partialCell(t *testing.T, f fixture) (int, int) {
	t.Helper()
	for r := 0; r < f.cube.RowCount(); r++ {
		for c := 0; c < f.cube.ColumnCount(); c++ {
			n := f.cube.ElementCount(r, c)
			if n > 0 && n < f.cube.SectionElementCount(cube.Vertical, r) {
				return r, c
			}
		}
	}
	t.Fatal("no partial cell")
	return 0, 0
}

// requireCounts compares the incremental counts with a scan of the cells
func requireCounts(t *testing.T, f fixture) {
	t.Helper()
	total := 0
	for r := 0; r < f.cube.RowCount(); r++ {
		rowSelected := 0
		for c := 0; c < f.cube.ColumnCount(); c++ {
			n := 0
			for _, rec := range f.cube.Elements(r, c) {
				if f.tracker.IsSelected(rec) {
					n++
				}
			}
			require.Equal(t, n, f.tracker.CellCount(r, c), "cell %d,%d", r, c)
			rowSelected += n
		}
		require.Equal(t, rowSelected, f.tracker.SectionCount(cube.Vertical, r))
		total += rowSelected
	}
	require.Equal(t, total, f.tracker.Counted())
}

func TestSelectCell(t *testing.T) {
	f := newFixture(t)
	row, col := partialCell(t, f)
	members := f.cube.Elements(row, col)

	require.Equal(t, None, f.tracker.CellState(row, col))
	f.tracker.SelectCell(row, col)
	require.Equal(t, Full, f.tracker.CellState(row, col))
	require.Equal(t, len(members), f.tracker.Len())
	require.Equal(t, Partial, f.tracker.SectionState(cube.Vertical, row))
	require.Equal(t, Partial, f.tracker.HeaderState(cube.Vertical, 0, row))
	requireCounts(t, f)

	f.tracker.Deselect(members[0])
	if len(members) > 1 {
		require.Equal(t, Partial, f.tracker.CellState(row, col))
	} else {
		require.Equal(t, None, f.tracker.CellState(row, col))
	}
	requireCounts(t, f)

	f.tracker.Clear()
	require.Zero(t, f.tracker.Len())
	require.Equal(t, None, f.tracker.CellState(row, col))
	requireCounts(t, f)
}

func TestSelectRectAndHeaders(t *testing.T) {
	f := newFixture(t)
	f.tracker.SelectRect(1, f.cube.ColumnCount()-1, 0, 0)
	require.Equal(t, Full, f.tracker.SectionState(cube.Vertical, 0))
	require.Equal(t, Full, f.tracker.SectionState(cube.Vertical, 1))
	require.Equal(t, None, f.tracker.SectionState(cube.Vertical, 2))
	require.Equal(t, Full, f.tracker.HeaderState(cube.Vertical, 0, 1))
	requireCounts(t, f)

	f.tracker.Clear()
	f.tracker.SelectHeader(cube.Horizontal, 0, 0)
	require.Equal(t, Full, f.tracker.HeaderState(cube.Horizontal, 0, 0))
	require.Equal(t, f.cube.HeaderElementCount(cube.Horizontal, 0, 0), f.tracker.HeaderCount(cube.Horizontal, 0, 0))
	require.Equal(t, None, f.tracker.HeaderState(cube.Horizontal, 0, 1))
	require.Equal(t, None, f.tracker.HeaderState(cube.Horizontal, 5, 0))
	requireCounts(t, f)
}

func TestToggle(t *testing.T) {
	f := newFixture(t)
	f.tracker.Select(1, 2)
	f.tracker.Toggle(2, 3)
	require.Equal(t, []int{1, 3}, f.tracker.Selected())
	f.tracker.Select(-4)
	require.Equal(t, 2, f.tracker.Len())
}

func TestSelectionSurvivesSplit(t *testing.T) {
	f := newFixture(t)
	row, col := partialCell(t, f)
	f.tracker.SelectCell(row, col)
	selected := f.tracker.Selected()

	sex, err := categories.NewColumnCategorizer(f.table, "sex")
	require.NoError(t, err)
	require.NoError(t, f.cube.Split(cube.Vertical, 1, sex))
	require.Equal(t, selected, f.tracker.Selected())
	require.Equal(t, Partial, f.tracker.HeaderState(cube.Vertical, 0, row))
	requireCounts(t, f)

	require.NoError(t, f.cube.Collapse(cube.Horizontal, 0))
	require.Equal(t, 1, f.cube.ColumnCount())
	require.Equal(t, Partial, f.tracker.HeaderState(cube.Vertical, 0, row))
	first, _ := f.cube.ToSection(cube.Vertical, 0, row)
	require.Equal(t, len(selected), f.tracker.CellCount(first, 0))
	requireCounts(t, f)
}

func TestSelectionAndFilters(t *testing.T) {
	f := newFixture(t)
	f.tracker.Select(0, 1, 2, 37)
	forty, err := filters.NewExpressionFilter(f.table, "age == 40")
	require.NoError(t, err)

	require.NoError(t, f.cube.AddGlobalFilter(forty))
	require.Equal(t, 4, f.tracker.Len())
	require.Equal(t, 1, f.tracker.Counted())
	require.Equal(t, Full, f.tracker.CellState(0, 0))
	requireCounts(t, f)

	require.NoError(t, f.cube.RemoveGlobalFilter(forty))
	require.Equal(t, 4, f.tracker.Counted())
	requireCounts(t, f)
}

func TestSelectionFollowsRows(t *testing.T) {
	f := newFixture(t)
	f.tracker.Select(5, 10, 11, 50)

	require.NoError(t, f.table.InsertRows(6, [][]string{{"Ada", "Lovelace", "f", "36", "London"}}))
	require.Equal(t, []int{5, 11, 12, 51}, f.tracker.Selected())
	requireCounts(t, f)

	require.NoError(t, f.table.RemoveRows(10, 3))
	require.Equal(t, []int{5, 48}, f.tracker.Selected())
	requireCounts(t, f)

	require.NoError(t, f.table.SetString(5, "city", "London"))
	requireCounts(t, f)
}

func TestSyncThroughChain(t *testing.T) {
	f := newFixture(t)
	row, col := partialCell(t, f)
	members := f.cube.Elements(row, col)
	slices.Sort(members)
	cellView := NewSubsetMapper(members)
	reversed := make([]int, cellView.Len())
	for i := range reversed {
		reversed[i] = len(reversed) - 1 - i
	}
	sorted, err := NewPermutationMapper(reversed)
	require.NoError(t, err)

	var pushed [][]int
	stop := f.tracker.SyncTo(ModelFunc(func(indexes []int) {
		pushed = append(pushed, indexes)
	}), cellView, sorted)
	require.Equal(t, [][]int{{}}, pushed)

	f.tracker.Select(members[0])
	require.Equal(t, []int{len(members) - 1}, pushed[len(pushed)-1])

	f.tracker.SelectFrom(Chain{cellView, sorted}, 0)
	require.True(t, f.tracker.IsSelected(members[len(members)-1]))

	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)
	outside := -1
	for _, r := range f.cube.SectionElements(cube.Vertical, row) {
		if !slices.Contains(members, r) {
			outside = r
			break
		}
	}
	require.GreaterOrEqual(t, outside, 0)
	f.tracker.Select(outside)
	require.Contains(t, logs.String(), "cannot be mapped through 2 proxy layers")
	require.NotContains(t, pushed[len(pushed)-1], -1)

	stop()
	n := len(pushed)
	f.tracker.Clear()
	require.Len(t, pushed, n)
}

func TestMappers(t *testing.T) {
	for _, order := range [][]int{{0, 0}, {1, 2}, {-1}} {
		_, err := NewPermutationMapper(order)
		require.ErrorIs(t, err, ErrNotPermutation, "order %v", order)
	}

	p, err := NewPermutationMapper([]int{2, 0, 1})
	require.NoError(t, err)
	require.Equal(t, 2, p.MapToSource(0))
	require.Equal(t, 0, p.MapFromSource(2))
	require.Equal(t, -1, p.MapToSource(3))
	require.Equal(t, -1, p.MapFromSource(-1))

	s := NewSubsetMapper([]int{9, 3, 3, 5})
	require.Equal(t, 3, s.Len())
	require.Equal(t, 1, s.MapFromSource(5))
	require.Equal(t, -1, s.MapFromSource(4))
	require.Equal(t, 9, s.MapToSource(2))

	chain := Chain{s, nil}
	require.Equal(t, -1, chain.FromSource(5))
	require.Equal(t, -1, chain.ToSource(0))
	require.Equal(t, 5, Chain{s}.ToSource(1))
}

func TestSyncThroughInvalidMapper(t *testing.T) {
	f := newFixture(t)
	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	// a failed constructor leaves a typed nil behind
	var broken *PermutationMapper
	var pushed [][]int
	stop := f.tracker.SyncTo(ModelFunc(func(indexes []int) {
		pushed = append(pushed, indexes)
	}), NewSubsetMapper([]int{0, 1, 2}), broken)
	defer stop()

	f.tracker.Select(0, 1)
	require.Equal(t, []int{}, pushed[len(pushed)-1])
	require.Contains(t, logs.String(), "2 of 2 selected records cannot be mapped through 2 proxy layers")

	logs.Reset()
	f.tracker.SelectFrom(Chain{broken}, 0)
	require.Contains(t, logs.String(), "index 0 cannot be mapped through 1 proxy layers")
	require.Equal(t, []int{0, 1}, f.tracker.Selected())

	var nilSubset *SubsetMapper
	require.Equal(t, -1, Chain{nilSubset}.FromSource(0))
	require.Equal(t, 0, nilSubset.Len())
}
