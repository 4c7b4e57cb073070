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

// Package selection tracks a set of selected records over a cube. It keeps the
// number of selected records per bucket and per cell, so that a view can show
// cells and headers as fully, partially or not selected without scanning cell
// members.
package selection

import (
	"maps"
	"slices"

	"github.com/google/taxinomia-cube/core/cube"
	"github.com/google/taxinomia-cube/core/fenwick"
)

// State is the selection state of a cell, section or header
type State int

const (
	None State = iota
	Partial
	Full
)

func (s State) String() string {
	switch s {
	case Partial:
		return "partial"
	case Full:
		return "full"
	}
	return "none"
}

func stateOf(selected, total int) State {
	switch {
	case selected == 0 || total == 0:
		return None
	case selected < total:
		return Partial
	}
	return Full
}

type cell struct {
	row, col int
}

// Tracker follows a cube as its ElementTracker. Selected records that leave the
// cube, for example through a global filter, stay selected but are not counted
// until they come back.
type Tracker struct {
	cube     *cube.Cube
	selected map[int]struct{}

	rows  *fenwick.Tree
	cols  *fenwick.Tree
	cells map[cell]int
	total int

	syncs []*syncTarget
}

// New creates a tracker with an empty selection and registers it with c
func New(c *cube.Cube) *Tracker {
	t := &Tracker{cube: c, selected: make(map[int]struct{})}
	t.Rebuilt()
	c.AddTracker(t)
	return t
}

// Close unregisters the tracker from its cube
func (t *Tracker) Close() {
	t.cube.RemoveTracker(t)
	t.syncs = nil
}

func (t *Tracker) count(record, row, col, delta int) {
	if _, ok := t.selected[record]; !ok {
		return
	}
	t.rows.Add(row, delta)
	t.cols.Add(col, delta)
	k := cell{row, col}
	t.cells[k] += delta
	if t.cells[k] == 0 {
		delete(t.cells, k)
	}
	t.total += delta
}

func (t *Tracker) ElementAdded(record, row, col int) {
	t.count(record, row, col, +1)
}

func (t *Tracker) ElementRemoved(record, row, col int) {
	t.count(record, row, col, -1)
}

// RecordsInserted shifts the selected records at or after first
func (t *Tracker) RecordsInserted(first, count int) {
	t.selected = shifted(t.selected, first, count, nil)
}

// RecordsRemoved drops the selected records in [first, first+count) and shifts
// the ones after them
func (t *Tracker) RecordsRemoved(first, count int) {
	dropped := false
	t.selected = shifted(t.selected, first+count, -count, func(r int) bool {
		if r >= first && r < first+count {
			dropped = true
			return false
		}
		return true
	})
	if dropped {
		t.push()
	}
}

func shifted(set map[int]struct{}, from, delta int, keep func(int) bool) map[int]struct{} {
	out := make(map[int]struct{}, len(set))
	for r := range set {
		if keep != nil && !keep(r) {
			continue
		}
		if r >= from {
			r += delta
		}
		out[r] = struct{}{}
	}
	return out
}

// Rebuilt recounts the selection against the current layout of the cube
func (t *Tracker) Rebuilt() {
	t.rows = fenwick.New(t.cube.NumberOfBuckets(cube.Vertical))
	t.cols = fenwick.New(t.cube.NumberOfBuckets(cube.Horizontal))
	t.cells = make(map[cell]int)
	t.total = 0
	for r := range t.selected {
		if row, col, ok := t.cube.Bucket(r); ok {
			t.count(r, row, col, +1)
		}
	}
}

// Select adds records to the selection. Negative records are ignored.
func (t *Tracker) Select(records ...int) {
	changed := false
	for _, r := range records {
		if _, ok := t.selected[r]; ok || r < 0 {
			continue
		}
		t.selected[r] = struct{}{}
		changed = true
		if row, col, ok := t.cube.Bucket(r); ok {
			t.count(r, row, col, +1)
		}
	}
	if changed {
		t.push()
	}
}

// Deselect removes records from the selection
func (t *Tracker) Deselect(records ...int) {
	changed := false
	for _, r := range records {
		if _, ok := t.selected[r]; !ok {
			continue
		}
		if row, col, ok := t.cube.Bucket(r); ok {
			t.count(r, row, col, -1)
		}
		delete(t.selected, r)
		changed = true
	}
	if changed {
		t.push()
	}
}

// Toggle selects the records that are not selected and deselects the others
func (t *Tracker) Toggle(records ...int) {
	var on, off []int
	for _, r := range records {
		if t.IsSelected(r) {
			off = append(off, r)
		} else {
			on = append(on, r)
		}
	}
	t.Deselect(off...)
	t.Select(on...)
}

// Clear empties the selection
func (t *Tracker) Clear() {
	if len(t.selected) == 0 {
		return
	}
	t.selected = make(map[int]struct{})
	t.Rebuilt()
	t.push()
}

// SelectCell selects the members of the cell at row and column section
func (t *Tracker) SelectCell(row, col int) {
	t.Select(t.cube.Elements(row, col)...)
}

// SelectRect selects the members of the cells in the section rectangle spanned
// by two corners, inclusive
func (t *Tracker) SelectRect(row0, col0, row1, col1 int) {
	if row0 > row1 {
		row0, row1 = row1, row0
	}
	if col0 > col1 {
		col0, col1 = col1, col0
	}
	var records []int
	for r := row0; r <= row1; r++ {
		for c := col0; c <= col1; c++ {
			records = append(records, t.cube.Elements(r, c)...)
		}
	}
	t.Select(records...)
}

// SelectHeader selects every record under header section hs at level
func (t *Tracker) SelectHeader(a cube.Axis, level, hs int) {
	t.Select(t.cube.HeaderElements(a, level, hs)...)
}

func (t *Tracker) IsSelected(record int) bool {
	_, ok := t.selected[record]
	return ok
}

// Selected returns the selected records, ascending
func (t *Tracker) Selected() []int {
	return slices.Sorted(maps.Keys(t.selected))
}

// Len returns the number of selected records, counted or not
func (t *Tracker) Len() int {
	return len(t.selected)
}

// Counted returns the number of selected records that are in the cube
func (t *Tracker) Counted() int {
	return t.total
}

func (t *Tracker) axis(a cube.Axis) *fenwick.Tree {
	if a == cube.Vertical {
		return t.rows
	}
	return t.cols
}

// CellCount returns the number of selected records in a cell
func (t *Tracker) CellCount(row, col int) int {
	rb := t.cube.BucketForSection(cube.Vertical, row)
	cb := t.cube.BucketForSection(cube.Horizontal, col)
	if rb < 0 || cb < 0 {
		return 0
	}
	return t.cells[cell{rb, cb}]
}

func (t *Tracker) CellState(row, col int) State {
	return stateOf(t.CellCount(row, col), t.cube.ElementCount(row, col))
}

// SectionCount returns the number of selected records in a leaf section
func (t *Tracker) SectionCount(a cube.Axis, section int) int {
	b := t.cube.BucketForSection(a, section)
	if b < 0 {
		return 0
	}
	return t.axis(a).Get(b)
}

func (t *Tracker) SectionState(a cube.Axis, section int) State {
	return stateOf(t.SectionCount(a, section), t.cube.SectionElementCount(a, section))
}

// HeaderCount returns the number of selected records under header section hs at level
func (t *Tracker) HeaderCount(a cube.Axis, level, hs int) int {
	first, end, ok := t.cube.BucketRange(a, level, hs)
	if !ok {
		return 0
	}
	return t.axis(a).RangeSum(first, end-1)
}

func (t *Tracker) HeaderState(a cube.Axis, level, hs int) State {
	return stateOf(t.HeaderCount(a, level, hs), t.cube.HeaderElementCount(a, level, hs))
}
