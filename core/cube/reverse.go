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

package cube

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
)

// cellKey identifies a cell by its row and column bucket
type cellKey struct {
	row, col int
}

func (k cellKey) bucket(a Axis) int {
	if a == Vertical {
		return k.row
	}
	return k.col
}

func compareKeys(a, b cellKey) int {
	if c := cmp.Compare(a.row, b.row); c != 0 {
		return c
	}
	return cmp.Compare(a.col, b.col)
}

// reverseIndex maps each tracked record to its cell
type reverseIndex map[int]cellKey

// cellStore holds the members of the non-empty cells, plus for each bucket of
// either axis the buckets of the other axis it shares a non-empty cell with.
type cellStore struct {
	cells map[cellKey][]int
	cross [2]map[int]map[int]struct{} // indexed by Axis
}

func newCellStore() *cellStore {
	return &cellStore{
		cells: make(map[cellKey][]int),
		cross: [2]map[int]map[int]struct{}{
			make(map[int]map[int]struct{}),
			make(map[int]map[int]struct{}),
		},
	}
}

func (s *cellStore) insert(k cellKey, record int) {
	members, ok := s.cells[k]
	s.cells[k] = append(members, record)
	if ok {
		return
	}
	s.link(Vertical, k.row, k.col)
	s.link(Horizontal, k.col, k.row)
}

func (s *cellStore) link(a Axis, bucket, other int) {
	set := s.cross[a][bucket]
	if set == nil {
		set = make(map[int]struct{})
		s.cross[a][bucket] = set
	}
	set[other] = struct{}{}
}

func (s *cellStore) unlink(a Axis, bucket, other int) {
	set := s.cross[a][bucket]
	delete(set, other)
	if len(set) == 0 {
		delete(s.cross[a], bucket)
	}
}

// delete removes one occurrence of record from a cell. A record missing from the
// cell its index entry names is a broken cube.
func (s *cellStore) delete(k cellKey, record int) {
	members := s.cells[k]
	i := slices.Index(members, record)
	if i < 0 {
		panic(fmt.Sprintf("cube: record %d missing from cell %v", record, k))
	}
	members = slices.Delete(members, i, i+1)
	if len(members) > 0 {
		s.cells[k] = members
		return
	}
	delete(s.cells, k)
	s.unlink(Vertical, k.row, k.col)
	s.unlink(Horizontal, k.col, k.row)
}

func (s *cellStore) members(k cellKey) []int {
	return s.cells[k]
}

// partners returns the buckets of the other axis that share a non-empty cell with
// bucket, ascending
func (s *cellStore) partners(a Axis, bucket int) []int {
	return slices.Sorted(maps.Keys(s.cross[a][bucket]))
}

// sortedKeys returns the keys of all non-empty cells in row major order
func (s *cellStore) sortedKeys() []cellKey {
	return slices.SortedFunc(maps.Keys(s.cells), compareKeys)
}

// renumber shifts every record at or after from by delta
func (s *cellStore) renumber(from, delta int) {
	for _, members := range s.cells {
		for i, r := range members {
			if r >= from {
				members[i] = r + delta
			}
		}
	}
}

func (idx reverseIndex) renumbered(from, delta int) reverseIndex {
	out := make(reverseIndex, len(idx))
	for r, k := range idx {
		if r >= from {
			r += delta
		}
		out[r] = k
	}
	return out
}

// records returns the tracked records, ascending
func (idx reverseIndex) records() []int {
	return slices.Sorted(maps.Keys(idx))
}

// relocation gives the new cell of a record during a rebuild. ok is false when the
// record has no cell in the new layout.
type relocation func(record int, from cellKey) (to cellKey, ok bool)

type placement struct {
	record int
	cell   cellKey
}

// rebuild moves every record to its cell in a new layout. The first pass walks the
// old cells in order and computes each member's new cell; the second pass fills a
// fresh cell store, reverse index and bucket counts from those placements. Member
// order within a cell follows the order of the old cells.
func (c *Cube) rebuild(rows, cols *axisIndex, relocate relocation) {
	placements := make([]placement, 0, len(c.index))
	for _, k := range c.cells.sortedKeys() {
		for _, r := range c.cells.members(k) {
			if to, ok := relocate(r, k); ok {
				placements = append(placements, placement{record: r, cell: to})
			}
		}
	}

	store := newCellStore()
	index := make(reverseIndex, len(placements))
	rowElements := make([]int, rows.size)
	colElements := make([]int, cols.size)
	for _, p := range placements {
		if p.cell.row < 0 || p.cell.row >= rows.size || p.cell.col < 0 || p.cell.col >= cols.size {
			panic(fmt.Sprintf("cube: record %d relocated outside the layout: %v", p.record, p.cell))
		}
		if _, dup := index[p.record]; dup {
			panic(fmt.Sprintf("cube: record %d placed twice", p.record))
		}
		store.insert(p.cell, p.record)
		index[p.record] = p.cell
		rowElements[p.cell.row]++
		colElements[p.cell.col]++
	}
	rows.load(rowElements)
	cols.load(colElements)

	c.rows, c.cols = rows, cols
	c.cells, c.index = store, index
}
