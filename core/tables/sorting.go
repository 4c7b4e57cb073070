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

package tables

import (
	"container/heap"
	"slices"

	"github.com/google/taxinomia-cube/core/columns"
)

// SortColumn names a column and its sort direction
type SortColumn struct {
	Name       string
	Descending bool
}

type sortableColumn struct {
	col        columns.IDataColumn
	descending bool
}

// topKHeap is a max-heap holding the K best rows seen so far, worst on top
type topKHeap struct {
	rows []int
	cols []sortableColumn
}

func (h *topKHeap) Len() int           { return len(h.rows) }
func (h *topKHeap) Less(i, j int) bool { return compareRows(h.cols, h.rows[i], h.rows[j]) > 0 }
func (h *topKHeap) Swap(i, j int)      { h.rows[i], h.rows[j] = h.rows[j], h.rows[i] }

func (h *topKHeap) Push(x any) {
	h.rows = append(h.rows, x.(int))
}

func (h *topKHeap) Pop() any {
	old := h.rows
	n := len(old)
	x := old[n-1]
	h.rows = old[:n-1]
	return x
}

func compareRows(cols []sortableColumn, i, j int) int {
	for _, sc := range cols {
		if cmp := columns.CompareAtIndex(sc.col, i, j); cmp != 0 {
			if sc.descending {
				return -cmp
			}
			return cmp
		}
	}
	// row order as the final tie breaker keeps results deterministic
	return i - j
}

// SortedTopK returns at most limit of the given rows, ordered by sortOrder.
// Unknown sort columns are ignored. A limit <= 0 means no limit. The input
// slice is not modified.
func (dt *DataTable) SortedTopK(rows []int, sortOrder []SortColumn, limit int) []int {
	if limit <= 0 || limit > len(rows) {
		limit = len(rows)
	}
	if limit == 0 {
		return []int{}
	}

	cols := make([]sortableColumn, 0, len(sortOrder))
	for _, so := range sortOrder {
		if col := dt.GetColumn(so.Name); col != nil {
			cols = append(cols, sortableColumn{col: col, descending: so.Descending})
		}
	}

	if limit == len(rows) {
		result := slices.Clone(rows)
		slices.SortFunc(result, func(a, b int) int { return compareRows(cols, a, b) })
		return result
	}

	// O(n log k) selection instead of sorting everything
	h := &topKHeap{rows: slices.Clone(rows[:limit]), cols: cols}
	heap.Init(h)
	for _, r := range rows[limit:] {
		if compareRows(cols, r, h.rows[0]) < 0 {
			h.rows[0] = r
			heap.Fix(h, 0)
		}
	}
	result := h.rows
	slices.SortFunc(result, func(a, b int) int { return compareRows(cols, a, b) })
	return result
}

// RowsAsMaps returns the named columns of the given rows, keyed by column name.
// Unknown columns are skipped.
func (dt *DataTable) RowsAsMaps(rows []int, columnNames []string) []map[string]string {
	result := make([]map[string]string, 0, len(rows))
	for _, r := range rows {
		m := make(map[string]string, len(columnNames))
		for _, name := range columnNames {
			if col := dt.GetColumn(name); col != nil {
				if v, err := col.GetString(r); err == nil {
					m[name] = v
				}
			}
		}
		result = append(result, m)
	}
	return result
}
