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
	"errors"
	"fmt"
)

const maxReportedProblems = 20

type problems struct {
	errs    []error
	dropped int
}

func (p *problems) addf(format string, args ...any) {
	if len(p.errs) >= maxReportedProblems {
		p.dropped++
		return
	}
	p.errs = append(p.errs, fmt.Errorf(format, args...))
}

func (p *problems) err() error {
	if len(p.errs) == 0 {
		return nil
	}
	if p.dropped > 0 {
		p.errs = append(p.errs, fmt.Errorf("%d more problems", p.dropped))
	}
	return fmt.Errorf("%w: %w", ErrInconsistent, errors.Join(p.errs...))
}

// Check recomputes the state of the cube from scratch and compares it with the
// incrementally maintained one: cell members against the record index, bucket
// counts, occupancy and header trees against the cells, and finally every record
// of the source against the cell its providers and filters give it. A nil result
// means the cube is consistent.
func (c *Cube) Check() error {
	var p problems

	rowElements := make([]int, c.rows.size)
	colElements := make([]int, c.cols.size)
	seen := make(map[int]bool, len(c.index))
	for k, members := range c.cells.cells {
		if len(members) == 0 {
			p.addf("empty cell %v is stored", k)
		}
		if k.row < 0 || k.row >= c.rows.size || k.col < 0 || k.col >= c.cols.size {
			p.addf("cell %v outside %dx%d buckets", k, c.rows.size, c.cols.size)
			continue
		}
		for _, r := range members {
			if seen[r] {
				p.addf("record %d is in more than one cell", r)
			}
			seen[r] = true
			if got, ok := c.index[r]; !ok || got != k {
				p.addf("record %d is in cell %v, index says %v (tracked %v)", r, k, got, ok)
			}
		}
		rowElements[k.row] += len(members)
		colElements[k.col] += len(members)
		if _, ok := c.cells.cross[Vertical][k.row][k.col]; !ok {
			p.addf("cell %v missing from the row cross index", k)
		}
		if _, ok := c.cells.cross[Horizontal][k.col][k.row]; !ok {
			p.addf("cell %v missing from the column cross index", k)
		}
	}
	if len(seen) != len(c.index) {
		p.addf("%d records in cells, %d in the index", len(seen), len(c.index))
	}
	for _, a := range []Axis{Vertical, Horizontal} {
		for b, others := range c.cells.cross[a] {
			for o := range others {
				k := cellKey{row: b, col: o}
				if a == Horizontal {
					k = cellKey{row: o, col: b}
				}
				if len(c.cells.cells[k]) == 0 {
					p.addf("%s cross index names empty cell %v", a, k)
				}
			}
		}
	}

	c.checkAxis(&p, Vertical, rowElements)
	c.checkAxis(&p, Horizontal, colElements)

	rowTotal, colTotal := c.rows.weight.Total(), c.cols.weight.Total()
	if rowTotal != len(c.index) || colTotal != len(c.index) {
		p.addf("row total %d, column total %d, %d records", rowTotal, colTotal, len(c.index))
	}

	// every record of the source, recomputed from providers and filters
	for r := 0; r < c.source.Length(); r++ {
		want, ok := c.placeOf(r)
		got, tracked := c.index[r]
		switch {
		case ok && !tracked:
			p.addf("record %d belongs in cell %v but is not in the cube", r, want)
		case !ok && tracked:
			p.addf("record %d is in cell %v but has no cell", r, got)
		case ok && got != want:
			p.addf("record %d is in cell %v, belongs in %v", r, got, want)
		}
	}
	for r := range c.index {
		if r < 0 || r >= c.source.Length() {
			p.addf("record %d is outside the source (length %d)", r, c.source.Length())
		}
	}
	return p.err()
}

func (c *Cube) checkAxis(p *problems, a Axis, want []int) {
	ax := c.axis(a)
	for level, prov := range ax.providers {
		if n := prov.CategoryCount(); n != ax.counts[level] {
			p.addf("%s level %d: %s has %d categories, cube assumes %d", a, level, prov.Name(), n, ax.counts[level])
		}
	}
	occupied := 0
	for b, n := range want {
		if ax.elements[b] != n {
			p.addf("%s bucket %d counts %d records, cells hold %d", a, b, ax.elements[b], n)
		}
		if w := ax.weight.Get(b); w != n {
			p.addf("%s bucket %d weight %d, cells hold %d", a, b, w, n)
		}
		o := 0
		if n > 0 {
			o = 1
			occupied++
		}
		if ax.occupied.Get(b) != o {
			p.addf("%s bucket %d occupancy %d, want %d", a, b, ax.occupied.Get(b), o)
		}
	}
	if ax.sectionCount() != occupied {
		p.addf("%s axis: %d sections, %d non-empty buckets", a, ax.sectionCount(), occupied)
	}
	for level, lv := range ax.levels {
		leaves := make([]int, len(lv.leaves))
		for b, n := range want {
			if n > 0 {
				leaves[b/lv.stride]++
			}
		}
		for node, l := range leaves {
			if lv.leaves[node] != l {
				p.addf("%s level %d node %d spans %d, want %d", a, level, node, lv.leaves[node], l)
			}
			visible := 0
			if l > 0 {
				visible = 1
			}
			if lv.nodes.Get(node) != visible {
				p.addf("%s level %d node %d visibility %d, want %d", a, level, node, lv.nodes.Get(node), visible)
			}
		}
	}
}
