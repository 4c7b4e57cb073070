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
	"slices"

	"github.com/google/taxinomia-cube/core/categories"
)

// Header is one node of the header tree of an axis at some level
type Header struct {
	Label    string
	ToolTip  string
	Category int // category of the provider at this level
	Section  int // first leaf section covered
	Span     int // number of leaf sections covered
	Elements int // records under the header
}

// RowCount returns the number of non-empty row buckets
func (c *Cube) RowCount() int {
	return c.rows.sectionCount()
}

// ColumnCount returns the number of non-empty column buckets
func (c *Cube) ColumnCount() int {
	return c.cols.sectionCount()
}

func (c *Cube) SectionCount(a Axis) int {
	return c.axis(a).sectionCount()
}

// HeaderCount returns the number of providers stacked on an axis
func (c *Cube) HeaderCount(a Axis) int {
	return c.axis(a).depth()
}

// Providers returns the providers of an axis, outermost first
func (c *Cube) Providers(a Axis) []categories.Provider {
	return c.axis(a).providersCopy()
}

// NumberOfBuckets returns the number of buckets of an axis, empty ones included
func (c *Cube) NumberOfBuckets(a Axis) int {
	return c.axis(a).size
}

// TotalElements returns the number of records in the cube
func (c *Cube) TotalElements() int {
	return len(c.index)
}

// Records returns the records in the cube, ascending
func (c *Cube) Records() []int {
	return c.index.records()
}

// Headers returns the visible headers of an axis at a level, in section order.
// It returns nil for an invalid level.
func (c *Cube) Headers(a Axis, level int) []Header {
	ax := c.axis(a)
	if !ax.validLevel(level) {
		return nil
	}
	lv := ax.levels[level]
	p := ax.providers[level]
	n := lv.nodes.Total()
	headers := make([]Header, 0, n)
	for hs := 0; hs < n; hs++ {
		node := lv.nodes.Find(hs + 1)
		first, end := ax.nodeBuckets(level, node)
		cat := node % ax.counts[level]
		headers = append(headers, Header{
			Label:    p.CategoryLabel(cat, categories.DisplayRole),
			ToolTip:  p.CategoryLabel(cat, categories.ToolTipRole),
			Category: cat,
			Section:  ax.sectionOf(first),
			Span:     lv.leaves[node],
			Elements: ax.weight.RangeSum(first, end-1),
		})
	}
	return headers
}

// SectionLabels returns the labels of a leaf section, outermost level first
func (c *Cube) SectionLabels(a Axis, section int) []string {
	ax := c.axis(a)
	b := ax.bucketAt(section)
	if b < 0 {
		return nil
	}
	labels := make([]string, ax.depth())
	for level, p := range ax.providers {
		labels[level] = p.CategoryLabel(ax.category(b, level), categories.DisplayRole)
	}
	return labels
}

func (c *Cube) cellAt(row, col int) (cellKey, bool) {
	k := cellKey{row: c.rows.bucketAt(row), col: c.cols.bucketAt(col)}
	return k, k.row >= 0 && k.col >= 0
}

// Elements returns the records of the cell at row and column section
func (c *Cube) Elements(row, col int) []int {
	k, ok := c.cellAt(row, col)
	if !ok {
		return nil
	}
	return slices.Clone(c.cells.members(k))
}

func (c *Cube) ElementCount(row, col int) int {
	k, ok := c.cellAt(row, col)
	if !ok {
		return 0
	}
	return len(c.cells.members(k))
}

// SectionElements returns the records of a whole row or column section
func (c *Cube) SectionElements(a Axis, section int) []int {
	ax := c.axis(a)
	b := ax.bucketAt(section)
	if b < 0 {
		return nil
	}
	return c.bucketElements(a, b, nil)
}

func (c *Cube) SectionElementCount(a Axis, section int) int {
	ax := c.axis(a)
	b := ax.bucketAt(section)
	if b < 0 {
		return 0
	}
	return ax.elements[b]
}

func (c *Cube) bucketElements(a Axis, b int, out []int) []int {
	for _, other := range c.cells.partners(a, b) {
		k := cellKey{row: b, col: other}
		if a == Horizontal {
			k = cellKey{row: other, col: b}
		}
		out = append(out, c.cells.members(k)...)
	}
	return out
}

// HeaderElements returns the records under header section hs at level
func (c *Cube) HeaderElements(a Axis, level, hs int) []int {
	ax := c.axis(a)
	if !ax.validLevel(level) {
		return nil
	}
	node := ax.nodeAt(level, hs)
	if node < 0 {
		return nil
	}
	first, _ := ax.nodeBuckets(level, node)
	section := ax.sectionOf(first)
	var out []int
	for s := section; s < section+ax.levels[level].leaves[node]; s++ {
		out = c.bucketElements(a, ax.bucketAt(s), out)
	}
	return out
}

func (c *Cube) HeaderElementCount(a Axis, level, hs int) int {
	ax := c.axis(a)
	if !ax.validLevel(level) {
		return 0
	}
	node := ax.nodeAt(level, hs)
	if node < 0 {
		return 0
	}
	first, end := ax.nodeBuckets(level, node)
	return ax.weight.RangeSum(first, end-1)
}

// SectionForElement computes the section of a record from the providers. For a
// record whose bucket is empty it is the section the bucket would get. It returns
// -1 for records outside every category.
func (c *Cube) SectionForElement(record int, a Axis) int {
	ax := c.axis(a)
	b := ax.bucketOf(record)
	if b < 0 {
		return -1
	}
	return ax.sectionOf(b)
}

// SectionForElementInternal returns the section of a record as recorded by the
// cube, -1 for records it does not track
func (c *Cube) SectionForElementInternal(record int, a Axis) int {
	k, ok := c.index[record]
	if !ok {
		return -1
	}
	return c.axis(a).sectionOf(k.bucket(a))
}

// Bucket returns the row and column bucket of a tracked record
func (c *Cube) Bucket(record int) (row, col int, ok bool) {
	k, ok := c.index[record]
	return k.row, k.col, ok
}

// ToSection returns the leaf sections covered by header section hs at level as
// a first section and a count. It returns -1, 0 for an invalid header.
func (c *Cube) ToSection(a Axis, level, hs int) (first, count int) {
	ax := c.axis(a)
	if !ax.validLevel(level) {
		return -1, 0
	}
	node := ax.nodeAt(level, hs)
	if node < 0 {
		return -1, 0
	}
	b, _ := ax.nodeBuckets(level, node)
	return ax.sectionOf(b), ax.levels[level].leaves[node]
}

// ToHeaderSection returns the header section at level that covers a leaf section,
// -1 if there is none
func (c *Cube) ToHeaderSection(a Axis, level, section int) int {
	ax := c.axis(a)
	if !ax.validLevel(level) {
		return -1
	}
	b := ax.bucketAt(section)
	if b < 0 {
		return -1
	}
	node := b / ax.levels[level].stride
	return ax.levels[level].nodes.PrefixSum(node - 1)
}

// BucketForSection returns the bucket of a section, -1 if there is no such section
func (c *Cube) BucketForSection(a Axis, section int) int {
	return c.axis(a).bucketAt(section)
}

// SectionForBucket returns the section of a bucket, -1 if the bucket is empty
func (c *Cube) SectionForBucket(a Axis, bucket int) int {
	ax := c.axis(a)
	if bucket < 0 || bucket >= ax.size || ax.elements[bucket] == 0 {
		return -1
	}
	return ax.sectionOf(bucket)
}

// BucketRange returns the buckets [first, end) covered by a header node, for the
// header section hs at level
func (c *Cube) BucketRange(a Axis, level, hs int) (first, end int, ok bool) {
	ax := c.axis(a)
	if !ax.validLevel(level) {
		return 0, 0, false
	}
	node := ax.nodeAt(level, hs)
	if node < 0 {
		return 0, 0, false
	}
	first, end = ax.nodeBuckets(level, node)
	return first, end, true
}
