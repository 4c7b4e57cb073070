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
	"fmt"

	"github.com/google/taxinomia-cube/core/categories"
	"github.com/google/taxinomia-cube/core/fenwick"
)

// axisIndex is the bucket index of one axis. Buckets are addressed most
// significant provider first:
//
//	bucket = Σ category[i] * stride[i],  stride[i] = Π count[j] for j > i
//
// A header node at level L covers the stride[L] consecutive buckets sharing the
// categories of levels 0..L; its index is bucket / stride[L].
type axisIndex struct {
	providers []categories.Provider
	counts    []int // category count per level, as known to the cube
	strides   []int
	size      int

	elements []int         // records per bucket
	weight   *fenwick.Tree // records per bucket
	occupied *fenwick.Tree // 1 per non-empty bucket
	levels   []levelIndex
}

type levelIndex struct {
	stride int
	leaves []int         // non-empty buckets per node
	nodes  *fenwick.Tree // 1 per node with non-empty buckets
}

// bucketCount returns Π counts, failing if it exceeds limit
func bucketCount(counts []int, limit int) (int, error) {
	size := 1
	for _, n := range counts {
		if n < 0 {
			return 0, fmt.Errorf("cube: negative category count %d", n)
		}
		if n == 0 {
			return 0, nil
		}
	}
	for _, n := range counts {
		if size > limit/n {
			return 0, fmt.Errorf("%w: %v exceeds %d", ErrCapacity, counts, limit)
		}
		size *= n
	}
	return size, nil
}

func newAxisIndex(providers []categories.Provider, counts []int, limit int) (*axisIndex, error) {
	size, err := bucketCount(counts, limit)
	if err != nil {
		return nil, err
	}
	return layoutAxis(providers, counts, size), nil
}

// layoutAxis builds an empty index without a capacity check
func layoutAxis(providers []categories.Provider, counts []int, size int) *axisIndex {
	ax := &axisIndex{
		providers: providers,
		counts:    counts,
		strides:   make([]int, len(counts)),
		size:      size,
		elements:  make([]int, size),
		weight:    fenwick.New(size),
		occupied:  fenwick.New(size),
		levels:    make([]levelIndex, len(counts)),
	}
	stride := 1
	for i := len(counts) - 1; i >= 0; i-- {
		ax.strides[i] = stride
		stride *= counts[i]
	}
	for i := range ax.levels {
		nodes := 0
		if size > 0 {
			nodes = size / ax.strides[i]
		}
		ax.levels[i] = levelIndex{
			stride: ax.strides[i],
			leaves: make([]int, nodes),
			nodes:  fenwick.New(nodes),
		}
	}
	return ax
}

func (ax *axisIndex) depth() int {
	return len(ax.providers)
}

// span returns the number of buckets covered by the levels from level on
func (ax *axisIndex) span(level int) int {
	n := 1
	for _, c := range ax.counts[level:] {
		n *= c
	}
	return n
}

// bucketOf computes the bucket of a record from the providers, -1 if any provider
// places it in no category
func (ax *axisIndex) bucketOf(record int) int {
	if ax.size == 0 {
		return -1
	}
	b := 0
	for i, p := range ax.providers {
		cat := p.CategoryOf(record)
		if cat < 0 || cat >= ax.counts[i] {
			return -1
		}
		b += cat * ax.strides[i]
	}
	return b
}

// category returns the category of a bucket at a level
func (ax *axisIndex) category(bucket, level int) int {
	return (bucket / ax.strides[level]) % ax.counts[level]
}

// add counts one more record in bucket and reports whether the bucket was empty
func (ax *axisIndex) add(bucket int) bool {
	ax.elements[bucket]++
	ax.weight.Add(bucket, 1)
	if ax.elements[bucket] > 1 {
		return false
	}
	ax.occupied.Add(bucket, 1)
	for i := range ax.levels {
		lv := &ax.levels[i]
		node := bucket / lv.stride
		lv.leaves[node]++
		if lv.leaves[node] == 1 {
			lv.nodes.Add(node, 1)
		}
	}
	return true
}

// remove counts one record less in bucket and reports whether it became empty
func (ax *axisIndex) remove(bucket int) bool {
	if ax.elements[bucket] == 0 {
		panic(fmt.Sprintf("cube: removing from empty bucket %d", bucket))
	}
	ax.elements[bucket]--
	ax.weight.Add(bucket, -1)
	if ax.elements[bucket] > 0 {
		return false
	}
	ax.occupied.Add(bucket, -1)
	for i := range ax.levels {
		lv := &ax.levels[i]
		node := bucket / lv.stride
		lv.leaves[node]--
		if lv.leaves[node] == 0 {
			lv.nodes.Add(node, -1)
		}
	}
	return true
}

// load replaces all counts, in O(size * depth)
func (ax *axisIndex) load(elements []int) {
	ax.elements = elements
	ax.weight.Reset(elements)
	occupied := make([]int, ax.size)
	for b, n := range elements {
		if n > 0 {
			occupied[b] = 1
		}
	}
	ax.occupied.Reset(occupied)
	for i := range ax.levels {
		lv := &ax.levels[i]
		clear(lv.leaves)
		for b, o := range occupied {
			lv.leaves[b/lv.stride] += o
		}
		nodes := make([]int, len(lv.leaves))
		for n, l := range lv.leaves {
			if l > 0 {
				nodes[n] = 1
			}
		}
		lv.nodes.Reset(nodes)
	}
}

func (ax *axisIndex) sectionCount() int {
	return ax.occupied.Total()
}

// sectionOf returns the number of non-empty buckets before bucket, which is the
// section of bucket when it is not empty
func (ax *axisIndex) sectionOf(bucket int) int {
	return ax.occupied.PrefixSum(bucket - 1)
}

// bucketAt returns the bucket of a section, -1 if there is no such section
func (ax *axisIndex) bucketAt(section int) int {
	return ax.occupied.Find(section + 1)
}

func (ax *axisIndex) validLevel(level int) bool {
	return level >= 0 && level < len(ax.levels)
}

// nodeAt returns the node of the header section hs at level, -1 if there is none
func (ax *axisIndex) nodeAt(level, hs int) int {
	return ax.levels[level].nodes.Find(hs + 1)
}

// nodeBuckets returns the bucket range [first, end) of a node
func (ax *axisIndex) nodeBuckets(level, node int) (int, int) {
	stride := ax.levels[level].stride
	return node * stride, (node + 1) * stride
}

func (ax *axisIndex) providersCopy() []categories.Provider {
	return append([]categories.Provider(nil), ax.providers...)
}
