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

// Package fenwick provides a binary indexed tree over non-negative counts. The cube
// keeps one per axis for element counts and one for bucket occupancy, which turns
// bucket to section conversion into a prefix sum and section to bucket conversion
// into a search.
//
//   - Add: O(log n)
//   - PrefixSum, RangeSum: O(log n)
//   - Find: O(log n)
//   - Reset: O(n)
package fenwick

// Tree is not safe for concurrent use
type Tree struct {
	tree []int // 1-indexed
	n    int
	mask int // highest power of two <= n
}

// New creates a tree with n zero counts. n may be zero.
func New(n int) *Tree {
	if n < 0 {
		n = 0
	}
	t := &Tree{}
	t.resize(n)
	return t
}

// FromCounts creates a tree holding counts
func FromCounts(counts []int) *Tree {
	t := &Tree{}
	t.Reset(counts)
	return t
}

func (t *Tree) resize(n int) {
	t.n = n
	t.tree = make([]int, n+1)
	t.mask = 1
	for t.mask<<1 <= n {
		t.mask <<= 1
	}
}

// Reset replaces the content of the tree, resizing it to len(counts)
func (t *Tree) Reset(counts []int) {
	t.resize(len(counts))
	for i, c := range counts {
		t.tree[i+1] += c
		if parent := (i + 1) + ((i + 1) & -(i + 1)); parent <= t.n {
			t.tree[parent] += t.tree[i+1]
		}
	}
}

// Size returns the number of counts
func (t *Tree) Size() int {
	return t.n
}

// Add adds delta to the count at index i. The count must stay non-negative.
func (t *Tree) Add(i int, delta int) {
	if i < 0 || i >= t.n {
		panic("fenwick: index out of range")
	}
	for i++; i <= t.n; i += i & -i {
		t.tree[i] += delta
	}
}

// PrefixSum returns the sum of counts 0..i inclusive. Indices below zero give 0,
// indices past the end give the total.
func (t *Tree) PrefixSum(i int) int {
	if i < 0 {
		return 0
	}
	if i >= t.n {
		i = t.n - 1
	}
	sum := 0
	for i++; i > 0; i -= i & -i {
		sum += t.tree[i]
	}
	return sum
}

// RangeSum returns the sum of counts left..right inclusive
func (t *Tree) RangeSum(left, right int) int {
	if left < 0 {
		left = 0
	}
	if right >= t.n {
		right = t.n - 1
	}
	if left > right {
		return 0
	}
	return t.PrefixSum(right) - t.PrefixSum(left-1)
}

// Get returns the count at index i
func (t *Tree) Get(i int) int {
	return t.RangeSum(i, i)
}

// Total returns the sum of all counts
func (t *Tree) Total() int {
	return t.PrefixSum(t.n - 1)
}

// Find returns the smallest index i with PrefixSum(i) >= k, or -1 if k is not in
// 1..Total().
func (t *Tree) Find(k int) int {
	if k <= 0 || t.n == 0 {
		return -1
	}
	pos := 0
	for step := t.mask; step > 0; step >>= 1 {
		if next := pos + step; next <= t.n && t.tree[next] < k {
			pos = next
			k -= t.tree[next]
		}
	}
	if pos >= t.n {
		return -1
	}
	return pos
}

// Counts returns all counts
func (t *Tree) Counts() []int {
	counts := make([]int, t.n)
	prev := 0
	for i := range counts {
		s := t.PrefixSum(i)
		counts[i] = s - prev
		prev = s
	}
	return counts
}
