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

package fenwick

import (
	"slices"
	"testing"
)

func TestPrefixAndRangeSums(t *testing.T) {
	tree := FromCounts([]int{3, 0, 2, 5, 0, 1})
	tests := []struct {
		left, right int
		want        int
	}{
		{0, 0, 3},
		{0, 5, 11},
		{1, 2, 2},
		{3, 4, 5},
		{-3, 1, 3},
		{4, 100, 1},
		{4, 2, 0},
	}
	for _, tt := range tests {
		if got := tree.RangeSum(tt.left, tt.right); got != tt.want {
			t.Errorf("RangeSum(%d, %d) = %d, want %d", tt.left, tt.right, got, tt.want)
		}
	}
	if got := tree.Total(); got != 11 {
		t.Errorf("Total() = %d, want 11", got)
	}
}

func TestAddMatchesReset(t *testing.T) {
	counts := []int{1, 4, 0, 0, 7, 2, 9, 3, 0}
	incremental := New(len(counts))
	for i, c := range counts {
		incremental.Add(i, c)
	}
	built := FromCounts(counts)
	for i := range counts {
		if a, b := incremental.PrefixSum(i), built.PrefixSum(i); a != b {
			t.Errorf("PrefixSum(%d): incremental %d, built %d", i, a, b)
		}
	}
	if !slices.Equal(built.Counts(), counts) {
		t.Errorf("Counts() = %v, want %v", built.Counts(), counts)
	}
}

func TestFind(t *testing.T) {
	// occupancy of buckets 1, 4, 5 and 8
	tree := FromCounts([]int{0, 1, 0, 0, 1, 1, 0, 0, 1})
	for k, want := range map[int]int{1: 1, 2: 4, 3: 5, 4: 8, 0: -1, 5: -1} {
		if got := tree.Find(k); got != want {
			t.Errorf("Find(%d) = %d, want %d", k, got, want)
		}
	}

	tree.Add(4, -1)
	tree.Add(0, 1)
	for k, want := range map[int]int{1: 0, 2: 1, 3: 5, 4: 8} {
		if got := tree.Find(k); got != want {
			t.Errorf("after update Find(%d) = %d, want %d", k, got, want)
		}
	}
}

func TestEmptyTree(t *testing.T) {
	tree := New(0)
	if tree.Total() != 0 || tree.Find(1) != -1 || tree.Size() != 0 {
		t.Errorf("empty tree: Total %d, Find %d, Size %d", tree.Total(), tree.Find(1), tree.Size())
	}
	defer func() {
		if recover() == nil {
			t.Error("Add out of range did not panic")
		}
	}()
	tree.Add(0, 1)
}
