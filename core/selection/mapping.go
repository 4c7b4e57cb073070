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
	"errors"
	"fmt"
	"log"
	"slices"
)

// ErrNotPermutation is returned for orders that do not show every index once
var ErrNotPermutation = errors.New("selection: order is not a permutation")

// IndexMapper is one proxy layer between the source table and an external
// model, such as a sorting or filtering view. Both directions return -1 for
// indexes the layer cannot map.
type IndexMapper interface {
	MapToSource(proxy int) int
	MapFromSource(source int) int
}

// Model is an external selection model in its own index space
type Model interface {
	SetSelection(indexes []int)
}

// ModelFunc adapts a function to Model
type ModelFunc func(indexes []int)

func (f ModelFunc) SetSelection(indexes []int) { f(indexes) }

// Chain is a sequence of proxy layers, the one closest to the source first
type Chain []IndexMapper

// FromSource maps a source index to the outermost layer, -1 if any layer fails
func (ch Chain) FromSource(i int) int {
	for _, m := range ch {
		if m == nil || i < 0 {
			return -1
		}
		i = m.MapFromSource(i)
	}
	return i
}

// ToSource maps an index of the outermost layer back to the source
func (ch Chain) ToSource(i int) int {
	for j := len(ch) - 1; j >= 0; j-- {
		if ch[j] == nil || i < 0 {
			return -1
		}
		i = ch[j].MapToSource(i)
	}
	return i
}

type syncTarget struct {
	model Model
	chain Chain
}

// SyncTo pushes the selection to m whenever it changes, mapped through chain.
// Records the chain cannot map are left out with a logged warning. The current
// selection is pushed immediately. The returned function stops the sync.
func (t *Tracker) SyncTo(m Model, chain ...IndexMapper) (stop func()) {
	s := &syncTarget{model: m, chain: chain}
	t.syncs = append(t.syncs, s)
	t.pushTo(s)
	return func() {
		t.syncs = slices.DeleteFunc(t.syncs, func(x *syncTarget) bool { return x == s })
	}
}

// SelectFrom selects records given in the index space of the outermost layer
// of chain
func (t *Tracker) SelectFrom(chain Chain, indexes ...int) {
	records := make([]int, 0, len(indexes))
	for _, i := range indexes {
		r := chain.ToSource(i)
		if r < 0 {
			log.Printf("selection: index %d cannot be mapped through %d proxy layers", i, len(chain))
			continue
		}
		records = append(records, r)
	}
	t.Select(records...)
}

func (t *Tracker) push() {
	for _, s := range slices.Clone(t.syncs) {
		t.pushTo(s)
	}
}

func (t *Tracker) pushTo(s *syncTarget) {
	indexes := make([]int, 0, len(t.selected))
	lost := 0
	for _, r := range t.Selected() {
		i := s.chain.FromSource(r)
		if i < 0 {
			lost++
			continue
		}
		indexes = append(indexes, i)
	}
	if lost > 0 {
		log.Printf("selection: %d of %d selected records cannot be mapped through %d proxy layers",
			lost, len(t.selected), len(s.chain))
	}
	slices.Sort(indexes)
	s.model.SetSelection(indexes)
}

// PermutationMapper is a layer that shows every source index once, in order:
// proxy index i shows source index order[i]
type PermutationMapper struct {
	order   []int
	inverse []int
}

// NewPermutationMapper fails when order is not a permutation of
// 0..len(order)-1
func NewPermutationMapper(order []int) (*PermutationMapper, error) {
	inverse := make([]int, len(order))
	for i := range inverse {
		inverse[i] = -1
	}
	for i, s := range order {
		if s < 0 || s >= len(order) || inverse[s] >= 0 {
			return nil, fmt.Errorf("%w: index %d shows %d", ErrNotPermutation, i, s)
		}
		inverse[s] = i
	}
	return &PermutationMapper{order: slices.Clone(order), inverse: inverse}, nil
}

// MapToSource maps a proxy index to the source. A nil mapper maps nothing.
func (p *PermutationMapper) MapToSource(proxy int) int {
	if p == nil || proxy < 0 || proxy >= len(p.order) {
		return -1
	}
	return p.order[proxy]
}

func (p *PermutationMapper) MapFromSource(source int) int {
	if p == nil || source < 0 || source >= len(p.inverse) {
		return -1
	}
	return p.inverse[source]
}

// SubsetMapper is a layer that shows some source indexes in their source order,
// such as the members of one cell
type SubsetMapper struct {
	rows []int
}

func NewSubsetMapper(rows []int) *SubsetMapper {
	sorted := slices.Clone(rows)
	slices.Sort(sorted)
	return &SubsetMapper{rows: slices.Compact(sorted)}
}

func (s *SubsetMapper) MapToSource(proxy int) int {
	if s == nil || proxy < 0 || proxy >= len(s.rows) {
		return -1
	}
	return s.rows[proxy]
}

func (s *SubsetMapper) MapFromSource(source int) int {
	if s == nil {
		return -1
	}
	i, found := slices.BinarySearch(s.rows, source)
	if !found {
		return -1
	}
	return i
}

// Len returns the number of rows the layer shows.
func (s *SubsetMapper) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rows)
}
