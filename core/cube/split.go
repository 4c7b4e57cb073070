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
	"log"
	"slices"

	"github.com/google/taxinomia-cube/core/categories"
)

// withBucket returns k with the bucket of axis a replaced
func withBucket(k cellKey, a Axis, bucket int) cellKey {
	if a == Vertical {
		k.row = bucket
	} else {
		k.col = bucket
	}
	return k
}

// relayout rebuilds the cube with a new index for axis a, moving the bucket of
// each record on that axis with move. A move result of -1 drops the record.
func (c *Cube) relayout(a Axis, next *axisIndex, move func(record, bucket int) int) {
	rows, cols := c.rows, c.cols
	if a == Vertical {
		rows = next
	} else {
		cols = next
	}
	// the axis that keeps its layout still gets fresh counts from the rebuild
	if a == Vertical {
		cols = layoutAxis(c.cols.providers, c.cols.counts, c.cols.size)
	} else {
		rows = layoutAxis(c.rows.providers, c.rows.counts, c.rows.size)
	}
	c.rebuild(rows, cols, func(record int, from cellKey) (cellKey, bool) {
		b := move(record, from.bucket(a))
		if b < 0 {
			return cellKey{}, false
		}
		return withBucket(from, a, b), true
	})
}

func (c *Cube) checkStructural() error {
	if c.resetting {
		return ErrReentrant
	}
	if c.closed {
		return fmt.Errorf("cube: closed")
	}
	return nil
}

// Split inserts provider p at level of axis a, subdividing every bucket of that
// axis by the categories of p. Every record is categorized again by p; records p
// places in no category leave the cube. Split fails without changing the cube when
// the axis would exceed the bucket limit.
func (c *Cube) Split(a Axis, level int, p categories.Provider) error {
	if err := c.checkStructural(); err != nil {
		return err
	}
	if p == nil {
		return ErrNilProvider
	}
	old := c.axis(a)
	if level < 0 || level > old.depth() {
		return fmt.Errorf("%w: split at %d, %s axis has %d levels", ErrLevel, level, a, old.depth())
	}
	if _, _, used := c.levelOf(p); used {
		return fmt.Errorf("%w: %s", ErrDuplicateProvider, p.Name())
	}

	// a refused split leaves p attached; only a detached p changes its count
	// when held, and the release below detaches it again
	if _, err := bucketCount(slices.Insert(slices.Clone(old.counts), level, p.CategoryCount()), c.maxBuckets); err != nil {
		return err
	}
	c.hold(p)
	n := p.CategoryCount()
	providers := slices.Insert(old.providersCopy(), level, p)
	counts := slices.Insert(slices.Clone(old.counts), level, n)
	next, err := newAxisIndex(providers, counts, c.maxBuckets)
	if err != nil {
		c.letGo(p)
		return err
	}

	minor := old.span(level)
	c.reset(func() {
		c.relayout(a, next, func(record, bucket int) int {
			cat := p.CategoryOf(record)
			if cat < 0 || cat >= n {
				return -1
			}
			major, rest := bucket/minor, bucket%minor
			return (major*n+cat)*minor + rest
		})
	})
	return nil
}

// Collapse removes the provider at level of axis a, merging the buckets that only
// differed by its category. Records that were outside every category of the
// removed provider come back.
func (c *Cube) Collapse(a Axis, level int) error {
	if err := c.checkStructural(); err != nil {
		return err
	}
	old := c.axis(a)
	if !old.validLevel(level) {
		return fmt.Errorf("%w: collapse at %d, %s axis has %d levels", ErrLevel, level, a, old.depth())
	}

	p := old.providers[level]
	providers := slices.Delete(old.providersCopy(), level, level+1)
	counts := slices.Delete(slices.Clone(old.counts), level, level+1)
	next, err := newAxisIndex(providers, counts, c.maxBuckets)
	if err != nil {
		return err
	}

	n := old.counts[level]
	minor := old.span(level + 1)
	c.reset(func() {
		c.relayout(a, next, func(record, bucket int) int {
			major, rest := bucket/(n*minor), bucket%minor
			return major*minor + rest
		})
		c.letGo(p)
		if c.source.Length() > len(c.index) {
			c.populate()
		}
	})
	return nil
}

// changeCategories follows a category insertion (delta +1) or removal (delta -1)
// at index at of the provider on level of axis a. Buckets are walked as (super,
// category, sub) triples; only the category part moves. A removed category is
// expected to be empty; records still in it are categorized again.
func (c *Cube) changeCategories(a Axis, level, at, delta int) {
	old := c.axis(a)
	n := old.counts[level]
	counts := slices.Clone(old.counts)
	counts[level] = n + delta

	size, err := bucketCount(counts, c.maxBuckets)
	if err != nil {
		// the provider already changed, so the cube has to follow it
		log.Printf("cube: %s axis after category change of %s: %v",
			a, categories.Describe(old.providers[level]), err)
		size = 1
		for _, k := range counts {
			size *= k
		}
	}
	next := layoutAxis(old.providersCopy(), counts, size)

	sub := old.span(level + 1)
	c.reset(func() {
		c.relayout(a, next, func(record, bucket int) int {
			super, cat, rest := bucket/(n*sub), (bucket/sub)%n, bucket%sub
			switch {
			case delta > 0 && cat >= at:
				cat++
			case delta < 0 && cat == at:
				return next.bucketOf(record)
			case delta < 0 && cat > at:
				cat--
			}
			return (super*(n+delta)+cat)*sub + rest
		})
	})
}
