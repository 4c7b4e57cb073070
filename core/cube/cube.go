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

// Package cube implements an incrementally maintained pivot table. Records of a
// table are grouped into cells by the stacks of category providers on the two
// axes of the cube. The cube follows inserts, removals and edits of the table,
// category changes of its providers and global filters, keeping bucket counts,
// cell contents and the record index consistent.
//
// A Cube is not safe for concurrent use. All mutations are expected to come from
// the goroutine that owns the table.
package cube

import (
	"errors"
	"fmt"
	"log"
	"slices"

	"github.com/google/taxinomia-cube/core/categories"
	"github.com/google/taxinomia-cube/core/filters"
	"github.com/google/taxinomia-cube/core/tables"
)

var (
	ErrNilSource         = errors.New("cube: nil data source")
	ErrNilProvider       = errors.New("cube: nil provider")
	ErrCapacity          = errors.New("cube: too many buckets")
	ErrLevel             = errors.New("cube: level out of range")
	ErrDuplicateProvider = errors.New("cube: provider already in use")
	ErrDuplicateFilter   = errors.New("cube: filter already active")
	ErrUnknownFilter     = errors.New("cube: filter not active")
	ErrReentrant         = errors.New("cube: structural change during reset")
	ErrInconsistent      = errors.New("cube: inconsistent state")
)

// DefaultMaxBuckets bounds the number of buckets on one axis
const DefaultMaxBuckets = 1 << 22

// Axis selects the rows (Vertical) or the columns (Horizontal) of a cube
type Axis int

const (
	Vertical Axis = iota
	Horizontal
)

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Source is the table a cube is built on
type Source interface {
	Length() int
	AddObserver(o tables.Observer)
	RemoveObserver(o tables.Observer)
}

type options struct {
	maxBuckets int
	filters    []filters.Filter
}

type Option func(*options)

// WithMaxBuckets sets the largest number of buckets allowed on one axis
func WithMaxBuckets(n int) Option {
	return func(o *options) {
		o.maxBuckets = n
	}
}

// WithGlobalFilters starts the cube with active global filters
func WithGlobalFilters(fs ...filters.Filter) Option {
	return func(o *options) {
		o.filters = append(o.filters, fs...)
	}
}

type Cube struct {
	source     Source
	maxBuckets int

	rows  *axisIndex
	cols  *axisIndex
	cells *cellStore
	index reverseIndex

	filters   []filters.Filter
	listeners []Listener
	trackers  []ElementTracker

	observer  *sourceObserver
	watcher   *providerWatcher
	resetting bool
	deferred  []func()
	closed    bool
}

// New builds a cube over source with at most one provider per axis. A nil
// provider leaves the axis without providers: it has a single bucket.
func New(source Source, rowProvider, colProvider categories.Provider, opts ...Option) (*Cube, error) {
	if source == nil {
		return nil, ErrNilSource
	}
	if dt, ok := source.(*tables.DataTable); ok && dt == nil {
		return nil, ErrNilSource
	}
	o := options{maxBuckets: DefaultMaxBuckets}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxBuckets < 1 {
		return nil, fmt.Errorf("cube: max buckets must be positive, got %d", o.maxBuckets)
	}
	if rowProvider != nil && rowProvider == colProvider {
		return nil, fmt.Errorf("%w: %s on both axes", ErrDuplicateProvider, rowProvider.Name())
	}
	for _, f := range o.filters {
		if f == nil {
			return nil, fmt.Errorf("cube: nil global filter")
		}
	}

	var rowProviders, colProviders []categories.Provider
	if rowProvider != nil {
		rowProviders = append(rowProviders, rowProvider)
	}
	if colProvider != nil {
		colProviders = append(colProviders, colProvider)
	}
	c := &Cube{
		source:     source,
		maxBuckets: o.maxBuckets,
		cells:      newCellStore(),
		index:      make(reverseIndex),
	}
	c.observer = &sourceObserver{cube: c}
	c.watcher = &providerWatcher{cube: c}

	for _, providers := range [][]categories.Provider{rowProviders, colProviders} {
		if _, err := bucketCount(currentCounts(providers), o.maxBuckets); err != nil {
			return nil, err
		}
	}

	// providers report their categories only while held
	held := append(slices.Clone(rowProviders), colProviders...)
	for _, p := range held {
		c.hold(p)
	}
	var err error
	if c.rows, err = newAxisIndex(rowProviders, currentCounts(rowProviders), o.maxBuckets); err == nil {
		c.cols, err = newAxisIndex(colProviders, currentCounts(colProviders), o.maxBuckets)
	}
	if err != nil {
		for _, p := range held {
			c.letGo(p)
		}
		return nil, err
	}
	for _, f := range o.filters {
		c.filters = append(c.filters, f)
		acquire(f)
	}
	c.populate()
	source.AddObserver(c.observer)
	return c, nil
}

// populate adds every record of the source without notifications
func (c *Cube) populate() {
	for r := 0; r < c.source.Length(); r++ {
		c.insertQuiet(r)
	}
}

func currentCounts(providers []categories.Provider) []int {
	counts := make([]int, len(providers))
	for i, p := range providers {
		counts[i] = p.CategoryCount()
	}
	return counts
}

func (c *Cube) hold(p categories.Provider) {
	p.Acquire()
	p.Subscribe(c.watcher)
}

func (c *Cube) letGo(p categories.Provider) {
	p.Unsubscribe(c.watcher)
	p.Release()
}

type sharedFilter interface {
	Acquire()
	Release()
}

func acquire(f filters.Filter) {
	if s, ok := f.(sharedFilter); ok {
		s.Acquire()
	}
}

func release(f filters.Filter) {
	if s, ok := f.(sharedFilter); ok {
		s.Release()
	}
}

// Close detaches the cube from its source and releases providers and filters.
// The cube must not be used afterwards.
func (c *Cube) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.source.RemoveObserver(c.observer)
	for _, p := range append(c.rows.providers, c.cols.providers...) {
		c.letGo(p)
	}
	for _, f := range c.filters {
		release(f)
	}
	c.filters = nil
	c.listeners = nil
	c.trackers = nil
}

func (c *Cube) AddListener(l Listener) {
	c.listeners = append(c.listeners, l)
}

func (c *Cube) RemoveListener(l Listener) {
	c.listeners = slices.DeleteFunc(c.listeners, func(x Listener) bool { return x == l })
}

func (c *Cube) AddTracker(t ElementTracker) {
	c.trackers = append(c.trackers, t)
}

func (c *Cube) RemoveTracker(t ElementTracker) {
	c.trackers = slices.DeleteFunc(c.trackers, func(x ElementTracker) bool { return x == t })
}

func (c *Cube) notify(fn func(l Listener)) {
	for _, l := range slices.Clone(c.listeners) {
		fn(l)
	}
}

func (c *Cube) track(fn func(t ElementTracker)) {
	for _, t := range slices.Clone(c.trackers) {
		fn(t)
	}
}

func (c *Cube) axis(a Axis) *axisIndex {
	if a == Vertical {
		return c.rows
	}
	return c.cols
}

// levelOf finds a provider on the axes of the cube
func (c *Cube) levelOf(p categories.Provider) (Axis, int, bool) {
	for _, a := range []Axis{Vertical, Horizontal} {
		if i := slices.Index(c.axis(a).providers, p); i >= 0 {
			return a, i, true
		}
	}
	return 0, 0, false
}

// reset runs a structural change between AboutToReset and Reset. Category changes
// that arrive while listeners handle the reset are applied once it completes.
func (c *Cube) reset(change func()) {
	c.resetting = true
	c.notify(func(l Listener) { l.AboutToReset() })
	change()
	c.track(func(t ElementTracker) { t.Rebuilt() })
	c.notify(func(l Listener) { l.Reset() })
	c.resetting = false

	for len(c.deferred) > 0 {
		next := c.deferred[0]
		c.deferred = c.deferred[1:]
		next()
	}
}

// providerWatcher receives category changes of the providers on the axes
type providerWatcher struct {
	cube *Cube
}

func (w *providerWatcher) CategoryAdded(p categories.Provider, at int) {
	w.cube.onCategoryChange(p, at, +1)
}

func (w *providerWatcher) CategoryRemoved(p categories.Provider, at int) {
	w.cube.onCategoryChange(p, at, -1)
}

func (c *Cube) onCategoryChange(p categories.Provider, at, delta int) {
	if c.resetting {
		c.deferred = append(c.deferred, func() { c.onCategoryChange(p, at, delta) })
		return
	}
	a, level, ok := c.levelOf(p)
	if !ok {
		log.Printf("cube: category change from %s, which is not on an axis", categories.Describe(p))
		return
	}
	c.changeCategories(a, level, at, delta)
}
