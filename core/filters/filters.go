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

// Package filters provides global filters for cubes. A filter accepts or rejects a
// record independently of how the cube is split. Category and multi filters are
// also two-category providers (0 = rejected, 1 = accepted) so they can be stacked
// on a cube axis like any other categorizer.
package filters

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/google/taxinomia-cube/core/categories"
	"github.com/google/taxinomia-cube/core/expr"
	"github.com/google/taxinomia-cube/core/tables"
)

// Filter is a predicate over record indices
type Filter interface {
	Accepts(record int) bool
}

// Predicate wraps a function
type Predicate struct {
	name string
	fn   func(record int) bool
}

func NewPredicate(name string, fn func(record int) bool) *Predicate {
	return &Predicate{name: name, fn: fn}
}

func (p *Predicate) Accepts(record int) bool {
	return p.fn(record)
}

func (p *Predicate) String() string {
	return p.name
}

// ExpressionFilter accepts the records for which an expression is true. Records
// for which evaluation fails are rejected.
type ExpressionFilter struct {
	expression *expr.Expression
	bound      *expr.BoundExpression
	failures   atomic.Int64
}

// NewExpressionFilter compiles source against the columns of dt
func NewExpressionFilter(dt *tables.DataTable, source string) (*ExpressionFilter, error) {
	compiled, err := expr.Compile(source)
	if err != nil {
		return nil, err
	}
	for _, name := range compiled.Identifiers() {
		if dt.GetColumn(name) == nil {
			return nil, fmt.Errorf("%w: %q in %q", tables.ErrUnknownColumn, name, source)
		}
	}
	return &ExpressionFilter{
		expression: compiled,
		bound:      compiled.Bind(expr.TableColumns(dt)),
	}, nil
}

func (f *ExpressionFilter) Accepts(record int) bool {
	ok, err := f.bound.EvalBool(record)
	if err != nil {
		if n := f.failures.Add(1); n == 1 || n%1000 == 0 {
			log.Printf("filter %q: record %d: %v (%d failures)", f.expression.Source(), record, err, n)
		}
		return false
	}
	return ok
}

// Failures returns how many evaluations failed so far
func (f *ExpressionFilter) Failures() int64 {
	return f.failures.Load()
}

func (f *ExpressionFilter) String() string {
	return f.expression.Source()
}

// CategoryFilter accepts the records that fall into one category of a base
// provider. It follows category insertions and removals of the base, so it keeps
// designating the same category; when that category is removed it accepts nothing.
type CategoryFilter struct {
	categories.Notifier
	categories.Shared

	base     categories.Provider
	category int
	label    string
}

func NewCategoryFilter(base categories.Provider, category int) (*CategoryFilter, error) {
	if base == nil {
		return nil, fmt.Errorf("category filter: nil provider")
	}
	if category < 0 || category >= base.CategoryCount() {
		return nil, fmt.Errorf("category filter: category %d out of range [0, %d)", category, base.CategoryCount())
	}
	f := &CategoryFilter{
		base:     base,
		category: category,
		label:    base.CategoryLabel(category, categories.DisplayRole),
	}
	f.Shared = categories.NewShared(f.attach, f.detach)
	f.attach()
	return f, nil
}

// NewCategoryFilterFor designates the category of base with the given label
func NewCategoryFilterFor(base categories.Provider, label string) (*CategoryFilter, error) {
	for i := 0; i < base.CategoryCount(); i++ {
		if base.CategoryLabel(i, categories.DisplayRole) == label {
			return NewCategoryFilter(base, i)
		}
	}
	return nil, fmt.Errorf("category filter: %s has no category %q", base.Name(), label)
}

func (f *CategoryFilter) attach() {
	f.base.Acquire()
	f.base.Subscribe(f)
}

func (f *CategoryFilter) detach() {
	f.base.Unsubscribe(f)
	f.base.Release()
}

// Category returns the designated category of the base, -1 once it is gone
func (f *CategoryFilter) Category() int {
	return f.category
}

func (f *CategoryFilter) Accepts(record int) bool {
	return f.category >= 0 && f.base.CategoryOf(record) == f.category
}

func (f *CategoryFilter) Name() string {
	return fmt.Sprintf("%s == %s", f.base.Name(), f.label)
}

func (f *CategoryFilter) String() string {
	return f.Name()
}

func (f *CategoryFilter) CategoryCount() int {
	return 2
}

func (f *CategoryFilter) CategoryLabel(i int, role categories.Role) string {
	switch i {
	case 0:
		return "not " + f.label
	case 1:
		return f.label
	}
	return ""
}

func (f *CategoryFilter) CategoryOf(record int) int {
	if f.Accepts(record) {
		return 1
	}
	return 0
}

func (f *CategoryFilter) CategoryAdded(p categories.Provider, at int) {
	if f.category >= 0 && at <= f.category {
		f.category++
	}
}

func (f *CategoryFilter) CategoryRemoved(p categories.Provider, at int) {
	switch {
	case f.category < 0:
	case at == f.category:
		f.category = -1
	case at < f.category:
		f.category--
	}
}

// Mode tells how a MultiFilter combines its filters
type Mode int

const (
	All Mode = iota
	Any
)

// MultiFilter combines several filters. An All filter without filters accepts
// everything, an Any filter without filters accepts nothing.
type MultiFilter struct {
	categories.Notifier
	categories.Shared

	mode    Mode
	filters []Filter
}

func NewMultiFilter(mode Mode, filters ...Filter) *MultiFilter {
	m := &MultiFilter{mode: mode, filters: filters}
	m.Shared = categories.NewShared(m.attach, m.detach)
	m.attach()
	return m
}

func AllOf(filters ...Filter) *MultiFilter {
	return NewMultiFilter(All, filters...)
}

func AnyOf(filters ...Filter) *MultiFilter {
	return NewMultiFilter(Any, filters...)
}

type shared interface {
	Acquire()
	Release()
}

func (m *MultiFilter) attach() {
	for _, f := range m.filters {
		if s, ok := f.(shared); ok {
			s.Acquire()
		}
	}
}

func (m *MultiFilter) detach() {
	for _, f := range m.filters {
		if s, ok := f.(shared); ok {
			s.Release()
		}
	}
}

func (m *MultiFilter) Accepts(record int) bool {
	for _, f := range m.filters {
		if f.Accepts(record) == (m.mode == Any) {
			return m.mode == Any
		}
	}
	return m.mode == All
}

func (m *MultiFilter) Filters() []Filter {
	return m.filters
}

func (m *MultiFilter) Name() string {
	parts := make([]string, len(m.filters))
	for i, f := range m.filters {
		parts[i] = fmt.Sprint(f)
	}
	op := " and "
	if m.mode == Any {
		op = " or "
	}
	return "(" + strings.Join(parts, op) + ")"
}

func (m *MultiFilter) String() string {
	return m.Name()
}

func (m *MultiFilter) CategoryCount() int {
	return 2
}

func (m *MultiFilter) CategoryLabel(i int, role categories.Role) string {
	switch i {
	case 0:
		return "not " + m.Name()
	case 1:
		return m.Name()
	}
	return ""
}

func (m *MultiFilter) CategoryOf(record int) int {
	if m.Accepts(record) {
		return 1
	}
	return 0
}
