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

package categories

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/taxinomia-cube/core/columns"
	"github.com/google/taxinomia-cube/core/tables"
)

var ErrNilTable = errors.New("nil table")

// ColumnCategorizer derives categories from the sorted distinct values of one
// table column. With a prefix length only the first runes of each value are used,
// so "Smith" and "Smythe" share the category "Sm" for a prefix of 2.
//
// The categorizer follows the table as an index observer. New values become new
// categories as soon as they appear; categories whose last row went away are
// removed once the change has been delivered to all observers of the table.
type ColumnCategorizer struct {
	Notifier
	Shared

	table  *tables.DataTable
	column string
	name   string
	prefix int
	order  func(a, b string) int

	keys    []string // category key per row
	values  []string // distinct keys in category order
	counts  map[string]int
	pending []string // keys that may have become empty
}

type Option func(*ColumnCategorizer)

// WithPrefixLength truncates values to their first n runes. n <= 0 uses whole
// values.
func WithPrefixLength(n int) Option {
	return func(c *ColumnCategorizer) {
		c.prefix = n
	}
}

// WithName overrides the provider name, which defaults to the column name
func WithName(name string) Option {
	return func(c *ColumnCategorizer) {
		c.name = name
	}
}

// WithOrder overrides the category order, which defaults to the column's value order
func WithOrder(order func(a, b string) int) Option {
	return func(c *ColumnCategorizer) {
		c.order = order
	}
}

func NewColumnCategorizer(table *tables.DataTable, column string, opts ...Option) (*ColumnCategorizer, error) {
	if table == nil {
		return nil, ErrNilTable
	}
	col := table.GetColumn(column)
	if col == nil {
		return nil, fmt.Errorf("%w: %q", tables.ErrUnknownColumn, column)
	}
	c := &ColumnCategorizer{
		table:  table,
		column: column,
		name:   column,
		order:  col.ValueOrder(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.prefix > 0 {
		c.name = fmt.Sprintf("%s[:%d]", c.name, c.prefix)
	}
	c.Shared = NewShared(c.attach, c.detach)
	c.attach()
	return c, nil
}

func (c *ColumnCategorizer) attach() {
	c.rebuild()
	c.table.AddIndexObserver(c)
}

func (c *ColumnCategorizer) detach() {
	c.table.RemoveIndexObserver(c)
	c.keys = nil
	c.values = nil
	c.counts = nil
	c.pending = nil
}

func (c *ColumnCategorizer) rebuild() {
	n := c.table.Length()
	c.keys = make([]string, n)
	c.counts = make(map[string]int)
	c.pending = nil
	for r := 0; r < n; r++ {
		k := c.keyOf(r)
		c.keys[r] = k
		c.counts[k]++
	}
	c.values = make([]string, 0, len(c.counts))
	for k := range c.counts {
		c.values = append(c.values, k)
	}
	slices.SortFunc(c.values, c.order)
}

func (c *ColumnCategorizer) keyOf(row int) string {
	v, err := c.table.GetString(row, c.column)
	if err != nil {
		return ""
	}
	if c.prefix <= 0 {
		return v
	}
	return truncate(v, c.prefix)
}

func truncate(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func (c *ColumnCategorizer) Name() string {
	return c.name
}

// Column returns the name of the categorized column
func (c *ColumnCategorizer) Column() string {
	return c.column
}

// PrefixLength returns the number of runes kept from each value, 0 when whole
// values are used
func (c *ColumnCategorizer) PrefixLength() int {
	return max(c.prefix, 0)
}

func (c *ColumnCategorizer) CategoryCount() int {
	return len(c.values)
}

func (c *ColumnCategorizer) CategoryLabel(i int, role Role) string {
	if i < 0 || i >= len(c.values) {
		return ""
	}
	v := c.values[i]
	switch role {
	case ToolTipRole:
		return fmt.Sprintf("%s: %s (%d rows)", c.name, v, c.counts[v])
	default:
		return v
	}
}

func (c *ColumnCategorizer) CategoryOf(record int) int {
	if record < 0 || record >= len(c.keys) {
		return -1
	}
	return c.indexOf(c.keys[record])
}

func (c *ColumnCategorizer) indexOf(key string) int {
	i, found := slices.BinarySearchFunc(c.values, key, c.order)
	if !found {
		return -1
	}
	return i
}

// Values returns the category keys in category order
func (c *ColumnCategorizer) Values() []string {
	return slices.Clone(c.values)
}

func (c *ColumnCategorizer) addKey(k string) {
	c.counts[k]++
	if c.counts[k] > 1 {
		return
	}
	i, _ := slices.BinarySearchFunc(c.values, k, c.order)
	c.values = slices.Insert(c.values, i, k)
	c.NotifyAdded(c, i)
}

func (c *ColumnCategorizer) prune(keys []string) {
	for _, k := range keys {
		if n, ok := c.counts[k]; !ok || n > 0 {
			continue
		}
		delete(c.counts, k)
		i := c.indexOf(k)
		c.values = slices.Delete(c.values, i, i+1)
		c.NotifyRemoved(c, i)
	}
}

func (c *ColumnCategorizer) RowsInserted(first, count int) {
	added := make([]string, count)
	for i := range added {
		added[i] = c.keyOf(first + i)
	}
	c.keys = slices.Insert(c.keys, first, added...)
	for _, k := range added {
		c.addKey(k)
	}
}

func (c *ColumnCategorizer) RowsAboutToBeRemoved(first, count int) {}

func (c *ColumnCategorizer) RowsRemoved(first, count int) {
	removed := slices.Clone(c.keys[first : first+count])
	c.keys = slices.Delete(c.keys, first, first+count)
	for _, k := range removed {
		c.counts[k]--
	}
	c.prune(removed)
}

func (c *ColumnCategorizer) DataChanged(first, last int) {
	for r := first; r <= last; r++ {
		old, k := c.keys[r], c.keyOf(r)
		if old == k {
			continue
		}
		c.keys[r] = k
		c.counts[old]--
		c.pending = append(c.pending, old)
		c.addKey(k)
	}
}

func (c *ColumnCategorizer) DataSettled(first, last int) {
	pending := c.pending
	c.pending = nil
	c.prune(pending)
}

// Columns lists the names of columns suitable for categorizing, in table order
func Columns(table *tables.DataTable) []string {
	var names []string
	for _, name := range table.GetColumnNames() {
		if table.GetColumn(name).Kind() != columns.KindFloat64 {
			names = append(names, name)
		}
	}
	return names
}
