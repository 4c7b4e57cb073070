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

package columns

// StringColumn stores string values as they were imported.
type StringColumn struct {
	valueColumn[string]
}

// NewStringColumn creates a new, empty string column
func NewStringColumn(columnDef *ColumnDef) *StringColumn {
	return &StringColumn{valueColumn[string]{
		columnDef: columnDef,
		data:      make([]string, 0),
		parse:     func(s string) (string, error) { return s, nil },
		format:    func(s string) string { return s },
	}}
}

func (c *StringColumn) Kind() Kind {
	return KindString
}

// ValueOrder orders strings with the default collator, so that labels sort the way
// a reader expects ("apple" < "Banana" < "cherry").
func (c *StringColumn) ValueOrder() func(a, b string) int {
	return CollatedOrder()
}

// Filter returns indices where the predicate returns true
func (c *StringColumn) Filter(predicate func(string) bool) []int {
	indices := make([]int, 0)
	for i, v := range c.data {
		if predicate(v) {
			indices = append(indices, i)
		}
	}
	return indices
}
