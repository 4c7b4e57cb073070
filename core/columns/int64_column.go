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

import (
	"strconv"
	"strings"
)

// Int64Column stores signed integer data.
type Int64Column struct {
	valueColumn[int64]
}

// NewInt64Column creates a new int64 column
func NewInt64Column(columnDef *ColumnDef) *Int64Column {
	return &Int64Column{valueColumn[int64]{
		columnDef: columnDef,
		data:      make([]int64, 0),
		parse:     ParseInt64,
		format:    func(v int64) string { return strconv.FormatInt(v, 10) },
	}}
}

// ParseInt64 parses a decimal integer, ignoring surrounding whitespace.
func ParseInt64(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

func (c *Int64Column) Kind() Kind {
	return KindInt64
}

func (c *Int64Column) ValueOrder() func(a, b string) int {
	return NumericOrder
}

// Sum returns the sum of all values
func (c *Int64Column) Sum() int64 {
	var sum int64
	for _, v := range c.data {
		sum += v
	}
	return sum
}
