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

// Float64Column stores floating point data.
type Float64Column struct {
	valueColumn[float64]
}

// NewFloat64Column creates a new float64 column
func NewFloat64Column(columnDef *ColumnDef) *Float64Column {
	return &Float64Column{valueColumn[float64]{
		columnDef: columnDef,
		data:      make([]float64, 0),
		parse:     ParseFloat64,
		format:    func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) },
	}}
}

// ParseFloat64 parses a float, ignoring surrounding whitespace.
func ParseFloat64(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func (c *Float64Column) Kind() Kind {
	return KindFloat64
}

func (c *Float64Column) ValueOrder() func(a, b string) int {
	return NumericOrder
}
