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
	"fmt"
	"strings"
)

// BoolColumn stores boolean values.
type BoolColumn struct {
	valueColumn[bool]
}

// NewBoolColumn creates a new bool column.
func NewBoolColumn(columnDef *ColumnDef) *BoolColumn {
	return &BoolColumn{valueColumn[bool]{
		columnDef: columnDef,
		data:      make([]bool, 0),
		parse:     ParseBool,
		format:    formatBool,
	}}
}

// ParseBool parses a string to a boolean value.
// Accepts: "true", "false", "1", "0", "yes", "no", "t", "f", "y", "n" (case-insensitive).
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "t", "y":
		return true, nil
	case "false", "0", "no", "f", "n", "":
		return false, nil
	default:
		return false, fmt.Errorf("cannot parse %q as boolean", s)
	}
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func (c *BoolColumn) Kind() Kind {
	return KindBool
}

func (c *BoolColumn) ValueOrder() func(a, b string) int {
	return BoolOrder
}

// CountTrue returns the number of true values in the column.
func (c *BoolColumn) CountTrue() int {
	count := 0
	for _, v := range c.data {
		if v {
			count++
		}
	}
	return count
}
