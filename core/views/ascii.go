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

package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/taxinomia-cube/core/cube"
)

// ToAscii renders the counts of a cube as a text table. Row headers come first,
// one column per vertical level, followed by one column per horizontal leaf
// section and a total column. A cube without horizontal levels only shows totals.
func ToAscii(c *cube.Cube) string {
	rowLevels := c.HeaderCount(cube.Vertical)
	colLevels := c.HeaderCount(cube.Horizontal)
	rows := c.RowCount()
	leaves := 0
	if colLevels > 0 {
		leaves = c.ColumnCount()
	}
	headerCols := max(rowLevels, 1)
	width := headerCols + leaves + 1

	// grid[line] holds the text of every column; numeric columns are right aligned
	var grid [][]string
	newLine := func() []string {
		line := make([]string, width)
		grid = append(grid, line)
		return line
	}

	for level := 0; level < max(colLevels, 1); level++ {
		line := newLine()
		if level < colLevels {
			for _, h := range c.Headers(cube.Horizontal, level) {
				line[headerCols+h.Section] = h.Label
			}
		}
		if level == max(colLevels, 1)-1 {
			for i, p := range c.Providers(cube.Vertical) {
				line[i] = p.Name()
			}
			line[width-1] = "Total"
		}
	}
	headerLines := len(grid)

	rowHeaders := make([]map[int]string, rowLevels)
	for level := range rowHeaders {
		rowHeaders[level] = make(map[int]string)
		for _, h := range c.Headers(cube.Vertical, level) {
			rowHeaders[level][h.Section] = h.Label
		}
	}
	for r := 0; r < rows; r++ {
		line := newLine()
		for level := range rowHeaders {
			line[level] = rowHeaders[level][r]
		}
		if rowLevels == 0 {
			line[0] = "All"
		}
		for col := 0; col < leaves; col++ {
			if n := c.ElementCount(r, col); n > 0 {
				line[headerCols+col] = strconv.Itoa(n)
			}
		}
		line[width-1] = strconv.Itoa(c.SectionElementCount(cube.Vertical, r))
	}

	totals := newLine()
	totals[0] = "Total"
	for col := 0; col < leaves; col++ {
		totals[headerCols+col] = strconv.Itoa(c.SectionElementCount(cube.Horizontal, col))
	}
	totals[width-1] = strconv.Itoa(c.TotalElements())

	widths := make([]int, width)
	for _, line := range grid {
		for i, s := range line {
			widths[i] = max(widths[i], len(s), 1)
		}
	}

	var sb strings.Builder
	separator := func() {
		sb.WriteString("|")
		for i, w := range widths {
			if i > 0 {
				sb.WriteString("+")
			}
			sb.WriteString(strings.Repeat("-", w+2))
		}
		sb.WriteString("|\n")
	}
	for n, line := range grid {
		if n == headerLines || n == len(grid)-1 {
			separator()
		}
		for i, s := range line {
			// Header lines and row header columns are labels
			if n < headerLines || i < headerCols {
				sb.WriteString(fmt.Sprintf("| %-*s ", widths[i], s))
			} else {
				sb.WriteString(fmt.Sprintf("| %*s ", widths[i], s))
			}
		}
		sb.WriteString("|\n")
	}
	return sb.String()
}
