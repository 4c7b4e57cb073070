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
	"math"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CollatedOrder returns a string order using the root collation. Strings the
// collator considers equal are ordered bytewise, so distinct values never compare
// equal. The returned function is not safe for concurrent use.
func CollatedOrder() func(a, b string) int {
	return CollatedOrderFor(language.Und)
}

// CollatedOrderFor is CollatedOrder for a specific language.
func CollatedOrderFor(tag language.Tag) func(a, b string) int {
	c := collate.New(tag)
	return func(a, b string) int {
		if r := c.CompareString(a, b); r != 0 {
			return r
		}
		return strings.Compare(a, b)
	}
}

// NumericOrder compares two numbers in string form. Values that do not parse sort
// after all numbers, among themselves bytewise.
func NumericOrder(a, b string) int {
	fa, errA := ParseFloat64(a)
	fb, errB := ParseFloat64(b)
	if errA != nil || errB != nil {
		if errA != nil && errB != nil {
			return strings.Compare(a, b)
		}
		return compareErrors(errA, errB)
	}
	if r := compareFloat64s(fa, fb); r != 0 {
		return r
	}
	// "1" and "1.0" are distinct values
	return strings.Compare(a, b)
}

// BoolOrder orders false before true.
func BoolOrder(a, b string) int {
	ba, errA := ParseBool(a)
	bb, errB := ParseBool(b)
	if errA != nil || errB != nil {
		if errA != nil && errB != nil {
			return strings.Compare(a, b)
		}
		return compareErrors(errA, errB)
	}
	if r := compareBools(ba, bb); r != 0 {
		return r
	}
	return strings.Compare(a, b)
}

// CompareAtIndex compares the values at rows i and j of col.
func CompareAtIndex(col IDataColumn, i, j int) int {
	switch c := col.(type) {
	case *Int64Column:
		vi, errI := c.GetValue(i)
		vj, errJ := c.GetValue(j)
		if errI != nil || errJ != nil {
			return compareErrors(errI, errJ)
		}
		if vi < vj {
			return -1
		}
		if vi > vj {
			return 1
		}
		return 0
	case *Float64Column:
		vi, errI := c.GetValue(i)
		vj, errJ := c.GetValue(j)
		if errI != nil || errJ != nil {
			return compareErrors(errI, errJ)
		}
		return compareFloat64s(vi, vj)
	case *BoolColumn:
		vi, errI := c.GetValue(i)
		vj, errJ := c.GetValue(j)
		if errI != nil || errJ != nil {
			return compareErrors(errI, errJ)
		}
		return compareBools(vi, vj)
	default:
		si, errI := col.GetString(i)
		sj, errJ := col.GetString(j)
		if errI != nil || errJ != nil {
			return compareErrors(errI, errJ)
		}
		return strings.Compare(si, sj)
	}
}

// compareBools compares two bool values (false < true)
func compareBools(a, b bool) int {
	if a == b {
		return 0
	}
	if !a && b {
		return -1
	}
	return 1
}

// compareFloat64s compares two float64 values with NaN handling.
// NaN values are considered greater than all other values (sort to end).
func compareFloat64s(a, b float64) int {
	aNaN := math.IsNaN(a)
	bNaN := math.IsNaN(b)

	if aNaN && bNaN {
		return 0
	}
	if aNaN {
		return 1
	}
	if bNaN {
		return -1
	}

	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// compareErrors handles error cases in comparison.
// Errors sort to the end (after valid values).
func compareErrors(errI, errJ error) int {
	if errI != nil && errJ != nil {
		return 0
	}
	if errI != nil {
		return 1
	}
	return -1
}
