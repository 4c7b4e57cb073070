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

package query

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/google/safehtml"
)

// DefaultLimit is the number of row sections shown when the URL names none
const DefaultLimit = 200

// Query represents the parsed state of a pivot view URL
type Query struct {
	// Base path (e.g., "/cube/people")
	Path string

	Table   string   // The table being viewed
	Rows    []string // Columns split on the vertical axis, outermost first
	Columns []string // Columns split on the horizontal axis, outermost first
	Filters []string // Global filter expressions, all of which must hold
	Limit   int      // Number of row sections to display (0 = show all)
}

// NewQuery creates a Query from a URL
func NewQuery(u *url.URL) *Query {
	q := u.Query()
	state := &Query{
		Path:    u.Path,
		Table:   q.Get("table"),
		Rows:    splitList(q.Get("rows")),
		Columns: splitList(q.Get("columns")),
		Limit:   DefaultLimit,
	}

	for _, f := range q["filter"] {
		if f = strings.TrimSpace(f); f != "" && !slices.Contains(state.Filters, f) {
			state.Filters = append(state.Filters, f)
		}
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit >= 0 {
			state.Limit = limit
		}
	}

	// A column can only be split once
	state.Columns = slices.DeleteFunc(state.Columns, func(col string) bool {
		return slices.Contains(state.Rows, col)
	})
	return state
}

// splitList splits a comma separated parameter, dropping empty and repeated names
func splitList(s string) []string {
	result := []string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" && !slices.Contains(result, part) {
			result = append(result, part)
		}
	}
	return result
}

// Clone creates a deep copy of the Query
func (s *Query) Clone() *Query {
	return &Query{
		Path:    s.Path,
		Table:   s.Table,
		Rows:    slices.Clone(s.Rows),
		Columns: slices.Clone(s.Columns),
		Filters: slices.Clone(s.Filters),
		Limit:   s.Limit,
	}
}

// IsRow checks if a column is split on the vertical axis
func (s *Query) IsRow(column string) bool {
	return slices.Contains(s.Rows, column)
}

// IsColumn checks if a column is split on the horizontal axis
func (s *Query) IsColumn(column string) bool {
	return slices.Contains(s.Columns, column)
}

// without removes column from both axes
func (s *Query) without(column string) {
	s.Rows = slices.DeleteFunc(s.Rows, func(c string) bool { return c == column })
	s.Columns = slices.DeleteFunc(s.Columns, func(c string) bool { return c == column })
}

// WithRow returns a URL with the column split innermost on the vertical axis.
// A column already split on the horizontal axis moves over.
func (s *Query) WithRow(column string) safehtml.URL {
	if s.IsRow(column) {
		return s.ToSafeURL()
	}
	newState := s.Clone()
	newState.without(column)
	newState.Rows = append(newState.Rows, column)
	return newState.ToSafeURL()
}

// WithColumn returns a URL with the column split innermost on the horizontal axis
func (s *Query) WithColumn(column string) safehtml.URL {
	if s.IsColumn(column) {
		return s.ToSafeURL()
	}
	newState := s.Clone()
	newState.without(column)
	newState.Columns = append(newState.Columns, column)
	return newState.ToSafeURL()
}

// WithoutSplit returns a URL with the column collapsed from whichever axis holds it
func (s *Query) WithoutSplit(column string) safehtml.URL {
	newState := s.Clone()
	newState.without(column)
	return newState.ToSafeURL()
}

// WithAxesSwapped returns a URL with the row and column splits exchanged
func (s *Query) WithAxesSwapped() safehtml.URL {
	newState := s.Clone()
	newState.Rows, newState.Columns = newState.Columns, newState.Rows
	return newState.ToSafeURL()
}

// WithFilter returns a URL with the filter expression added (if not already present)
func (s *Query) WithFilter(expression string) safehtml.URL {
	expression = strings.TrimSpace(expression)
	if expression == "" || slices.Contains(s.Filters, expression) {
		return s.ToSafeURL()
	}
	newState := s.Clone()
	newState.Filters = append(newState.Filters, expression)
	return newState.ToSafeURL()
}

// WithoutFilter returns a URL with the filter expression removed
func (s *Query) WithoutFilter(expression string) safehtml.URL {
	newState := s.Clone()
	newState.Filters = slices.DeleteFunc(newState.Filters, func(f string) bool { return f == expression })
	return newState.ToSafeURL()
}

// WithoutFilters returns a URL with all filter expressions removed
func (s *Query) WithoutFilters() safehtml.URL {
	newState := s.Clone()
	newState.Filters = nil
	return newState.ToSafeURL()
}

// WithCategoryFilter returns a URL that keeps only the records whose column has
// the given value and collapses the column, as it would show a single category.
func (s *Query) WithCategoryFilter(column, value string) safehtml.URL {
	newState := s.Clone()
	newState.without(column)
	if f := EqualsExpression(column, value); !slices.Contains(newState.Filters, f) {
		newState.Filters = append(newState.Filters, f)
	}
	return newState.ToSafeURL()
}

// WithLimit returns a URL with a different row limit
func (s *Query) WithLimit(limit int) safehtml.URL {
	newState := s.Clone()
	newState.Limit = limit
	return newState.ToSafeURL()
}

// WithAction returns a URL for an action on the current view, below the view's
// path. Action handlers read the view state back with ViewQuery.
func (s *Query) WithAction(action string, params url.Values) safehtml.URL {
	u, err := url.Parse(s.ToURL())
	if err != nil {
		return safehtml.URLSanitized("")
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + action
	q := u.Query()
	for k, vs := range params {
		q[k] = vs
	}
	u.RawQuery = q.Encode()
	return safehtml.URLSanitized(u.String())
}

// ViewQuery parses an action URL and returns the state of the view it belongs to
func ViewQuery(u *url.URL) *Query {
	q := NewQuery(u)
	if i := strings.LastIndex(q.Path, "/"); i > 0 {
		q.Path = q.Path[:i]
	}
	return q
}

// EqualsExpression builds a filter expression comparing column to a string value
func EqualsExpression(column, value string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return column + ` == "` + r.Replace(value) + `"`
}

// ToURL converts the Query back to a URL string
func (s *Query) ToURL() string {
	u := &url.URL{
		Path: s.Path,
	}

	q := u.Query()
	if s.Table != "" {
		q.Set("table", s.Table)
	}
	if len(s.Rows) > 0 {
		q.Set("rows", strings.Join(s.Rows, ","))
	}
	if len(s.Columns) > 0 {
		q.Set("columns", strings.Join(s.Columns, ","))
	}
	for _, f := range s.Filters {
		q.Add("filter", f)
	}
	if s.Limit != DefaultLimit {
		q.Set("limit", strconv.Itoa(s.Limit))
	}

	u.RawQuery = q.Encode()
	return u.String()
}

// ToSafeURL converts the Query to a safehtml.URL
func (s *Query) ToSafeURL() safehtml.URL {
	// URLSanitized sanitizes the input string and returns a URL
	return safehtml.URLSanitized(s.ToURL())
}
