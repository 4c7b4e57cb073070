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

// Package columns holds the typed, mutable columns that back a DataTable.
// Every column can be read and written through its string form so that
// importers and category providers stay independent of the value type.
package columns

import (
	"errors"
	"fmt"
	"slices"
)

// ErrIndex is returned when a row index is outside of a column.
var ErrIndex = errors.New("index out of range")

// Kind identifies the value type stored in a column.
type Kind int

const (
	KindString Kind = iota
	KindInt64
	KindFloat64
	KindBool
)

// String returns the string representation of the column kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

type IColumnDef interface {
	Name() string // must not contain any of the following characters: & = : ,
	DisplayName() string
	// entity type of the column, primary or foreign key
	EntityType() string
}

type ColumnDef struct {
	name        string // must not contain any of the following characters: & = : ,
	displayName string
	entityType  string
}

// NewColumnDef creates a new ColumnDef with the given name and display name
func NewColumnDef(name, displayName, entityType string) *ColumnDef {
	if displayName == "" {
		displayName = name
	}
	return &ColumnDef{
		name:        name,
		displayName: displayName,
		entityType:  entityType,
	}
}

func (cd *ColumnDef) Name() string {
	return cd.name
}

func (cd *ColumnDef) DisplayName() string {
	return cd.displayName
}

func (cd *ColumnDef) EntityType() string {
	return cd.entityType
}

// IDataColumn is the string-level contract shared by all column kinds.
type IDataColumn interface {
	ColumnDef() *ColumnDef
	Kind() Kind
	Length() int
	GetString(i int) (string, error)
	SetString(i int, value string) error
	// InsertStrings parses values and inserts them before row at.
	// Nothing is inserted if any value fails to parse.
	InsertStrings(at int, values []string) error
	Remove(at, count int) error
	// ValueOrder compares two values in their string form.
	ValueOrder() func(a, b string) int
}

// valueColumn implements storage and mutation once for every value type.
type valueColumn[T any] struct {
	columnDef *ColumnDef
	data      []T
	parse     func(string) (T, error)
	format    func(T) string
}

func (c *valueColumn[T]) ColumnDef() *ColumnDef {
	return c.columnDef
}

func (c *valueColumn[T]) Length() int {
	return len(c.data)
}

func (c *valueColumn[T]) Append(v T) {
	c.data = append(c.data, v)
}

// GetValue returns the typed value at index i
func (c *valueColumn[T]) GetValue(i int) (T, error) {
	if i < 0 || i >= len(c.data) {
		var zero T
		return zero, fmt.Errorf("%w: %d (length: %d)", ErrIndex, i, len(c.data))
	}
	return c.data[i], nil
}

// GetString returns the string representation of the value at index i
func (c *valueColumn[T]) GetString(i int) (string, error) {
	v, err := c.GetValue(i)
	if err != nil {
		return "", err
	}
	return c.format(v), nil
}

func (c *valueColumn[T]) SetValue(i int, v T) error {
	if i < 0 || i >= len(c.data) {
		return fmt.Errorf("%w: %d (length: %d)", ErrIndex, i, len(c.data))
	}
	c.data[i] = v
	return nil
}

func (c *valueColumn[T]) SetString(i int, value string) error {
	v, err := c.parse(value)
	if err != nil {
		return fmt.Errorf("column %q: %w", c.columnDef.Name(), err)
	}
	return c.SetValue(i, v)
}

func (c *valueColumn[T]) AppendString(value string) error {
	v, err := c.parse(value)
	if err != nil {
		return fmt.Errorf("column %q: %w", c.columnDef.Name(), err)
	}
	c.data = append(c.data, v)
	return nil
}

func (c *valueColumn[T]) InsertStrings(at int, values []string) error {
	if at < 0 || at > len(c.data) {
		return fmt.Errorf("%w: insert at %d (length: %d)", ErrIndex, at, len(c.data))
	}
	parsed := make([]T, len(values))
	for i, s := range values {
		v, err := c.parse(s)
		if err != nil {
			return fmt.Errorf("column %q: %w", c.columnDef.Name(), err)
		}
		parsed[i] = v
	}
	c.data = slices.Insert(c.data, at, parsed...)
	return nil
}

func (c *valueColumn[T]) Remove(at, count int) error {
	if at < 0 || count < 0 || at+count > len(c.data) {
		return fmt.Errorf("%w: remove [%d,%d) (length: %d)", ErrIndex, at, at+count, len(c.data))
	}
	c.data = slices.Delete(c.data, at, at+count)
	return nil
}
