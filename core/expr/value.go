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

package expr

import (
	"strconv"
	"strings"
)

type valueKind int

const (
	kindNil valueKind = iota
	kindNumber
	kindString
	kindBool
)

// Value is the result of evaluating an expression
type Value struct {
	kind valueKind
	num  float64
	str  string
	b    bool
}

func NewNumber(n float64) Value { return Value{kind: kindNumber, num: n} }
func NewString(s string) Value  { return Value{kind: kindString, str: s} }
func NewBool(b bool) Value      { return Value{kind: kindBool, b: b} }
func NilValue() Value           { return Value{} }

func (v Value) IsNumber() bool { return v.kind == kindNumber }
func (v Value) IsString() bool { return v.kind == kindString }
func (v Value) IsBool() bool   { return v.kind == kindBool }
func (v Value) IsNil() bool    { return v.kind == kindNil }

// AsNumber converts to a number; strings that do not parse give 0
func (v Value) AsNumber() float64 {
	switch v.kind {
	case kindNumber:
		return v.num
	case kindBool:
		if v.b {
			return 1
		}
		return 0
	case kindString:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

func (v Value) AsString() string {
	switch v.kind {
	case kindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case kindString:
		return v.str
	case kindBool:
		if v.b {
			return "True"
		}
		return "False"
	}
	return ""
}

// AsBool returns the truth value: non-zero numbers, non-empty strings and true
func (v Value) AsBool() bool {
	switch v.kind {
	case kindNumber:
		return v.num != 0
	case kindString:
		return v.str != ""
	case kindBool:
		return v.b
	}
	return false
}

func (v Value) TypeName() string {
	switch v.kind {
	case kindNumber:
		return "number"
	case kindString:
		return "string"
	case kindBool:
		return "bool"
	}
	return "nil"
}

// numeric reports whether v is a number or a string holding one
func (v Value) numeric() (float64, bool) {
	switch v.kind {
	case kindNumber:
		return v.num, true
	case kindString:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		return n, err == nil
	}
	return 0, false
}
