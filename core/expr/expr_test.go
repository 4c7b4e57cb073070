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
	"fmt"
	"slices"
	"testing"

	"github.com/google/taxinomia-cube/core/columns"
	"github.com/google/taxinomia-cube/core/tables"
)

var testColumns = map[string][]any{
	"age":       {40.0, 17.0, 65.0},
	"last_name": {"Smith", "Jones", "Brown"},
	"city":      {"Paris", "Rome", "Oslo"},
}

func testGetter(column string, row int) (Value, error) {
	col, ok := testColumns[column]
	if !ok {
		return NilValue(), fmt.Errorf("column not found: %s", column)
	}
	switch v := col[row%len(col)].(type) {
	case float64:
		return NewNumber(v), nil
	case string:
		return NewString(v), nil
	}
	return NilValue(), fmt.Errorf("unknown type")
}

func evalString(t *testing.T, source string, row int) string {
	t.Helper()
	compiled, err := Compile(source)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	val, err := compiled.Bind(testGetter).Eval(row)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	return val.AsString()
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		expr     string
		expected string
	}{
		{"1 + 2", "3"},
		{"10 - 3 - 2", "5"},
		{"4 * 5", "20"},
		{"20 / 8", "2.5"},
		{"7 % 3", "1"},
		{"(1 + 2) * 3", "9"},
		{"1 + 2 * 3", "7"},
		{"-5", "-5"},
		{"--5", "5"},
		{"age + 1", "41"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			if got := evalString(t, tt.expr, 0); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestFilters(t *testing.T) {
	tests := []struct {
		expr     string
		expected []bool // per row
	}{
		{"age == 40", []bool{true, false, false}},
		{"age >= 18 and age < 65", []bool{true, false, false}},
		{`last_name == "Jones" or city == "Oslo"`, []bool{false, true, true}},
		{`not (city == "Paris")`, []bool{false, true, true}},
		{`city in ("Rome", "Oslo")`, []bool{false, true, true}},
		{`lower(last_name) == "smith"`, []bool{true, false, false}},
		{`startswith(city, "R") or contains(last_name, "row")`, []bool{false, true, true}},
		{`len(city) == 4`, []bool{false, true, true}},
		{`age == "40"`, []bool{true, false, false}},
		{`true and not false`, []bool{true, true, true}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			compiled, err := Compile(tt.expr)
			if err != nil {
				t.Fatalf("compile error: %v", err)
			}
			bound := compiled.Bind(testGetter)
			for row, want := range tt.expected {
				got, err := bound.EvalBool(row)
				if err != nil {
					t.Fatalf("row %d: eval error: %v", row, err)
				}
				if got != want {
					t.Errorf("row %d: expected %v, got %v", row, want, got)
				}
			}
		})
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		expr     string
		expected string
	}{
		{`"hello" + " " + "world"`, "hello world"},
		{`upper('abc')`, "ABC"},
		{`strip("  x  ")`, "x"},
		{`str(12) + "a"`, "12a"},
		{`"café"`, "café"},
		{`len("héllo")`, "5"},
		{`min(3, 1, 2)`, "1"},
		{`max("a", "c", "b")`, "c"},
		{`num("2.5") * 2`, "5"},
		{`abs(-3)`, "3"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			if got := evalString(t, tt.expr, 0); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	for _, source := range []string{
		"",
		"age = 40",
		"age ==",
		"(age",
		`"open`,
		"age 40",
		"unknown(1)",
		"city in Paris",
		"a ! b",
	} {
		t.Run(source, func(t *testing.T) {
			if _, err := Compile(source); err == nil {
				t.Errorf("Compile(%q) succeeded", source)
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	for _, source := range []string{
		"missing == 1",
		"1 / 0",
		`"a" - 1`,
		`-"abc"`,
		`"a" < 1`,
		`lower(1, 2)`,
	} {
		t.Run(source, func(t *testing.T) {
			compiled, err := Compile(source)
			if err != nil {
				t.Fatalf("compile error: %v", err)
			}
			if _, err := compiled.Bind(testGetter).Eval(0); err == nil {
				t.Errorf("Eval(%q) succeeded", source)
			}
		})
	}
}

func TestIdentifiersAndString(t *testing.T) {
	compiled, err := Compile(`age > 3 and (city in ("Rome", last_name) or age < 2)`)
	if err != nil {
		t.Fatal(err)
	}
	if got := compiled.Identifiers(); !slices.Equal(got, []string{"age", "city", "last_name"}) {
		t.Errorf("Identifiers() = %v", got)
	}
	want := `((age > 3) and ((city in ("Rome", last_name)) or (age < 2)))`
	if got := compiled.String(); got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
}

func TestTableColumns(t *testing.T) {
	ages := columns.NewInt64Column(columns.NewColumnDef("age", "Age", ""))
	ages.Append(40)
	active := columns.NewBoolColumn(columns.NewColumnDef("active", "Active", ""))
	active.Append(true)
	dt := tables.NewDataTable()
	if err := dt.AddColumn(ages); err != nil {
		t.Fatal(err)
	}
	if err := dt.AddColumn(active); err != nil {
		t.Fatal(err)
	}

	compiled, err := Compile("age / 4 == 10 and active")
	if err != nil {
		t.Fatal(err)
	}
	got, err := compiled.Bind(TableColumns(dt)).EvalBool(0)
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Error("expected true")
	}
	if _, err := compiled.Bind(TableColumns(dt)).Eval(1); err == nil {
		t.Error("Eval past the last row succeeded")
	}
}

func BenchmarkEvalFilter(b *testing.B) {
	compiled, _ := Compile(`age >= 18 and lower(city) in ("paris", "rome")`)
	bound := compiled.Bind(testGetter)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = bound.Eval(i % 3)
	}
}
