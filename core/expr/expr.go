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

/*
Package expr provides a small expression language for row filters. It supports:
  - Column references by name (age, last_name)
  - Number, string ("x" or 'x') and boolean (true, false) literals
  - Arithmetic: +, -, *, /, % and unary minus; + also concatenates strings
  - Comparison: ==, !=, <, >, <=, >= and membership: city in ("Paris", "Rome")
  - Logic: and, or, not
  - Functions: lower, upper, strip, len, str, num, abs, contains, startswith,
    endswith, min, max
*/
package expr

import "fmt"

// Expression is a parsed expression
type Expression struct {
	source string
	ast    Node
}

// Compile parses an expression
func Compile(source string) (*Expression, error) {
	if source == "" {
		return nil, fmt.Errorf("empty expression")
	}
	ast, err := NewParser(source).Parse()
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return &Expression{source: source, ast: ast}, nil
}

// Bind returns the expression bound to a source of column values
func (e *Expression) Bind(getColumn ColumnGetter) *BoundExpression {
	return &BoundExpression{expr: e, evaluator: NewEvaluator(e.ast, getColumn)}
}

func (e *Expression) Source() string {
	return e.source
}

// Identifiers returns the referenced column names
func (e *Expression) Identifiers() []string {
	return Identifiers(e.ast)
}

func (e *Expression) String() string {
	return e.ast.String()
}

type BoundExpression struct {
	expr      *Expression
	evaluator *Evaluator
}

func (b *BoundExpression) Expression() *Expression {
	return b.expr
}

func (b *BoundExpression) Eval(row int) (Value, error) {
	return b.evaluator.Eval(row)
}

func (b *BoundExpression) EvalString(row int) (string, error) {
	v, err := b.evaluator.Eval(row)
	if err != nil {
		return "", err
	}
	return v.AsString(), nil
}

func (b *BoundExpression) EvalNumber(row int) (float64, error) {
	v, err := b.evaluator.Eval(row)
	if err != nil {
		return 0, err
	}
	if !v.IsNumber() {
		return 0, fmt.Errorf("expression result is not a number")
	}
	return v.AsNumber(), nil
}

func (b *BoundExpression) EvalBool(row int) (bool, error) {
	v, err := b.evaluator.Eval(row)
	if err != nil {
		return false, err
	}
	return v.AsBool(), nil
}
