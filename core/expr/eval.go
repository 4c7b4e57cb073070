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
	"math"
	"strings"
	"unicode/utf8"

	"github.com/google/taxinomia-cube/core/columns"
	"github.com/google/taxinomia-cube/core/tables"
)

// ColumnGetter returns the value of a column for a row
type ColumnGetter func(column string, row int) (Value, error)

// TableColumns reads column values from a table, typed by column kind
func TableColumns(dt *tables.DataTable) ColumnGetter {
	return func(column string, row int) (Value, error) {
		col := dt.GetColumn(column)
		if col == nil {
			return NilValue(), fmt.Errorf("%w: %q", tables.ErrUnknownColumn, column)
		}
		s, err := col.GetString(row)
		if err != nil {
			return NilValue(), err
		}
		switch col.Kind() {
		case columns.KindInt64, columns.KindFloat64:
			n, err := columns.ParseFloat64(s)
			if err != nil {
				return NilValue(), err
			}
			return NewNumber(n), nil
		case columns.KindBool:
			b, err := columns.ParseBool(s)
			if err != nil {
				return NilValue(), err
			}
			return NewBool(b), nil
		}
		return NewString(s), nil
	}
}

type function struct {
	minArgs, maxArgs int
	call             func(args []Value) (Value, error)
}

var functions = map[string]function{
	"lower": {1, 1, func(a []Value) (Value, error) { return NewString(strings.ToLower(a[0].AsString())), nil }},
	"upper": {1, 1, func(a []Value) (Value, error) { return NewString(strings.ToUpper(a[0].AsString())), nil }},
	"strip": {1, 1, func(a []Value) (Value, error) { return NewString(strings.TrimSpace(a[0].AsString())), nil }},
	"len": {1, 1, func(a []Value) (Value, error) {
		return NewNumber(float64(utf8.RuneCountInString(a[0].AsString()))), nil
	}},
	"str": {1, 1, func(a []Value) (Value, error) { return NewString(a[0].AsString()), nil }},
	"num": {1, 1, func(a []Value) (Value, error) {
		n, ok := a[0].numeric()
		if !ok {
			return NilValue(), fmt.Errorf("num(): cannot convert %q", a[0].AsString())
		}
		return NewNumber(n), nil
	}},
	"abs": {1, 1, func(a []Value) (Value, error) { return NewNumber(math.Abs(a[0].AsNumber())), nil }},
	"contains": {2, 2, func(a []Value) (Value, error) {
		return NewBool(strings.Contains(a[0].AsString(), a[1].AsString())), nil
	}},
	"startswith": {2, 2, func(a []Value) (Value, error) {
		return NewBool(strings.HasPrefix(a[0].AsString(), a[1].AsString())), nil
	}},
	"endswith": {2, 2, func(a []Value) (Value, error) {
		return NewBool(strings.HasSuffix(a[0].AsString(), a[1].AsString())), nil
	}},
	"min": {1, -1, func(a []Value) (Value, error) { return extreme(a, -1) }},
	"max": {1, -1, func(a []Value) (Value, error) { return extreme(a, 1) }},
}

func extreme(args []Value, sign int) (Value, error) {
	best := args[0]
	for _, v := range args[1:] {
		c, err := compare(v, best)
		if err != nil {
			return NilValue(), err
		}
		if c*sign > 0 {
			best = v
		}
	}
	return best, nil
}

// Evaluator evaluates a tree against rows
type Evaluator struct {
	ast       Node
	getColumn ColumnGetter
}

func NewEvaluator(ast Node, getColumn ColumnGetter) *Evaluator {
	return &Evaluator{ast: ast, getColumn: getColumn}
}

func (e *Evaluator) Eval(row int) (Value, error) {
	return e.eval(e.ast, row)
}

func (e *Evaluator) eval(node Node, row int) (Value, error) {
	switch n := node.(type) {
	case *NumberLit:
		return NewNumber(n.Value), nil
	case *StringLit:
		return NewString(n.Value), nil
	case *BoolLit:
		return NewBool(n.Value), nil
	case *Ident:
		return e.getColumn(n.Name, row)
	case *UnaryOp:
		v, err := e.eval(n.Expr, row)
		if err != nil {
			return NilValue(), err
		}
		if n.Op == TokenNot {
			return NewBool(!v.AsBool()), nil
		}
		if _, ok := v.numeric(); !ok {
			return NilValue(), fmt.Errorf("cannot negate %s", v.TypeName())
		}
		return NewNumber(-v.AsNumber()), nil
	case *BinaryOp:
		return e.evalBinary(n, row)
	case *InExpr:
		v, err := e.eval(n.Expr, row)
		if err != nil {
			return NilValue(), err
		}
		for _, item := range n.List {
			iv, err := e.eval(item, row)
			if err != nil {
				return NilValue(), err
			}
			if equal(v, iv) {
				return NewBool(true), nil
			}
		}
		return NewBool(false), nil
	case *CallExpr:
		fn := functions[n.Func]
		if len(n.Args) < fn.minArgs || (fn.maxArgs >= 0 && len(n.Args) > fn.maxArgs) {
			return NilValue(), fmt.Errorf("%s(): wrong number of arguments: %d", n.Func, len(n.Args))
		}
		args := make([]Value, len(n.Args))
		for i, a := range n.Args {
			v, err := e.eval(a, row)
			if err != nil {
				return NilValue(), err
			}
			args[i] = v
		}
		return fn.call(args)
	}
	return NilValue(), fmt.Errorf("unsupported node %T", node)
}

func (e *Evaluator) evalBinary(n *BinaryOp, row int) (Value, error) {
	left, err := e.eval(n.Left, row)
	if err != nil {
		return NilValue(), err
	}
	switch n.Op {
	case TokenAnd:
		if !left.AsBool() {
			return NewBool(false), nil
		}
		right, err := e.eval(n.Right, row)
		if err != nil {
			return NilValue(), err
		}
		return NewBool(right.AsBool()), nil
	case TokenOr:
		if left.AsBool() {
			return NewBool(true), nil
		}
		right, err := e.eval(n.Right, row)
		if err != nil {
			return NilValue(), err
		}
		return NewBool(right.AsBool()), nil
	}

	right, err := e.eval(n.Right, row)
	if err != nil {
		return NilValue(), err
	}
	switch n.Op {
	case TokenEQ:
		return NewBool(equal(left, right)), nil
	case TokenNE:
		return NewBool(!equal(left, right)), nil
	case TokenLT, TokenGT, TokenLE, TokenGE:
		c, err := compare(left, right)
		if err != nil {
			return NilValue(), err
		}
		switch n.Op {
		case TokenLT:
			return NewBool(c < 0), nil
		case TokenGT:
			return NewBool(c > 0), nil
		case TokenLE:
			return NewBool(c <= 0), nil
		default:
			return NewBool(c >= 0), nil
		}
	case TokenPlus:
		if left.IsString() && right.IsString() {
			return NewString(left.str + right.str), nil
		}
	}
	return arithmetic(n.Op, left, right)
}

func arithmetic(op TokenType, left, right Value) (Value, error) {
	if !left.IsNumber() || !right.IsNumber() {
		return NilValue(), fmt.Errorf("unsupported operand types for %s: %s and %s", op, left.TypeName(), right.TypeName())
	}
	a, b := left.num, right.num
	switch op {
	case TokenPlus:
		return NewNumber(a + b), nil
	case TokenMinus:
		return NewNumber(a - b), nil
	case TokenStar:
		return NewNumber(a * b), nil
	case TokenSlash:
		if b == 0 {
			return NilValue(), fmt.Errorf("division by zero")
		}
		return NewNumber(a / b), nil
	case TokenPercent:
		if b == 0 {
			return NilValue(), fmt.Errorf("modulo by zero")
		}
		return NewNumber(math.Mod(a, b)), nil
	}
	return NilValue(), fmt.Errorf("unsupported operator %s", op)
}

// equal compares numerically when both sides are numeric, as strings otherwise
func equal(a, b Value) bool {
	if a.IsBool() || b.IsBool() {
		return a.kind == b.kind && a.b == b.b
	}
	if a.IsNumber() || b.IsNumber() {
		x, okA := a.numeric()
		y, okB := b.numeric()
		return okA && okB && x == y
	}
	return a.AsString() == b.AsString()
}

func compare(a, b Value) (int, error) {
	if a.IsNumber() || b.IsNumber() {
		x, okA := a.numeric()
		y, okB := b.numeric()
		if !okA || !okB {
			return 0, fmt.Errorf("cannot compare %s with %s", a.TypeName(), b.TypeName())
		}
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		}
		return 0, nil
	}
	if a.IsString() && b.IsString() {
		return strings.Compare(a.str, b.str), nil
	}
	return 0, fmt.Errorf("cannot compare %s with %s", a.TypeName(), b.TypeName())
}
