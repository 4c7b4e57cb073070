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
	"slices"
	"strconv"
	"strings"
)

// Node is a node of the expression syntax tree
type Node interface {
	String() string
}

type NumberLit struct {
	Value float64
}

type StringLit struct {
	Value string
}

type BoolLit struct {
	Value bool
}

// Ident refers to a column
type Ident struct {
	Name string
}

type BinaryOp struct {
	Op    TokenType
	Left  Node
	Right Node
}

type UnaryOp struct {
	Op   TokenType
	Expr Node
}

type CallExpr struct {
	Func string
	Args []Node
}

// InExpr tests membership in a literal list: x in ("a", "b")
type InExpr struct {
	Expr Node
	List []Node
}

func (n *NumberLit) String() string { return strconv.FormatFloat(n.Value, 'g', -1, 64) }
func (n *StringLit) String() string { return strconv.Quote(n.Value) }
func (n *BoolLit) String() string   { return strconv.FormatBool(n.Value) }
func (n *Ident) String() string     { return n.Name }

func (n *BinaryOp) String() string {
	return "(" + n.Left.String() + " " + n.Op.String() + " " + n.Right.String() + ")"
}

func (n *UnaryOp) String() string {
	if n.Op == TokenNot {
		return "(not " + n.Expr.String() + ")"
	}
	return "(" + n.Op.String() + n.Expr.String() + ")"
}

func (n *CallExpr) String() string {
	return n.Func + "(" + joinNodes(n.Args) + ")"
}

func (n *InExpr) String() string {
	return "(" + n.Expr.String() + " in (" + joinNodes(n.List) + "))"
}

func joinNodes(nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, ", ")
}

// Identifiers returns the distinct column names referenced by a tree, sorted
func Identifiers(node Node) []string {
	var names []string
	var walk func(Node)
	walk = func(n Node) {
		switch n := n.(type) {
		case *Ident:
			names = append(names, n.Name)
		case *BinaryOp:
			walk(n.Left)
			walk(n.Right)
		case *UnaryOp:
			walk(n.Expr)
		case *CallExpr:
			for _, a := range n.Args {
				walk(a)
			}
		case *InExpr:
			walk(n.Expr)
			for _, a := range n.List {
				walk(a)
			}
		}
	}
	walk(node)
	slices.Sort(names)
	return slices.Compact(names)
}
