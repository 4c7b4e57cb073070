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
	"strconv"
)

// Parser builds a syntax tree by precedence climbing.
// Precedence from low to high:
//
//	or
//	and
//	not
//	== != < > <= >= in
//	+ -
//	* / %
//	unary -
//	calls, literals, parentheses
type Parser struct {
	lexer *Lexer
	cur   Token
}

func NewParser(input string) *Parser {
	return &Parser{lexer: NewLexer(input)}
}

func (p *Parser) advance() error {
	tok, err := p.lexer.NextToken()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

// Parse parses the whole input
func (p *Parser) Parse() (Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != TokenEOF {
		return nil, fmt.Errorf("unexpected %s at position %d", p.cur.Type, p.cur.Pos)
	}
	return node, nil
}

// binary parses a left associative chain of ops over operands
func (p *Parser) binary(next func() (Node, error), ops ...TokenType) (Node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for slices.Contains(ops, p.cur.Type) {
		op := p.cur.Type
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseOr() (Node, error) {
	return p.binary(p.parseAnd, TokenOr)
}

func (p *Parser) parseAnd() (Node, error) {
	return p.binary(p.parseNot, TokenAnd)
}

func (p *Parser) parseNot() (Node, error) {
	if p.cur.Type != TokenNot {
		return p.parseComparison()
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	operand, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	return &UnaryOp{Op: TokenNot, Expr: operand}, nil
}

func (p *Parser) parseComparison() (Node, error) {
	left, err := p.binary(p.parseAdditive, TokenEQ, TokenNE, TokenLT, TokenGT, TokenLE, TokenGE)
	if err != nil {
		return nil, err
	}
	if p.cur.Type != TokenIn {
		return left, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.cur.Type != TokenLParen {
		return nil, fmt.Errorf("expected '(' after 'in' at position %d", p.cur.Pos)
	}
	list, err := p.parseArgs()
	if err != nil {
		return nil, err
	}
	return &InExpr{Expr: left, List: list}, nil
}

func (p *Parser) parseAdditive() (Node, error) {
	return p.binary(p.parseMultiplicative, TokenPlus, TokenMinus)
}

func (p *Parser) parseMultiplicative() (Node, error) {
	return p.binary(p.parseUnary, TokenStar, TokenSlash, TokenPercent)
}

func (p *Parser) parseUnary() (Node, error) {
	if p.cur.Type != TokenMinus {
		return p.parsePrimary()
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &UnaryOp{Op: TokenMinus, Expr: operand}, nil
}

// parseArgs parses a parenthesized, comma separated list; cur is '('
func (p *Parser) parseArgs() ([]Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	var args []Node
	for p.cur.Type != TokenRParen {
		arg, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.cur.Type != TokenComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if p.cur.Type != TokenRParen {
		return nil, fmt.Errorf("expected ')' at position %d, got %s", p.cur.Pos, p.cur.Type)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (Node, error) {
	tok := p.cur
	switch tok.Type {
	case TokenNumber:
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q at position %d", tok.Value, tok.Pos)
		}
		return &NumberLit{Value: v}, p.advance()
	case TokenString:
		return &StringLit{Value: tok.Value}, p.advance()
	case TokenTrue, TokenFalse:
		return &BoolLit{Value: tok.Type == TokenTrue}, p.advance()
	case TokenIdent:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Type != TokenLParen {
			return &Ident{Name: tok.Value}, nil
		}
		if _, ok := functions[tok.Value]; !ok {
			return nil, fmt.Errorf("unknown function %q at position %d", tok.Value, tok.Pos)
		}
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return &CallExpr{Func: tok.Value, Args: args}, nil
	case TokenLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.cur.Type != TokenRParen {
			return nil, fmt.Errorf("expected ')' at position %d, got %s", p.cur.Pos, p.cur.Type)
		}
		return inner, p.advance()
	case TokenEOF:
		return nil, fmt.Errorf("unexpected end of expression")
	default:
		return nil, fmt.Errorf("unexpected %s at position %d", tok.Type, tok.Pos)
	}
}
