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
	"strings"
	"unicode"
	"unicode/utf8"
)

var singleCharTokens = map[rune]TokenType{
	'+': TokenPlus, '-': TokenMinus, '*': TokenStar, '/': TokenSlash,
	'%': TokenPercent, '(': TokenLParen, ')': TokenRParen, ',': TokenComma,
}

// Lexer splits an expression into tokens
type Lexer struct {
	input string
	pos   int  // offset of ch
	ch    rune // current rune, 0 at the end
	width int
}

func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.read()
	return l
}

func (l *Lexer) read() {
	if l.pos >= len(l.input) {
		l.ch, l.width = 0, 0
		return
	}
	l.ch, l.width = utf8.DecodeRuneInString(l.input[l.pos:])
}

func (l *Lexer) advance() {
	l.pos += l.width
	l.read()
}

func (l *Lexer) peek() rune {
	next := l.pos + l.width
	if next >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[next:])
	return r
}

// NextToken returns the next token
func (l *Lexer) NextToken() (Token, error) {
	for unicode.IsSpace(l.ch) {
		l.advance()
	}
	start := l.pos

	switch {
	case l.ch == 0:
		return Token{Type: TokenEOF, Pos: start}, nil
	case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peek())):
		return l.readNumber(start), nil
	case l.ch == '"' || l.ch == '\'':
		return l.readString(start)
	case unicode.IsLetter(l.ch) || l.ch == '_':
		return l.readIdent(start), nil
	}

	if typ, ok := singleCharTokens[l.ch]; ok {
		l.advance()
		return Token{Type: typ, Value: typ.String(), Pos: start}, nil
	}

	ch := l.ch
	l.advance()
	withEq := l.ch == '='
	if withEq {
		l.advance()
	}
	switch {
	case ch == '=' && withEq:
		return Token{Type: TokenEQ, Value: "==", Pos: start}, nil
	case ch == '!' && withEq:
		return Token{Type: TokenNE, Value: "!=", Pos: start}, nil
	case ch == '<' && withEq:
		return Token{Type: TokenLE, Value: "<=", Pos: start}, nil
	case ch == '<':
		return Token{Type: TokenLT, Value: "<", Pos: start}, nil
	case ch == '>' && withEq:
		return Token{Type: TokenGE, Value: ">=", Pos: start}, nil
	case ch == '>':
		return Token{Type: TokenGT, Value: ">", Pos: start}, nil
	case ch == '=':
		return Token{}, fmt.Errorf("unexpected '=' at position %d, did you mean '=='?", start)
	}
	return Token{}, fmt.Errorf("unexpected character %q at position %d", ch, start)
}

func (l *Lexer) readNumber(start int) Token {
	seenDot := false
	for isDigit(l.ch) || (l.ch == '.' && !seenDot) {
		if l.ch == '.' {
			seenDot = true
		}
		l.advance()
	}
	return Token{Type: TokenNumber, Value: l.input[start:l.pos], Pos: start}
}

func (l *Lexer) readString(start int) (Token, error) {
	quote := l.ch
	l.advance()
	var sb strings.Builder
	for l.ch != 0 && l.ch != quote {
		if l.ch == '\\' {
			l.advance()
			switch l.ch {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 0:
				return Token{}, fmt.Errorf("unterminated string starting at position %d", start)
			default:
				sb.WriteRune(l.ch)
			}
		} else {
			sb.WriteRune(l.ch)
		}
		l.advance()
	}
	if l.ch != quote {
		return Token{}, fmt.Errorf("unterminated string starting at position %d", start)
	}
	l.advance()
	return Token{Type: TokenString, Value: sb.String(), Pos: start}, nil
}

func (l *Lexer) readIdent(start int) Token {
	for unicode.IsLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.advance()
	}
	value := l.input[start:l.pos]
	if typ, ok := keywords[value]; ok {
		return Token{Type: typ, Value: value, Pos: start}
	}
	return Token{Type: TokenIdent, Value: value, Pos: start}
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}
