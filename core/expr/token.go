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

// TokenType identifies the kind of a lexical token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenNumber
	TokenString
	TokenIdent
	TokenTrue
	TokenFalse

	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent
	TokenLParen
	TokenRParen
	TokenComma

	TokenEQ // ==
	TokenNE // !=
	TokenLT // <
	TokenGT // >
	TokenLE // <=
	TokenGE // >=

	TokenAnd
	TokenOr
	TokenNot
	TokenIn
)

var tokenNames = map[TokenType]string{
	TokenEOF:     "end of expression",
	TokenNumber:  "number",
	TokenString:  "string",
	TokenIdent:   "identifier",
	TokenTrue:    "true",
	TokenFalse:   "false",
	TokenPlus:    "+",
	TokenMinus:   "-",
	TokenStar:    "*",
	TokenSlash:   "/",
	TokenPercent: "%",
	TokenLParen:  "(",
	TokenRParen:  ")",
	TokenComma:   ",",
	TokenEQ:      "==",
	TokenNE:      "!=",
	TokenLT:      "<",
	TokenGT:      ">",
	TokenLE:      "<=",
	TokenGE:      ">=",
	TokenAnd:     "and",
	TokenOr:      "or",
	TokenNot:     "not",
	TokenIn:      "in",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return "unknown"
}

var keywords = map[string]TokenType{
	"and":   TokenAnd,
	"or":    TokenOr,
	"not":   TokenNot,
	"in":    TokenIn,
	"true":  TokenTrue,
	"false": TokenFalse,
}

// Token is a lexical token. Pos is the byte offset in the source.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}
