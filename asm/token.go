// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "strings"

// TokenKind identifies the lexical class of a token.
type TokenKind byte

// Token kinds
const (
	TokenWhitespace TokenKind = iota // never returned by Tokenize
	TokenColon
	TokenComma
	TokenDollar
	TokenLParen
	TokenRParen
	TokenNewline
	TokenMnemonic
	TokenRegister
	TokenDecimal
	TokenHex
	TokenIdentifier
	TokenEnd // end of the token sequence; never produced by the lexer
)

var tokenKindName = []string{
	"whitespace",
	"colon",
	"comma",
	"dollar",
	"left paren",
	"right paren",
	"newline",
	"mnemonic",
	"register",
	"decimal",
	"hex",
	"identifier",
	"end of line",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindName) {
		return tokenKindName[k]
	}
	return "unknown"
}

// A Token is a classified span of a source line.
type Token struct {
	Kind TokenKind
	Text string // the matched source text
	Pos  int    // 0-based byte offset of the token within its line
}

func (t Token) String() string {
	if t.Kind == TokenNewline {
		return t.Kind.String()
	}
	return t.Kind.String() + " '" + t.Text + "'"
}

// Describe a set of token kinds as "a, b or c".
func kindList(kinds []TokenKind) string {
	switch len(kinds) {
	case 0:
		return ""
	case 1:
		return kinds[0].String()
	}
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
}
