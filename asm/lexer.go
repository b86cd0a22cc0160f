// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "github.com/beevik/mipsasm/isa"

var punctuation = map[byte]TokenKind{
	':':  TokenColon,
	',':  TokenComma,
	'$':  TokenDollar,
	'\n': TokenNewline,
	'(':  TokenLParen,
	')':  TokenRParen,
}

// Tokenize splits a single source line into tokens, discarding whitespace.
// The line should end with a newline; the parser rejects lines whose token
// sequence does not.
func Tokenize(line string) ([]Token, error) {
	return tokenizeLine(0, line)
}

func tokenizeLine(row int, line string) ([]Token, error) {
	l := lexer{row: row, src: line}
	var tokens []Token
	for l.pos < len(l.src) {
		t, ok := l.next()
		if !ok {
			return nil, &LexError{Line: row, Pos: l.pos, Char: l.src[l.pos]}
		}
		if t.Kind != TokenWhitespace {
			tokens = append(tokens, t)
		}
	}
	return tokens, nil
}

type lexer struct {
	row int    // 1-based source line, 0 if unknown
	src string // the line being scanned
	pos int    // current byte offset
}

// Scan the next token. The rules are tried in a fixed order and the first
// match wins. Identifiers are matched by a single broad pattern and then
// classified against the mnemonic and register catalogs.
func (l *lexer) next() (Token, bool) {
	if kind, ok := punctuation[l.src[l.pos]]; ok {
		return l.emit(kind, 1), true
	}

	if n := l.scanIdentifier(); n > 0 {
		t := l.emit(TokenIdentifier, n)
		switch {
		case isa.IsMnemonic(t.Text):
			t.Kind = TokenMnemonic
		case isa.IsRegister(t.Text):
			t.Kind = TokenRegister
		}
		return t, true
	}

	if n := l.scanWhile(l.pos, whitespace); n > 0 {
		return l.emit(TokenWhitespace, n), true
	}

	// Hex must be tried before decimal, since "0x1F" begins with a decimal
	// digit.
	if n := l.scanHex(); n > 0 {
		return l.emit(TokenHex, n), true
	}
	if n := l.scanDecimal(); n > 0 {
		return l.emit(TokenDecimal, n), true
	}

	return Token{}, false
}

func (l *lexer) emit(kind TokenKind, n int) Token {
	t := Token{Kind: kind, Text: l.src[l.pos : l.pos+n], Pos: l.pos}
	l.pos += n
	return t
}

// Return the number of bytes at offset i satisfying fn.
func (l *lexer) scanWhile(i int, fn func(c byte) bool) int {
	j := i
	for ; j < len(l.src) && fn(l.src[j]); j++ {
	}
	return j - i
}

// [A-Za-z_][A-Za-z0-9_]*
func (l *lexer) scanIdentifier() int {
	if !identifierStartChar(l.src[l.pos]) {
		return 0
	}
	return 1 + l.scanWhile(l.pos+1, identifierChar)
}

// -?0[xX][0-9A-Fa-f]+
func (l *lexer) scanHex() int {
	i := l.pos
	if l.src[i] == '-' {
		i++
	}
	if i+2 >= len(l.src) || l.src[i] != '0' || (l.src[i+1] != 'x' && l.src[i+1] != 'X') {
		return 0
	}
	n := l.scanWhile(i+2, hexadecimal)
	if n == 0 {
		return 0
	}
	return i + 2 + n - l.pos
}

// -?[0-9]+
func (l *lexer) scanDecimal() int {
	i := l.pos
	if l.src[i] == '-' {
		i++
	}
	n := l.scanWhile(i, decimal)
	if n == 0 {
		return 0
	}
	return i + n - l.pos
}

//
// character helper functions
//

func whitespace(c byte) bool {
	return c == ' ' || c == '\t'
}

func alpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func decimal(c byte) bool {
	return c >= '0' && c <= '9'
}

func hexadecimal(c byte) bool {
	return decimal(c) || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f')
}

func identifierStartChar(c byte) bool {
	return alpha(c) || c == '_'
}

func identifierChar(c byte) bool {
	return alpha(c) || decimal(c) || c == '_'
}

func comment(c byte) bool {
	return c == '#'
}
