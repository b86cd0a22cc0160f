// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(tokens []Token) []TokenKind {
	k := make([]TokenKind, len(tokens))
	for i, t := range tokens {
		k[i] = t.Kind
	}
	return k
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		line  string
		kinds []TokenKind
	}{
		{"addi $t0, $t1, 5\n", []TokenKind{TokenMnemonic, TokenDollar, TokenRegister, TokenComma, TokenDollar, TokenRegister, TokenComma, TokenDecimal, TokenNewline}},
		{"loop: j loop\n", []TokenKind{TokenIdentifier, TokenColon, TokenMnemonic, TokenIdentifier, TokenNewline}},
		{"lw $t0, -8($sp)\n", []TokenKind{TokenMnemonic, TokenDollar, TokenRegister, TokenComma, TokenDecimal, TokenLParen, TokenDollar, TokenRegister, TokenRParen, TokenNewline}},
		{"lui $at, 0x1F\n", []TokenKind{TokenMnemonic, TokenDollar, TokenRegister, TokenComma, TokenHex, TokenNewline}},
		{"\t  \n", []TokenKind{TokenNewline}},
		{"t0", []TokenKind{TokenRegister}},
		{"t10", []TokenKind{TokenIdentifier}},
		{"adds", []TokenKind{TokenIdentifier}},
		{"_add", []TokenKind{TokenIdentifier}},
		{"ADD", []TokenKind{TokenIdentifier}},
	}

	for _, test := range tests {
		tokens, err := Tokenize(test.line)
		require.NoError(t, err, test.line)
		assert.Equal(t, test.kinds, kinds(tokens), "%q", test.line)
	}
}

func TestTokenizeText(t *testing.T) {
	tokens, err := Tokenize("addi $t0, x, -0x10\n")
	require.NoError(t, err)
	require.Len(t, tokens, 8)

	assert.Equal(t, Token{Kind: TokenMnemonic, Text: "addi", Pos: 0}, tokens[0])
	assert.Equal(t, Token{Kind: TokenRegister, Text: "t0", Pos: 6}, tokens[2])
	assert.Equal(t, Token{Kind: TokenIdentifier, Text: "x", Pos: 10}, tokens[4])
	assert.Equal(t, Token{Kind: TokenHex, Text: "-0x10", Pos: 13}, tokens[6])
	assert.Equal(t, Token{Kind: TokenNewline, Text: "\n", Pos: 18}, tokens[7])
}

func TestTokenizeHexBeforeDecimal(t *testing.T) {
	tokens, err := Tokenize("0x1f 0X0 0 007")
	require.NoError(t, err)
	assert.Equal(t, []TokenKind{TokenHex, TokenHex, TokenDecimal, TokenDecimal}, kinds(tokens))
	assert.Equal(t, "007", tokens[3].Text)
}

func TestTokenizeError(t *testing.T) {
	_, err := Tokenize("add $t0, %t1\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLex)

	var lexErr *LexError
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, 9, lexErr.Pos)
	assert.Equal(t, byte('%'), lexErr.Char)
	assert.Equal(t, `col 10: no valid token at '%'`, lexErr.Error())

	_, err = Tokenize("x - 1")
	assert.ErrorIs(t, err, ErrLex)
}
