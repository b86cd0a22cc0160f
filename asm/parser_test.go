// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseLine(t *testing.T, line string) (Statement, error) {
	t.Helper()
	tokens, err := Tokenize(line)
	require.NoError(t, err, line)
	return ParseLine(tokens)
}

func TestParseLine(t *testing.T) {
	stmt, err := parseLine(t, "loop: add $t0, $t1, $t2\n")
	require.NoError(t, err)
	assert.Equal(t, "loop", stmt.Label)
	require.NotNil(t, stmt.Instruction)
	assert.Equal(t, "add", stmt.Instruction.Mnemonic)
	assert.False(t, stmt.Instruction.Displaced)
	assert.Equal(t, []Operand{
		Register{Index: 8, Name: "t0"},
		Register{Index: 9, Name: "t1"},
		Register{Index: 10, Name: "t2"},
	}, stmt.Instruction.Operands)

	stmt, err = parseLine(t, "done:\n")
	require.NoError(t, err)
	assert.Equal(t, "done", stmt.Label)
	assert.Nil(t, stmt.Instruction)

	stmt, err = parseLine(t, "beq $a0, $zero, exit\n")
	require.NoError(t, err)
	assert.Empty(t, stmt.Label)
	assert.Equal(t, Label{Name: "exit"}, stmt.Instruction.Operands[2])

	stmt, err = parseLine(t, "syscall\n")
	require.NoError(t, err)
	assert.Empty(t, stmt.Instruction.Operands)
}

func TestParseDisplaced(t *testing.T) {
	stmt, err := parseLine(t, "sw $ra, -4($sp)\n")
	require.NoError(t, err)
	inst := stmt.Instruction
	assert.True(t, inst.Displaced)
	assert.Equal(t, []Operand{
		Register{Index: 29, Name: "sp"},
		Register{Index: 31, Name: "ra"},
		Immediate{Value: -4, Text: "-4"},
	}, inst.Operands)
	assert.Equal(t, "sw $ra, -4($sp)", inst.String())
}

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		text  string
		value int64
	}{
		{"0", 0},
		{"42", 42},
		{"-42", -42},
		{"0x7fff", 0x7fff},
		{"-0x10", -16},
		{"0xFFFFFFFFFFFFFFFF", -1},
		{"-9223372036854775808", -9223372036854775808},
	}
	for _, test := range tests {
		stmt, err := parseLine(t, "j "+test.text+"\n")
		require.NoError(t, err, test.text)
		assert.Equal(t, Immediate{Value: test.value, Text: test.text}, stmt.Instruction.Operands[0])
	}

	_, err := parseLine(t, "j 9223372036854775808\n")
	assert.ErrorIs(t, err, ErrParse)
}

func TestParseReservedLabel(t *testing.T) {
	stmt, err := parseLine(t, "add: nop\n")
	require.NoError(t, err)
	assert.Equal(t, "add", stmt.Label)
	assert.Equal(t, "nop", stmt.Instruction.Mnemonic)

	stmt, err = parseLine(t, "t0:\n")
	require.NoError(t, err)
	assert.Equal(t, "t0", stmt.Label)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		line     string
		pos      int
		expected []TokenKind
		actual   TokenKind
	}{
		// trailing comma
		{"add $t0, $t1,\n", 13, []TokenKind{TokenDollar, TokenDecimal, TokenHex, TokenIdentifier}, TokenNewline},
		// missing newline
		{"nop", 3, []TokenKind{TokenNewline}, TokenEnd},
		// unclosed displacement
		{"lw $t0, 4($sp\n", 13, []TokenKind{TokenRParen}, TokenNewline},
		// label without colon
		{"loop nop\n", 5, []TokenKind{TokenColon}, TokenMnemonic},
		// register without dollar
		{"jr ra\n", 3, []TokenKind{TokenDollar, TokenDecimal, TokenHex, TokenIdentifier}, TokenRegister},
		// missing comma
		{"add $t0 $t1\n", 8, []TokenKind{TokenComma, TokenNewline}, TokenDollar},
		// line starting with punctuation
		{", nop\n", 0, []TokenKind{TokenIdentifier, TokenMnemonic, TokenNewline}, TokenComma},
		// two labels
		{"a: c: nop\n", 3, []TokenKind{TokenMnemonic, TokenNewline}, TokenIdentifier},
		// a second label named like a mnemonic is read as the instruction
		{"a: b: nop\n", 4, []TokenKind{TokenDollar, TokenDecimal, TokenHex, TokenIdentifier}, TokenColon},
		// tokens after the newline
		{"nop\nnop\n", 4, []TokenKind{TokenEnd}, TokenMnemonic},
	}

	for _, test := range tests {
		_, err := parseLine(t, test.line)
		require.Error(t, err, "%q", test.line)
		assert.ErrorIs(t, err, ErrParse)

		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Equal(t, test.pos, parseErr.Pos, "%q", test.line)
		assert.Equal(t, test.expected, parseErr.Expected, "%q", test.line)
		assert.Equal(t, test.actual, parseErr.Actual, "%q", test.line)
	}
}

func TestParseOperandErrors(t *testing.T) {
	lines := []string{
		"lw $t0, $t1, 4($sp)\n",
		"lw 4($sp), $t0\n",
		"lw 4($sp)\n",
		"lw foo, 4($sp)\n",
		"add $t0, $t1, $t2, $t3\n",
	}
	for _, line := range lines {
		_, err := parseLine(t, line)
		assert.ErrorIs(t, err, ErrOperand, "%q", line)
		var opErr *OperandError
		if assert.ErrorAs(t, err, &opErr) {
			assert.NotEmpty(t, opErr.Mnemonic)
		}
	}
}

func TestParse(t *testing.T) {
	src := "# header comment\n\nstart:  lui $t0, 0x1000  # load\r\n        sw $zero, 0($t0)\n\nend:\n"
	stmts, err := ParseString(src)
	require.NoError(t, err)
	require.Len(t, stmts, 3)

	assert.Equal(t, 3, stmts[0].Line)
	assert.Equal(t, "start: lui $t0, 0x1000", stmts[0].String())
	assert.Equal(t, 4, stmts[1].Line)
	assert.Equal(t, "sw $zero, 0($t0)", stmts[1].String())
	assert.Equal(t, 6, stmts[2].Line)
	assert.Equal(t, "end:", stmts[2].String())
}

func TestParseErrorLine(t *testing.T) {
	_, err := ParseString("nop\nnop\nadd $t0,\n")
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 3, parseErr.Line)
	assert.Equal(t, "line 3, col 9: expected dollar, decimal, hex or identifier, got newline", err.Error())
}
