// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeStatement(t *testing.T) {
	stmt := Statement{
		Line: 1,
		Instruction: &Instruction{
			Mnemonic: "add",
			Operands: []Operand{
				Register{Index: 8},
				Register{Index: 9},
				Register{Index: 10},
			},
		},
	}
	w, err := Encode(stmt, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x012A4020), w)

	stmt = Statement{
		Instruction: &Instruction{
			Mnemonic:  "lw",
			Operands:  []Operand{Register{Index: 29}, Register{Index: 8}, Immediate{Value: 4}},
			Displaced: true,
		},
	}
	w, err = Encode(stmt, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x8FA80004), w)
}

func TestEncodeLabel(t *testing.T) {
	stmts, err := ParseString("j label\nlabel:\n nop\n")
	require.NoError(t, err)

	syms, insts, err := AssignAddresses(stmts)
	require.NoError(t, err)

	addr, ok := syms.Lookup("label")
	require.True(t, ok)
	assert.Equal(t, uint32(4), addr)

	w, err := Encode(insts[0], syms)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x08000004), w)
}

func TestEncodeUnresolved(t *testing.T) {
	stmts, err := ParseString("beq $t0, $t1, missing\n")
	require.NoError(t, err)

	_, err = Build(stmts)
	require.ErrorIs(t, err, ErrUnresolvedSymbol)

	var symErr *SymbolError
	require.ErrorAs(t, err, &symErr)
	assert.Equal(t, "missing", symErr.Label)
	assert.Equal(t, 1, symErr.Line)
}

func TestEncodeOperandErrors(t *testing.T) {
	lines := []string{
		"add $t0, $t1",           // too few
		"add $t0, $t1, 5",        // immediate in register slot
		"addi $t0, 5, $t1",       // register in immediate slot
		"sll $t0, $t1, label",    // label where only a literal fits
		"jr $ra, $t0",            // too many
		"nop $t0",                // nop takes nothing
		"lw $t0, $sp",            // missing offset(base)
		"add $t0, 4($sp)",        // offset(base) on a register instruction
		"label: lui label, 4",    // label in register slot
		"syscall 1, 2",           // code slot holds one value
		"break $t0",              // register in code slot
		"j $ra",                  // register as jump target
		"beq $t0, label, target", // label in rt slot
	}
	for _, line := range lines {
		_, err := assemble(line)
		require.Error(t, err, line)
		assert.ErrorIs(t, err, ErrOperand, line)
	}
}

func TestEncodeOperandErrorMessage(t *testing.T) {
	stmts, err := ParseString("\nadd $t0, $t1\n")
	require.NoError(t, err)

	_, err = Build(stmts)
	require.Error(t, err)
	assert.Equal(t, "line 2: add: wrong number of operands (2); usage: add rd, rs, rt", err.Error())
}

func TestEncodeUnknownMnemonic(t *testing.T) {
	stmt := Statement{Line: 7, Instruction: &Instruction{Mnemonic: "frob"}}
	_, err := Encode(stmt, nil)
	assert.ErrorIs(t, err, ErrOperand)

	_, err = Encode(Statement{Label: "x"}, nil)
	assert.ErrorIs(t, err, ErrOperand)
}
