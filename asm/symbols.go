// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "github.com/beevik/mipsasm/isa"

// InstructionSize is the size in bytes of every encoded instruction.
const InstructionSize = 4

// A Symbol is a label bound to an instruction address.
type Symbol struct {
	Label   string
	Address uint32
}

// A SymbolTable maps label names to addresses. It is built once by
// AssignAddresses and not modified afterward.
type SymbolTable struct {
	symbols []Symbol       // in definition order
	index   map[string]int // label -> position in symbols
	lines   map[string]int // label -> defining source line
}

func newSymbolTable() *SymbolTable {
	return &SymbolTable{
		index: make(map[string]int),
		lines: make(map[string]int),
	}
}

// Lookup returns the address bound to a label.
func (t *SymbolTable) Lookup(label string) (uint32, bool) {
	i, ok := t.index[label]
	if !ok {
		return 0, false
	}
	return t.symbols[i].Address, true
}

// Len returns the number of bound labels.
func (t *SymbolTable) Len() int {
	return len(t.symbols)
}

// Symbols returns the bound labels in definition order, which is also
// ascending address order.
func (t *SymbolTable) Symbols() []Symbol {
	s := make([]Symbol, len(t.symbols))
	copy(s, t.symbols)
	return s
}

// Labels returns the names of all labels bound to addr.
func (t *SymbolTable) Labels(addr uint32) []string {
	return labelsAt(t.symbols, addr)
}

func labelsAt(symbols []Symbol, addr uint32) []string {
	var labels []string
	for _, s := range symbols {
		if s.Address == addr {
			labels = append(labels, s.Label)
		}
	}
	return labels
}

func (t *SymbolTable) define(label string, addr uint32, line int) error {
	if prev, dup := t.lines[label]; dup {
		return &LabelError{Line: line, Label: label, Previous: prev}
	}
	t.index[label] = len(t.symbols)
	t.lines[label] = line
	t.symbols = append(t.symbols, Symbol{Label: label, Address: addr})
	return nil
}

// AssignAddresses binds every label to the address of the instruction that
// follows it and returns the symbol table together with the statements
// that carry an instruction. The i-th returned statement is located at
// address i*InstructionSize. A label on the last line of a program binds to
// the address one past the final instruction.
func AssignAddresses(stmts []Statement) (*SymbolTable, []Statement, error) {
	// Reject reserved names before any address is assigned.
	for _, s := range stmts {
		if s.Label != "" && isa.IsReserved(s.Label) {
			return nil, nil, &LabelError{Line: s.Line, Label: s.Label, Reserved: true}
		}
	}

	syms := newSymbolTable()
	var insts []Statement
	var ip uint32
	for _, s := range stmts {
		if s.Label != "" {
			if err := syms.define(s.Label, ip, s.Line); err != nil {
				return nil, nil, err
			}
		}
		if s.Instruction != nil {
			insts = append(insts, s)
			ip += InstructionSize
		}
	}
	return syms, insts, nil
}
