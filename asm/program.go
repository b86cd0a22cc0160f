// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

// A Program is the encoded form of a statement sequence. Words[i] is the
// instruction located at address i*InstructionSize.
type Program struct {
	Words   []uint32
	Lines   []int // source line of each word
	Symbols *SymbolTable
}

// Size returns the size of the program's machine code in bytes.
func (p *Program) Size() int {
	return len(p.Words) * InstructionSize
}

// Bytes serializes the program's words in big-endian order.
func (p *Program) Bytes() []byte {
	b := make([]byte, 0, p.Size())
	for _, w := range p.Words {
		b = append(b, toBytes(w)...)
	}
	return b
}

// Build runs the address pass and the encoder over a statement sequence.
// The first error aborts the build.
func Build(stmts []Statement) (*Program, error) {
	syms, insts, err := AssignAddresses(stmts)
	if err != nil {
		return nil, err
	}
	return encodeAll(insts, syms)
}

// Assemble encodes a statement sequence into big-endian machine code.
func Assemble(stmts []Statement) ([]byte, error) {
	p, err := Build(stmts)
	if err != nil {
		return nil, err
	}
	return p.Bytes(), nil
}

func encodeAll(insts []Statement, syms *SymbolTable) (*Program, error) {
	p := &Program{
		Words:   make([]uint32, 0, len(insts)),
		Lines:   make([]int, 0, len(insts)),
		Symbols: syms,
	}
	for _, s := range insts {
		w, err := Encode(s, syms)
		if err != nil {
			return nil, err
		}
		p.Words = append(p.Words, w)
		p.Lines = append(p.Lines, s.Line)
	}
	return p, nil
}
