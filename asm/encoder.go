// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"

	"github.com/beevik/mipsasm/isa"
)

// Encode packs a statement's instruction into a 32-bit word. Label operands
// resolve to their absolute address in syms; branch and jump targets are
// not made PC-relative. Values wider than their field are truncated.
func Encode(stmt Statement, syms *SymbolTable) (uint32, error) {
	in := stmt.Instruction
	if in == nil {
		return 0, &OperandError{Line: stmt.Line, Msg: "statement has no instruction"}
	}

	inst, ok := isa.Lookup(in.Mnemonic)
	if !ok {
		return 0, operandErrorf(stmt, "unknown mnemonic")
	}

	shape := inst.Shape
	if in.Displaced != shape.Displaced() {
		if in.Displaced {
			return 0, operandErrorf(stmt, "offset(base) operand not allowed; usage: %s", inst.Usage())
		}
		return 0, operandErrorf(stmt, "expected an offset(base) operand; usage: %s", inst.Usage())
	}

	min, max := shape.Arity()
	if n := len(in.Operands); n < min || n > max {
		return 0, operandErrorf(stmt, "wrong number of operands (%d); usage: %s", n, inst.Usage())
	}

	var f isa.Fields
	slots := shape.Slots()
	for i, op := range in.Operands {
		v, err := resolve(stmt, op, slots[i], syms)
		if err != nil {
			return 0, err
		}
		f.Set(slots[i].Field, v)
	}
	return inst.Encode(f), nil
}

// Resolve an operand to the value of the field it occupies.
func resolve(stmt Statement, op Operand, slot isa.Slot, syms *SymbolTable) (uint32, error) {
	switch o := op.(type) {
	case Register:
		if slot.Kind == isa.KindRegister {
			return uint32(o.Index), nil
		}

	case Immediate:
		if slot.Kind != isa.KindRegister {
			return uint32(o.Value), nil
		}

	case Label:
		if slot.Kind == isa.KindValue {
			if syms != nil {
				if addr, ok := syms.Lookup(o.Name); ok {
					return addr, nil
				}
			}
			return 0, &SymbolError{Line: stmt.Line, Label: o.Name}
		}
	}
	return 0, operandErrorf(stmt, "operand %s is not a valid %s", op, slot.Kind)
}

func operandErrorf(stmt Statement, format string, args ...any) error {
	return &OperandError{
		Line:     stmt.Line,
		Mnemonic: stmt.Instruction.Mnemonic,
		Msg:      fmt.Sprintf(format, args...),
	}
}
