// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package isa describes the instruction set targeted by the assembler: the
// general-purpose register file and the catalog of mnemonics with their
// encoding formats and bit layouts.
package isa

import (
	"sort"
	"strings"
)

// Format identifies one of the three 32-bit instruction layouts.
type Format byte

// Instruction formats
const (
	R Format = iota // register: opcode rs rt rd shamt funct
	I               // immediate: opcode rs rt imm16
	J               // jump: opcode addr26
)

var formatName = []string{"R", "I", "J"}

func (f Format) String() string {
	return formatName[f]
}

// A Shape describes the operand signature of an instruction: how many
// operands it takes, what kind each one is, and which bit field of the
// instruction word each operand fills.
type Shape byte

// Operand shapes
const (
	ShapeNone        Shape = iota // nop
	ShapeRdRsRt                   // add rd, rs, rt
	ShapeRsRt                     // mult rs, rt
	ShapeRd                       // mfhi rd
	ShapeRs                       // jr rs
	ShapeRdRs                     // jalr rd, rs
	ShapeRdRtShamt                // sll rd, rt, shamt
	ShapeRdRtRs                   // sllv rd, rt, rs
	ShapeCode                     // syscall [code]
	ShapeRtRd                     // mfc0 rt, rd
	ShapeRtRsImm                  // addi rt, rs, imm
	ShapeRtImm                    // lui rt, imm
	ShapeBaseOffset               // lw rt, offset(base)
	ShapeRsRtTarget               // beq rs, rt, target
	ShapeRsTarget                 // bgez rs, target
	ShapeTarget                   // j target
)

// OperandKind restricts what may appear in an operand slot.
type OperandKind byte

// Operand kinds
const (
	KindRegister  OperandKind = iota // $reg
	KindImmediate                    // numeric literal only
	KindValue                        // numeric literal or label
)

var kindName = []string{"register", "immediate", "immediate or label"}

func (k OperandKind) String() string {
	return kindName[k]
}

// Field names a bit field of an instruction word.
type Field byte

// Instruction word fields
const (
	FieldRS Field = iota
	FieldRT
	FieldRD
	FieldShamt
	FieldImm // also fills the J-format target
	FieldCode
)

// A Slot describes a single operand position within a shape.
type Slot struct {
	Kind     OperandKind
	Field    Field
	Optional bool // the slot may be omitted (only trailing slots)
}

type shapeData struct {
	syntax string
	slots  []Slot
}

var shapes = []shapeData{
	ShapeNone:       {"", nil},
	ShapeRdRsRt:     {"rd, rs, rt", []Slot{{KindRegister, FieldRD, false}, {KindRegister, FieldRS, false}, {KindRegister, FieldRT, false}}},
	ShapeRsRt:       {"rs, rt", []Slot{{KindRegister, FieldRS, false}, {KindRegister, FieldRT, false}}},
	ShapeRd:         {"rd", []Slot{{KindRegister, FieldRD, false}}},
	ShapeRs:         {"rs", []Slot{{KindRegister, FieldRS, false}}},
	ShapeRdRs:       {"rd, rs", []Slot{{KindRegister, FieldRD, false}, {KindRegister, FieldRS, false}}},
	ShapeRdRtShamt:  {"rd, rt, shamt", []Slot{{KindRegister, FieldRD, false}, {KindRegister, FieldRT, false}, {KindImmediate, FieldShamt, false}}},
	ShapeRdRtRs:     {"rd, rt, rs", []Slot{{KindRegister, FieldRD, false}, {KindRegister, FieldRT, false}, {KindRegister, FieldRS, false}}},
	ShapeCode:       {"[code]", []Slot{{KindImmediate, FieldCode, true}}},
	ShapeRtRd:       {"rt, rd", []Slot{{KindRegister, FieldRT, false}, {KindRegister, FieldRD, false}}},
	ShapeRtRsImm:    {"rt, rs, imm", []Slot{{KindRegister, FieldRT, false}, {KindRegister, FieldRS, false}, {KindValue, FieldImm, false}}},
	ShapeRtImm:      {"rt, imm", []Slot{{KindRegister, FieldRT, false}, {KindValue, FieldImm, false}}},
	ShapeBaseOffset: {"rt, offset(base)", []Slot{{KindRegister, FieldRS, false}, {KindRegister, FieldRT, false}, {KindImmediate, FieldImm, false}}},
	ShapeRsRtTarget: {"rs, rt, target", []Slot{{KindRegister, FieldRS, false}, {KindRegister, FieldRT, false}, {KindValue, FieldImm, false}}},
	ShapeRsTarget:   {"rs, target", []Slot{{KindRegister, FieldRS, false}, {KindValue, FieldImm, false}}},
	ShapeTarget:     {"target", []Slot{{KindValue, FieldImm, false}}},
}

// Slots returns the operand slots of the shape. For ShapeBaseOffset the
// slots are listed in unpacked order: base, rt, offset.
func (s Shape) Slots() []Slot {
	return shapes[s].slots
}

// Syntax returns a human-readable operand template for the shape.
func (s Shape) Syntax() string {
	return shapes[s].syntax
}

// Displaced reports whether the shape takes an offset(base) operand.
func (s Shape) Displaced() bool {
	return s == ShapeBaseOffset
}

// Arity returns the minimum and maximum number of operands the shape
// accepts.
func (s Shape) Arity() (min, max int) {
	for _, slot := range shapes[s].slots {
		if !slot.Optional {
			min++
		}
		max++
	}
	return min, max
}

// An Instruction describes a mnemonic: its encoding format, operand shape
// and the constant fields fixed by the mnemonic.
type Instruction struct {
	Name   string // lower-case mnemonic
	Format Format // instruction word layout
	Shape  Shape  // operand signature
	Opcode uint32 // primary opcode, bits 31..26
	Funct  uint32 // R-format function code, bits 5..0
	RS     uint32 // fixed rs field (coprocessor moves)
	RT     uint32 // fixed rt field (REGIMM branches)
}

// Usage returns the instruction's assembly syntax, e.g. "add rd, rs, rt".
func (inst *Instruction) Usage() string {
	if syntax := inst.Shape.Syntax(); syntax != "" {
		return inst.Name + " " + syntax
	}
	return inst.Name
}

// Fields holds the operand-derived field values of an instruction word.
// Values wider than their field are truncated.
type Fields struct {
	RS, RT, RD, Shamt uint32
	Imm               uint32 // I-format immediate / branch target
	Addr              uint32 // J-format target
	Code              uint32 // syscall/break code
}

// Set stores v into the field f.
func (fs *Fields) Set(f Field, v uint32) {
	switch f {
	case FieldRS:
		fs.RS = v
	case FieldRT:
		fs.RT = v
	case FieldRD:
		fs.RD = v
	case FieldShamt:
		fs.Shamt = v
	case FieldImm:
		fs.Imm = v
		fs.Addr = v
	case FieldCode:
		fs.Code = v
	}
}

// Encode packs the instruction's constant fields and the operand fields into
// a 32-bit instruction word.
func (inst *Instruction) Encode(f Fields) uint32 {
	rs := (f.RS | inst.RS) & 0x1f
	rt := (f.RT | inst.RT) & 0x1f
	switch inst.Format {
	case R:
		return inst.Opcode<<26 | rs<<21 | rt<<16 | (f.RD&0x1f)<<11 |
			(f.Shamt&0x1f)<<6 | (f.Code&0xfffff)<<6 | inst.Funct
	case I:
		return inst.Opcode<<26 | rs<<21 | rt<<16 | f.Imm&0xffff
	default:
		return inst.Opcode<<26 | f.Addr&0x3ffffff
	}
}

// Instruction catalog. The REGIMM (opcode 1) branches are distinguished by
// their fixed rt field.
var data = []Instruction{
	{Name: "add", Format: R, Shape: ShapeRdRsRt, Funct: 0x20},
	{Name: "addu", Format: R, Shape: ShapeRdRsRt, Funct: 0x21},
	{Name: "and", Format: R, Shape: ShapeRdRsRt, Funct: 0x24},
	{Name: "nor", Format: R, Shape: ShapeRdRsRt, Funct: 0x27},
	{Name: "or", Format: R, Shape: ShapeRdRsRt, Funct: 0x25},
	{Name: "slt", Format: R, Shape: ShapeRdRsRt, Funct: 0x2a},
	{Name: "sltu", Format: R, Shape: ShapeRdRsRt, Funct: 0x2b},
	{Name: "sub", Format: R, Shape: ShapeRdRsRt, Funct: 0x22},
	{Name: "subu", Format: R, Shape: ShapeRdRsRt, Funct: 0x23},
	{Name: "xor", Format: R, Shape: ShapeRdRsRt, Funct: 0x26},

	{Name: "mult", Format: R, Shape: ShapeRsRt, Funct: 0x18},
	{Name: "multu", Format: R, Shape: ShapeRsRt, Funct: 0x19},
	{Name: "div", Format: R, Shape: ShapeRsRt, Funct: 0x1a},
	{Name: "divu", Format: R, Shape: ShapeRsRt, Funct: 0x1b},

	{Name: "mfhi", Format: R, Shape: ShapeRd, Funct: 0x10},
	{Name: "mflo", Format: R, Shape: ShapeRd, Funct: 0x12},
	{Name: "mthi", Format: R, Shape: ShapeRs, Funct: 0x11},
	{Name: "mtlo", Format: R, Shape: ShapeRs, Funct: 0x13},
	{Name: "jr", Format: R, Shape: ShapeRs, Funct: 0x08},
	{Name: "jalr", Format: R, Shape: ShapeRdRs, Funct: 0x09},

	{Name: "sll", Format: R, Shape: ShapeRdRtShamt, Funct: 0x00},
	{Name: "srl", Format: R, Shape: ShapeRdRtShamt, Funct: 0x02},
	{Name: "sra", Format: R, Shape: ShapeRdRtShamt, Funct: 0x03},
	{Name: "sllv", Format: R, Shape: ShapeRdRtRs, Funct: 0x04},
	{Name: "srlv", Format: R, Shape: ShapeRdRtRs, Funct: 0x06},
	{Name: "srav", Format: R, Shape: ShapeRdRtRs, Funct: 0x07},

	{Name: "syscall", Format: R, Shape: ShapeCode, Funct: 0x0c},
	{Name: "break", Format: R, Shape: ShapeCode, Funct: 0x0d},
	{Name: "nop", Format: R, Shape: ShapeNone},

	{Name: "mfc0", Format: R, Shape: ShapeRtRd, Opcode: 0x10, RS: 0x00},
	{Name: "mtc0", Format: R, Shape: ShapeRtRd, Opcode: 0x10, RS: 0x04},

	{Name: "addi", Format: I, Shape: ShapeRtRsImm, Opcode: 0x08},
	{Name: "addiu", Format: I, Shape: ShapeRtRsImm, Opcode: 0x09},
	{Name: "slti", Format: I, Shape: ShapeRtRsImm, Opcode: 0x0a},
	{Name: "sltiu", Format: I, Shape: ShapeRtRsImm, Opcode: 0x0b},
	{Name: "andi", Format: I, Shape: ShapeRtRsImm, Opcode: 0x0c},
	{Name: "ori", Format: I, Shape: ShapeRtRsImm, Opcode: 0x0d},
	{Name: "xori", Format: I, Shape: ShapeRtRsImm, Opcode: 0x0e},
	{Name: "lui", Format: I, Shape: ShapeRtImm, Opcode: 0x0f},

	{Name: "lb", Format: I, Shape: ShapeBaseOffset, Opcode: 0x20},
	{Name: "lh", Format: I, Shape: ShapeBaseOffset, Opcode: 0x21},
	{Name: "lwl", Format: I, Shape: ShapeBaseOffset, Opcode: 0x22},
	{Name: "lw", Format: I, Shape: ShapeBaseOffset, Opcode: 0x23},
	{Name: "lbu", Format: I, Shape: ShapeBaseOffset, Opcode: 0x24},
	{Name: "lhu", Format: I, Shape: ShapeBaseOffset, Opcode: 0x25},
	{Name: "lwr", Format: I, Shape: ShapeBaseOffset, Opcode: 0x26},
	{Name: "sb", Format: I, Shape: ShapeBaseOffset, Opcode: 0x28},
	{Name: "sh", Format: I, Shape: ShapeBaseOffset, Opcode: 0x29},
	{Name: "swl", Format: I, Shape: ShapeBaseOffset, Opcode: 0x2a},
	{Name: "sw", Format: I, Shape: ShapeBaseOffset, Opcode: 0x2b},
	{Name: "swr", Format: I, Shape: ShapeBaseOffset, Opcode: 0x2e},

	{Name: "beq", Format: I, Shape: ShapeRsRtTarget, Opcode: 0x04},
	{Name: "bne", Format: I, Shape: ShapeRsRtTarget, Opcode: 0x05},
	{Name: "blez", Format: I, Shape: ShapeRsTarget, Opcode: 0x06},
	{Name: "bgtz", Format: I, Shape: ShapeRsTarget, Opcode: 0x07},
	{Name: "bltz", Format: I, Shape: ShapeRsTarget, Opcode: 0x01, RT: 0x00},
	{Name: "bgez", Format: I, Shape: ShapeRsTarget, Opcode: 0x01, RT: 0x01},
	{Name: "bltzal", Format: I, Shape: ShapeRsTarget, Opcode: 0x01, RT: 0x10},
	{Name: "bgezal", Format: I, Shape: ShapeRsTarget, Opcode: 0x01, RT: 0x11},
	{Name: "b", Format: I, Shape: ShapeTarget, Opcode: 0x04},
	{Name: "bal", Format: I, Shape: ShapeTarget, Opcode: 0x01, RT: 0x11},

	{Name: "j", Format: J, Shape: ShapeTarget, Opcode: 0x02},
	{Name: "jal", Format: J, Shape: ShapeTarget, Opcode: 0x03},
}

var (
	instructions = make(map[string]*Instruction, len(data))
	mnemonics    []string
)

func init() {
	for i := range data {
		inst := &data[i]
		if _, dup := instructions[inst.Name]; dup {
			panic("duplicate mnemonic " + inst.Name)
		}
		instructions[inst.Name] = inst
		mnemonics = append(mnemonics, inst.Name)
	}
	sort.Strings(mnemonics)
}

// Lookup returns the catalog entry for a mnemonic. Mnemonics are
// case-sensitive and lower-case.
func Lookup(name string) (*Instruction, bool) {
	inst, ok := instructions[name]
	return inst, ok
}

// IsMnemonic reports whether name is a catalog mnemonic.
func IsMnemonic(name string) bool {
	_, ok := instructions[name]
	return ok
}

// IsReserved reports whether name is a mnemonic or register name, and so
// may not be used as a label.
func IsReserved(name string) bool {
	return IsMnemonic(name) || IsRegister(name)
}

// Mnemonics returns all catalog mnemonics in sorted order.
func Mnemonics() []string {
	m := make([]string, len(mnemonics))
	copy(m, mnemonics)
	return m
}

// Instructions returns all catalog entries sorted by mnemonic.
func Instructions() []*Instruction {
	list := make([]*Instruction, 0, len(mnemonics))
	for _, name := range mnemonics {
		list = append(list, instructions[name])
	}
	return list
}

// Search returns the catalog entries whose mnemonic begins with prefix.
func Search(prefix string) []*Instruction {
	var list []*Instruction
	for _, name := range mnemonics {
		if strings.HasPrefix(name, prefix) {
			list = append(list, instructions[name])
		}
	}
	return list
}
