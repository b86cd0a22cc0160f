// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"strconv"

	"github.com/beevik/mipsasm/isa"
)

// An Operand is one argument of an instruction: a Register, an Immediate,
// a Label reference or a Displaced memory reference.
type Operand interface {
	String() string
	operand()
}

// A Register operand, written $name.
type Register struct {
	Index uint8
	Name  string
}

// An Immediate is a literal integer. Values that do not fit the target
// field are truncated when encoded.
type Immediate struct {
	Value int64
	Text  string // source spelling, empty for synthesized values
}

// A Label is a reference to a symbol bound elsewhere in the program.
type Label struct {
	Name string
}

// A Displaced operand is a memory reference of the form offset($base).
type Displaced struct {
	Base   Register
	Offset Immediate
}

func (Register) operand()  {}
func (Immediate) operand() {}
func (Label) operand()     {}
func (Displaced) operand() {}

func (r Register) String() string {
	if r.Name == "" {
		return "$" + isa.RegisterName(r.Index)
	}
	return "$" + r.Name
}

func (i Immediate) String() string {
	if i.Text == "" {
		return strconv.FormatInt(i.Value, 10)
	}
	return i.Text
}

func (l Label) String() string {
	return l.Name
}

func (d Displaced) String() string {
	return d.Offset.String() + "(" + d.Base.String() + ")"
}

func newRegister(t Token) Register {
	index, _ := isa.RegisterIndex(t.Text)
	return Register{Index: index, Name: t.Text}
}
