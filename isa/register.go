// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package isa

// NumRegisters is the number of general-purpose registers.
const NumRegisters = 32

// Register names in index order. A register's position in this list is its
// encoded index.
var registerNames = [NumRegisters]string{
	"zero", "at", "v0", "v1",
	"a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1",
	"gp", "sp", "fp", "ra",
}

var registerIndex = func() map[string]uint8 {
	m := make(map[string]uint8, NumRegisters)
	for i, name := range registerNames {
		m[name] = uint8(i)
	}
	return m
}()

// RegisterIndex returns the encoded index of the named register.
func RegisterIndex(name string) (index uint8, ok bool) {
	index, ok = registerIndex[name]
	return
}

// RegisterName returns the canonical name of the register with the given
// index, or "" if the index is out of range.
func RegisterName(index uint8) string {
	if int(index) >= NumRegisters {
		return ""
	}
	return registerNames[index]
}

// IsRegister reports whether name is a register name.
func IsRegister(name string) bool {
	_, ok := registerIndex[name]
	return ok
}

// RegisterNames returns all register names in index order.
func RegisterNames() []string {
	names := make([]string, NumRegisters)
	copy(names, registerNames[:])
	return names
}
