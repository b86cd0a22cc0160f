// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"encoding/json"
	"hash/crc32"
	"io"
	"sort"

	"github.com/pkg/errors"
)

// A SourceMap describes the mapping between source code line numbers and
// machine code addresses, along with the program's label bindings.
type SourceMap struct {
	Size    uint32 // size of the machine code in bytes
	CRC     uint32 // IEEE CRC-32 of the machine code
	Files   []string
	Lines   []SourceLine
	Symbols []Symbol
}

// A SourceLine represents a mapping between a machine code address and
// the source code file and line number used to generate it.
type SourceLine struct {
	Address   uint32 // Machine code address
	FileIndex int    // Source code file index
	Line      int    // Source code line number
}

func newSourceMap(filename string, p *Program, code []byte) *SourceMap {
	m := &SourceMap{
		Size:  uint32(len(code)),
		CRC:   crc32.ChecksumIEEE(code),
		Files: []string{filename},
		Lines: make([]SourceLine, len(p.Lines)),
	}
	for i, line := range p.Lines {
		m.Lines[i] = SourceLine{Address: uint32(i * InstructionSize), Line: line}
	}
	if p.Symbols != nil {
		m.Symbols = p.Symbols.Symbols()
	}
	return m
}

// Search searches the source map for a mapping with the requested address.
func (s *SourceMap) Search(addr uint32) (filename string, line int) {
	i := sort.Search(len(s.Lines), func(i int) bool {
		return s.Lines[i].Address >= addr
	})
	if i < len(s.Lines) && s.Lines[i].Address == addr {
		return s.Files[s.Lines[i].FileIndex], s.Lines[i].Line
	}
	return "", -1
}

// Find returns the address bound to a label.
func (s *SourceMap) Find(label string) (uint32, bool) {
	for _, sym := range s.Symbols {
		if sym.Label == label {
			return sym.Address, true
		}
	}
	return 0, false
}

// Labels returns the labels bound to addr.
func (s *SourceMap) Labels(addr uint32) []string {
	return labelsAt(s.Symbols, addr)
}

// Matches reports whether the source map was generated from code.
func (s *SourceMap) Matches(code []byte) bool {
	return s.Size == uint32(len(code)) && s.CRC == crc32.ChecksumIEEE(code)
}

// ReadFrom reads the contents of an exported source map file.
func (s *SourceMap) ReadFrom(r io.Reader) (n int64, err error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	err = json.Unmarshal(b, s)
	if err != nil {
		return 0, errors.Wrap(err, "decoding source map")
	}
	return int64(len(b)), nil
}

// WriteTo writes the contents of the source map to an output stream.
func (s *SourceMap) WriteTo(w io.Writer) (n int64, err error) {
	b, err := json.Marshal(*s)
	if err != nil {
		return 0, err
	}

	nn, err := w.Write(b)
	return int64(nn), err
}
