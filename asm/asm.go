// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm implements an assembler for a 32-bit MIPS-style instruction
// set. Source text is tokenized and parsed one line at a time into
// statements, labels are bound to instruction addresses in a single pass,
// and each instruction is then encoded into a big-endian 32-bit word.
package asm

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Assembly contains the assembled machine code and other data associated with
// the machine code.
type Assembly struct {
	Code    []byte   // Assembled machine code
	Symbols []Symbol // Label bindings
	Errors  []string // Errors encountered during assembly
}

// ReadFrom reads machine code from a binary input source.
func (a *Assembly) ReadFrom(r io.Reader) (n int64, err error) {
	a.Errors = []string{}
	a.Code, err = io.ReadAll(r)
	n = int64(len(a.Code))
	if err != nil {
		return n, err
	}
	if n%InstructionSize != 0 {
		return n, errors.Errorf("code size %d is not a multiple of %d", n, InstructionSize)
	}
	return n, nil
}

// WriteTo saves machine code as binary data into an output writer.
func (a *Assembly) WriteTo(w io.Writer) (n int64, err error) {
	nn, err := w.Write(a.Code)
	return int64(nn), err
}

// Words decodes the machine code into instruction words.
func (a *Assembly) Words() []uint32 {
	words := make([]uint32, 0, len(a.Code)/InstructionSize)
	for i := 0; i+InstructionSize <= len(a.Code); i += InstructionSize {
		words = append(words, fromBytes(a.Code[i:]))
	}
	return words
}

// Option type used by the Assembly function.
type Option uint

// Options for the AssembleSource and AssembleFile functions.
const (
	Verbose     Option = 1 << iota // verbose output during assembly
	NoSourceMap                    // AssembleFile does not write a source map
)

// The assembler is a state object used during the assembly of
// machine code from assembly code.
type assembler struct {
	r        io.Reader      // the reader passed to AssembleSource
	filename string         // name reported in errors and the source map
	stmts    []Statement    // parsed statements
	symbols  *SymbolTable   // label bindings
	insts    []Statement    // statements carrying an instruction
	program  *Program       // encoded program
	log      *logrus.Logger // verbose output
}

// NewLogger returns the logger used for assembler output. Debug messages
// are emitted only when verbose is set.
func NewLogger(out io.Writer, verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableQuote:     true,
	})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.WarnLevel)
	}
	return l
}

// AssembleFile reads a file containing assembly code, assembles it, and
// produces a binary output file and a source map file alongside it.
func AssembleFile(path string, options Option, out io.Writer) error {
	return AssembleFileTo(path, "", "", options, out)
}

// AssembleFileTo assembles the file at path and writes the machine code to
// binPath and the source map to mapPath. An empty binPath replaces the
// path's extension with ".bin"; an empty mapPath replaces the binary's
// extension with ".map". No source map is written when NoSourceMap is set.
func AssembleFileTo(path, binPath, mapPath string, options Option, out io.Writer) error {
	if out == nil {
		out = os.Stdout
	}

	if binPath == "" {
		binPath = TrimExt(path) + ".bin"
	}
	writeMap := options&NoSourceMap == 0
	if writeMap && mapPath == "" {
		mapPath = TrimExt(binPath) + ".map"
	}
	if err := checkOutputs(path, binPath, mapPath, writeMap); err != nil {
		return err
	}

	inFile, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening '%s'", path)
	}
	defer inFile.Close()

	assembly, sourceMap, err := AssembleSource(inFile, path, out, options)
	if err != nil {
		for _, e := range assembly.Errors {
			fmt.Fprintln(out, e)
		}
		return err
	}

	if err := writeFile(binPath, assembly); err != nil {
		return err
	}

	if !writeMap {
		fmt.Fprintf(out, "Assembled '%s' to produce '%s'.\n",
			filepath.Base(path),
			filepath.Base(binPath))
		return nil
	}

	if err := writeFile(mapPath, sourceMap); err != nil {
		return err
	}

	fmt.Fprintf(out, "Assembled '%s' to produce '%s' and '%s'.\n",
		filepath.Base(path),
		filepath.Base(binPath),
		filepath.Base(mapPath))
	return nil
}

// Make sure no output file replaces the source or another output.
func checkOutputs(path, binPath, mapPath string, writeMap bool) error {
	if samePath(binPath, path) {
		return errors.Errorf("output file '%s' would overwrite the source file", binPath)
	}
	if !writeMap {
		return nil
	}
	if samePath(mapPath, path) {
		return errors.Errorf("source map '%s' would overwrite the source file", mapPath)
	}
	if samePath(mapPath, binPath) {
		return errors.Errorf("source map '%s' would overwrite the output file", mapPath)
	}
	return nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// TrimExt returns path without its file extension.
func TrimExt(path string) string {
	return path[:len(path)-len(filepath.Ext(path))]
}

func writeFile(path string, w io.WriterTo) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrapf(err, "creating '%s'", path)
	}
	defer file.Close()

	if _, err := w.WriteTo(file); err != nil {
		return errors.Wrapf(err, "writing '%s'", path)
	}
	return nil
}

// AssembleSource reads assembly code from the provided stream and
// assembles it into machine code. When assembly fails, the returned
// Assembly still describes the error.
func AssembleSource(r io.Reader, filename string, out io.Writer, options Option) (*Assembly, *SourceMap, error) {
	if out == nil {
		out = os.Stdout
	}

	a := &assembler{
		r:        r,
		filename: filename,
		log:      NewLogger(out, options&Verbose != 0),
	}

	// Assembly consists of the following steps
	steps := []func(a *assembler) error{
		(*assembler).parse,           // Parse the assembly code
		(*assembler).assignAddresses, // Bind labels to instruction addresses
		(*assembler).generateCode,    // Generate the machine code
	}

	// Execute assembler steps, breaking if an error is encountered
	// in any one of them.
	var err error
	for _, step := range steps {
		if err = step(a); err != nil {
			break
		}
	}

	if err != nil {
		assembly := &Assembly{
			Errors: []string{fmt.Sprintf("Error in '%s' %v", filename, err)},
		}
		return assembly, &SourceMap{Files: []string{filename}}, err
	}

	code := a.program.Bytes()
	assembly := &Assembly{
		Code:    code,
		Symbols: a.symbols.Symbols(),
		Errors:  []string{},
	}
	return assembly, newSourceMap(filename, a.program, code), nil
}

// Read the assembly code and parse it into statements.
func (a *assembler) parse() error {
	a.logSection("Parsing assembly code")

	stmts, err := Parse(a.r)
	if err != nil {
		return err
	}
	for _, s := range stmts {
		a.logLine(s, "parsed")
	}
	a.stmts = stmts
	return nil
}

// Bind every label to an instruction address.
func (a *assembler) assignAddresses() error {
	a.logSection("Assigning addresses")

	syms, insts, err := AssignAddresses(a.stmts)
	if err != nil {
		return err
	}
	for _, s := range syms.Symbols() {
		a.log.Debugf("%08X  %s", s.Address, s.Label)
	}
	a.symbols, a.insts = syms, insts
	return nil
}

// Encode every instruction.
func (a *assembler) generateCode() error {
	a.logSection("Generating code")

	p, err := encodeAll(a.insts, a.symbols)
	if err != nil {
		return err
	}
	for i, w := range p.Words {
		addr := uint32(i * InstructionSize)
		for _, label := range a.symbols.Labels(addr) {
			a.log.Debugf("%s:", label)
		}
		a.log.Debugf("%08X-  %s    %s", addr, byteString(toBytes(w)), a.insts[i].Instruction)
	}
	a.program = p
	return nil
}

// In verbose mode, log a statement along with its source line.
func (a *assembler) logLine(s Statement, format string, args ...any) {
	a.log.WithField("line", s.Line).Debugf("%-8s | %s", fmt.Sprintf(format, args...), s)
}

// In verbose mode, log a section header.
func (a *assembler) logSection(name string) {
	a.log.Debug(strings.Repeat("-", len(name)+6))
	a.log.Debugf("-- %s --", name)
	a.log.Debug(strings.Repeat("-", len(name)+6))
}
