// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors. Every error returned by the assembler unwraps to one of
// these, so callers can test the category with errors.Is.
var (
	ErrLex              = errors.New("lex error")
	ErrParse            = errors.New("parse error")
	ErrOperand          = errors.New("operand error")
	ErrBadLabel         = errors.New("bad label")
	ErrUnresolvedSymbol = errors.New("unresolved symbol")
)

// A LexError reports a character at which no token rule matches.
type LexError struct {
	Line int  // 1-based source line, 0 if unknown
	Pos  int  // 0-based byte offset within the line
	Char byte // the offending character
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%sno valid token at %q", location(e.Line, e.Pos), e.Char)
}

func (e *LexError) Unwrap() error { return ErrLex }

// A ParseError reports a token that does not fit the line grammar.
type ParseError struct {
	Line     int
	Pos      int // offset of the offending token
	Expected []TokenKind
	Actual   TokenKind
	Text     string // text of the offending token
	Msg      string // overrides the expected/actual description when set
}

func (e *ParseError) Error() string {
	if e.Msg != "" {
		return location(e.Line, e.Pos) + e.Msg
	}
	got := e.Actual.String()
	if e.Text != "" && e.Actual != TokenNewline {
		got += " '" + e.Text + "'"
	}
	return fmt.Sprintf("%sexpected %s, got %s", location(e.Line, e.Pos), kindList(e.Expected), got)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// An OperandError reports operands that do not fit their instruction.
type OperandError struct {
	Line     int
	Mnemonic string
	Msg      string
}

func (e *OperandError) Error() string {
	if e.Mnemonic == "" {
		return location(e.Line, -1) + e.Msg
	}
	return fmt.Sprintf("%s%s: %s", location(e.Line, -1), e.Mnemonic, e.Msg)
}

func (e *OperandError) Unwrap() error { return ErrOperand }

// A LabelError reports a label definition that cannot be bound.
type LabelError struct {
	Line     int
	Label    string
	Reserved bool // the name is a mnemonic or register
	Previous int  // line of the earlier definition when redefined
}

func (e *LabelError) Error() string {
	if e.Reserved {
		return fmt.Sprintf("%slabel '%s' is a reserved word", location(e.Line, -1), e.Label)
	}
	return fmt.Sprintf("%slabel '%s' already defined on line %d", location(e.Line, -1), e.Label, e.Previous)
}

func (e *LabelError) Unwrap() error { return ErrBadLabel }

// A SymbolError reports a reference to a label that was never defined.
type SymbolError struct {
	Line  int
	Label string
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("%sundefined label '%s'", location(e.Line, -1), e.Label)
}

func (e *SymbolError) Unwrap() error { return ErrUnresolvedSymbol }

// Format an error location prefix. A zero line or negative column is
// omitted.
func location(line, pos int) string {
	switch {
	case line > 0 && pos >= 0:
		return fmt.Sprintf("line %d, col %d: ", line, pos+1)
	case line > 0:
		return fmt.Sprintf("line %d: ", line)
	case pos >= 0:
		return fmt.Sprintf("col %d: ", pos+1)
	default:
		return ""
	}
}

// IsSourceError reports whether err describes a problem in assembly source
// rather than a failure to read or write files.
func IsSourceError(err error) bool {
	for _, target := range []error{ErrLex, ErrParse, ErrOperand, ErrBadLabel, ErrUnresolvedSymbol} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
