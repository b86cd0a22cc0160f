// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// The maximum number of operands an instruction may be written with.
const maxOperands = 3

// A Statement is one parsed source line. At least one of Label and
// Instruction is set.
type Statement struct {
	Line        int // 1-based source line, 0 if unknown
	Label       string
	Instruction *Instruction
}

// An Instruction is a mnemonic and its operands as written.
//
// A memory reference written as "rt, offset($base)" is stored unpacked as
// the operands (base, rt, offset) with Displaced set.
type Instruction struct {
	Mnemonic  string
	Operands  []Operand
	Displaced bool
}

// String reconstructs the statement in canonical source form.
func (s Statement) String() string {
	var b strings.Builder
	if s.Label != "" {
		b.WriteString(s.Label)
		b.WriteByte(':')
		if s.Instruction != nil {
			b.WriteByte(' ')
		}
	}
	if s.Instruction != nil {
		b.WriteString(s.Instruction.String())
	}
	return b.String()
}

// String reconstructs the instruction in canonical source form, folding
// unpacked memory operands back into offset($base) notation.
func (i *Instruction) String() string {
	ops := i.Operands
	if i.Displaced && len(ops) == 3 {
		base, _ := ops[0].(Register)
		offset, _ := ops[2].(Immediate)
		ops = []Operand{ops[1], Displaced{Base: base, Offset: offset}}
	}
	s := i.Mnemonic
	for j, op := range ops {
		if j == 0 {
			s += " "
		} else {
			s += ", "
		}
		s += op.String()
	}
	return s
}

// ParseLine parses the tokens of one source line into a statement. The
// token sequence must end with a newline token.
func ParseLine(tokens []Token) (Statement, error) {
	p := parser{tokens: tokens}
	return p.parseLine()
}

// Parse reads assembly source and returns one statement per non-blank line.
// Text following a '#' is a comment.
func Parse(r io.Reader) ([]Statement, error) {
	var stmts []Statement

	scanner := bufio.NewScanner(r)
	row := 0
	for scanner.Scan() {
		row++
		line := stripComment(scanner.Text())
		if strings.TrimSpace(line) == "" {
			continue
		}

		tokens, err := tokenizeLine(row, line+"\n")
		if err != nil {
			return nil, err
		}

		p := parser{row: row, tokens: tokens}
		stmt, err := p.parseLine()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading source")
	}
	return stmts, nil
}

// ParseString parses assembly source held in a string.
func ParseString(src string) ([]Statement, error) {
	return Parse(strings.NewReader(src))
}

func stripComment(line string) string {
	for i := 0; i < len(line); i++ {
		if comment(line[i]) {
			return line[:i]
		}
	}
	return line
}

// A parser consumes the tokens of a single line with one token of
// lookahead.
type parser struct {
	row    int
	tokens []Token
	pos    int
}

func (p *parser) peek() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	t := Token{Kind: TokenEnd}
	if n := len(p.tokens); n > 0 {
		last := p.tokens[n-1]
		t.Pos = last.Pos + len(last.Text)
	}
	return t
}

func (p *parser) next() Token {
	t := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind TokenKind) (Token, error) {
	t := p.peek()
	if t.Kind != kind {
		return t, p.unexpected(kind)
	}
	return p.next(), nil
}

func (p *parser) unexpected(expected ...TokenKind) error {
	t := p.peek()
	return &ParseError{
		Line:     p.row,
		Pos:      t.Pos,
		Expected: expected,
		Actual:   t.Kind,
		Text:     t.Text,
	}
}

// line := [label ':'] [mnemonic [operand {',' operand}]] newline
func (p *parser) parseLine() (Statement, error) {
	stmt := Statement{Line: p.row}

	var mnemonic Token
	hasMnemonic := false

	// Reserved words are accepted as label names here. They are rejected by
	// name when labels are bound.
	switch t := p.peek(); t.Kind {
	case TokenIdentifier, TokenRegister:
		p.next()
		if _, err := p.expect(TokenColon); err != nil {
			return stmt, err
		}
		stmt.Label = t.Text

	case TokenMnemonic:
		p.next()
		if p.peek().Kind == TokenColon {
			p.next()
			stmt.Label = t.Text
		} else {
			mnemonic, hasMnemonic = t, true
		}
	}

	if !hasMnemonic {
		switch t := p.peek(); t.Kind {
		case TokenMnemonic:
			mnemonic, hasMnemonic = p.next(), true
		case TokenNewline:
		default:
			if stmt.Label == "" {
				return stmt, p.unexpected(TokenIdentifier, TokenMnemonic, TokenNewline)
			}
			return stmt, p.unexpected(TokenMnemonic, TokenNewline)
		}
	}

	if hasMnemonic {
		inst, err := p.parseInstruction(mnemonic)
		if err != nil {
			return stmt, err
		}
		stmt.Instruction = inst
	}

	if _, err := p.expect(TokenNewline); err != nil {
		return stmt, err
	}
	if p.peek().Kind != TokenEnd {
		return stmt, p.unexpected(TokenEnd)
	}
	return stmt, nil
}

func (p *parser) parseInstruction(mnemonic Token) (*Instruction, error) {
	inst := &Instruction{Mnemonic: mnemonic.Text}
	if k := p.peek().Kind; k == TokenNewline || k == TokenEnd {
		return inst, nil
	}

	for {
		op, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		inst.Operands = append(inst.Operands, op)

		switch p.peek().Kind {
		case TokenComma:
			p.next()
			continue
		case TokenNewline:
		default:
			return nil, p.unexpected(TokenComma, TokenNewline)
		}
		break
	}

	if err := p.unpack(inst); err != nil {
		return nil, err
	}
	return inst, nil
}

// operand := '$' register | literal ['(' '$' register ')'] | identifier
func (p *parser) parseOperand() (Operand, error) {
	switch t := p.peek(); t.Kind {
	case TokenDollar:
		p.next()
		reg, err := p.expect(TokenRegister)
		if err != nil {
			return nil, err
		}
		return newRegister(reg), nil

	case TokenDecimal, TokenHex:
		p.next()
		imm, err := p.literal(t)
		if err != nil {
			return nil, err
		}
		if p.peek().Kind != TokenLParen {
			return imm, nil
		}
		p.next()
		if _, err := p.expect(TokenDollar); err != nil {
			return nil, err
		}
		reg, err := p.expect(TokenRegister)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return Displaced{Base: newRegister(reg), Offset: imm}, nil

	case TokenIdentifier:
		p.next()
		return Label{Name: t.Text}, nil

	default:
		return nil, p.unexpected(TokenDollar, TokenDecimal, TokenHex, TokenIdentifier)
	}
}

// Convert a literal token to an immediate. Hex literals may use the full
// unsigned 64-bit range.
func (p *parser) literal(t Token) (Immediate, error) {
	text := t.Text
	neg := strings.HasPrefix(text, "-")
	if neg {
		text = text[1:]
	}

	var v uint64
	var err error
	if t.Kind == TokenHex {
		v, err = strconv.ParseUint(text[2:], 16, 64)
	} else {
		v, err = strconv.ParseUint(text, 10, 64)
		if err == nil && v > math.MaxInt64 && !(neg && v == 1<<63) {
			err = strconv.ErrRange
		}
	}
	if err != nil {
		return Immediate{}, &ParseError{
			Line:   p.row,
			Pos:    t.Pos,
			Actual: t.Kind,
			Text:   t.Text,
			Msg:    "literal " + t.Text + " does not fit in 64 bits",
		}
	}

	value := int64(v)
	if neg {
		value = -value
	}
	return Immediate{Value: value, Text: t.Text}, nil
}

// Rewrite "rt, offset($base)" as (base, rt, offset).
func (p *parser) unpack(inst *Instruction) error {
	ops := inst.Operands
	if len(ops) > maxOperands {
		return p.operandError(inst, "too many operands (%d, at most %d)", len(ops), maxOperands)
	}

	index := -1
	for i, op := range ops {
		if _, ok := op.(Displaced); ok {
			index = i
			break
		}
	}
	if index < 0 {
		return nil
	}

	rt, ok := ops[0].(Register)
	if len(ops) != 2 || index != 1 || !ok {
		return p.operandError(inst, "memory operand must follow a single register, as in rt, offset($base)")
	}

	d := ops[1].(Displaced)
	inst.Operands = []Operand{d.Base, rt, d.Offset}
	inst.Displaced = true
	return nil
}

func (p *parser) operandError(inst *Instruction, format string, args ...any) error {
	return &OperandError{
		Line:     p.row,
		Mnemonic: inst.Mnemonic,
		Msg:      fmt.Sprintf(format, args...),
	}
}
