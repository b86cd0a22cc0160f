// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Format the bytes of an instruction word as hex pairs.
func codeString(b []byte) string {
	switch len(b) {
	case 4:
		return fmt.Sprintf("%02X %02X %02X %02X", b[0], b[1], b[2], b[3])
	default:
		return ""
	}
}

func stringToBool(s string) (bool, error) {
	s = strings.ToLower(s)
	switch s {
	case "0", "false", "off":
		return false, nil
	case "1", "true", "on":
		return true, nil
	default:
		return false, errors.Errorf("invalid bool value '%s'", s)
	}
}

// Parse an unsigned number written in decimal, with a 0x prefix, or with a
// $ prefix.
func parseUint32(s string) (uint32, error) {
	if strings.HasPrefix(s, "$") {
		s = "0x" + s[1:]
	}
	v, err := strconv.ParseUint(s, 0, 32)
	return uint32(v), err
}

var hexString = "0123456789ABCDEF"

func byteToBuf(v byte, b *strings.Builder) {
	b.WriteByte(hexString[(v>>4)&0xf])
	b.WriteByte(hexString[v&0xf])
}

func wordToBuf(w []byte, b *strings.Builder) {
	for _, v := range w {
		byteToBuf(v, b)
	}
}

// Wrap text to lines of at most 76 columns, indenting each line.
func indentWrap(indent int, s string) string {
	const width = 76
	pad := strings.Repeat(" ", indent)

	var b strings.Builder
	n := 0
	for _, word := range strings.Fields(s) {
		switch {
		case n == 0:
			b.WriteString(pad)
			n = indent
		case n+1+len(word) > width:
			b.WriteString("\n")
			b.WriteString(pad)
			n = indent
		default:
			b.WriteByte(' ')
			n++
		}
		b.WriteString(word)
		n += len(word)
	}
	return b.String()
}

// Read a source file's lines. A file that cannot be read has no lines.
func readLines(filename string) []string {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil
	}
	return strings.Split(strings.ReplaceAll(string(b), "\r\n", "\n"), "\n")
}
