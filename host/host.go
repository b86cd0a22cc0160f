// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host provides an interactive shell around the assembler.
//
// Within the host it is possible to assemble files or code typed at the
// prompt, load previously assembled binaries along with their source maps,
// list machine code next to the source lines that produced it, dump
// instruction words, and inspect label bindings.
package host

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/beevik/cmd"
	"github.com/beevik/mipsasm/asm"
	"github.com/beevik/mipsasm/isa"
	"github.com/pkg/errors"
)

// The file name given to code assembled at the prompt.
const interactiveFile = "<interactive>"

var errQuit = errors.New("Exiting program")

// A Host holds the current program and the state of an interactive
// assembler session.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	settings    *settings
	code        []byte              // machine code of the current program
	sourceMap   *asm.SourceMap      // source map of the current program
	sources     map[string][]string // source file -> lines
	lastCmd     *command
	lastArgs    []string
}

// New creates a new assembler host.
func New() *Host {
	return &Host{
		settings: newSettings(),
		sources:  make(map[string][]string),
	}
}

// SetVerbose sets the default verbosity of assemble commands.
func (h *Host) SetVerbose(v bool) {
	h.settings.Verbose = v
}

// SetSourceMap sets whether assemble commands write source map files.
func (h *Host) SetSourceMap(v bool) {
	h.settings.SourceMap = v
}

// RunCommands accepts host commands from a reader and outputs the results
// to a writer. If the commands are interactive, a prompt is displayed while
// the host waits for the the next command to be entered. It returns false
// if the quit command was issued.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) bool {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive
	defer h.flush()

	for {
		h.prompt()

		line, err := h.getLine()
		if err != nil {
			return true
		}
		line = strings.TrimSpace(line)

		c, args := h.lastCmd, h.lastArgs
		switch {
		case line != "":
			var ok bool
			c, args, ok = h.lookup(line)
			if !ok {
				continue
			}
		case !h.interactive:
			continue
		}

		if c == nil {
			continue
		}
		h.lastCmd, h.lastArgs = c, args

		if err := c.fn(h, c, args); err != nil {
			return false
		}
	}
}

// Look up a command line in the command tree.
func (h *Host) lookup(line string) (c *command, args []string, ok bool) {
	n, args, err := cmds.Lookup(line)
	switch {
	case errors.Is(err, cmd.ErrNotFound):
		h.println("Command not found.")
		return nil, nil, false
	case errors.Is(err, cmd.ErrAmbiguous):
		h.println("Command is ambiguous.")
		return nil, nil, false
	case err != nil:
		h.printf("ERROR: %v.\n", err)
		return nil, nil, false
	}

	switch n := n.(type) {
	case *cmd.Command:
		return n.Data.(*command), args, true
	case *cmd.Tree:
		h.displayCommands(subtrees[n])
	}
	return nil, nil, false
}

// Assemble reads assembly code from r, makes it the current program and
// reports any errors to the host output.
func (h *Host) assemble(r io.Reader, filename string, lines []string, verbose bool) bool {
	var options asm.Option
	if verbose {
		options |= asm.Verbose
	}

	assembly, sourceMap, err := asm.AssembleSource(r, filename, h.output, options)
	if err != nil {
		for _, e := range assembly.Errors {
			h.println(e)
		}
		return false
	}

	h.code, h.sourceMap = assembly.Code, sourceMap
	h.sources[filename] = lines
	h.settings.NextListAddr = 0
	h.settings.NextDumpAddr = 0
	return true
}

func (h *Host) cmdAssembleFile(c *command, args []string) error {
	if len(args) < 1 {
		h.displayUsage(c)
		return nil
	}

	filename := args[0]
	if filepath.Ext(filename) == "" {
		filename += ".s"
	}

	verbose := h.settings.Verbose
	if len(args) >= 2 {
		v, err := stringToBool(args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		verbose = v
	}

	var options asm.Option
	if verbose {
		options |= asm.Verbose
	}
	if !h.settings.SourceMap {
		options |= asm.NoSourceMap
	}

	err := asm.AssembleFile(filename, options, h.output)
	if err != nil {
		if !asm.IsSourceError(err) {
			h.printf("Failed to assemble '%s': %v\n", filepath.Base(filename), err)
		}
		return nil
	}

	delete(h.sources, filename)
	h.load(asm.TrimExt(filename) + ".bin")
	return nil
}

func (h *Host) cmdAssembleInteractive(c *command, args []string) error {
	h.println("Enter assembly language instructions.")
	h.println("Type END to assemble, Ctrl-D to abort.")

	var lines []string
	for {
		if h.interactive {
			h.printf("%04d  ", len(lines)+1)
		}

		line, err := h.getLine()
		if err != nil {
			h.println()
			h.println("Assembly aborted.")
			return nil
		}
		if strings.EqualFold(strings.TrimSpace(line), "end") {
			break
		}
		lines = append(lines, line)
	}

	src := strings.Join(lines, "\n") + "\n"
	if h.assemble(strings.NewReader(src), interactiveFile, lines, h.settings.Verbose) {
		h.printf("Assembled %d instruction words.\n", len(h.code)/asm.InstructionSize)
	}
	return nil
}

func (h *Host) cmdDump(c *command, args []string) error {
	if h.code == nil {
		h.println("No program loaded.")
		return nil
	}

	addr := h.settings.NextDumpAddr
	if len(args) >= 1 {
		a, err := h.parseAddress(args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	words := h.settings.DumpWords
	if len(args) >= 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			h.printf("Invalid word count '%s'.\n", args[1])
			return nil
		}
		words = n
	}

	h.settings.NextDumpAddr = h.dumpWords(addr, words)
	return nil
}

func (h *Host) cmdHelp(c *command, args []string) error {
	if len(args) == 0 {
		h.displayCommands("")
		h.println()
		h.println("Shortcuts:")
		for _, s := range shortcuts {
			h.printf("    %-15s  %s\n", s.name, s.target)
		}
		return nil
	}

	n, _, err := cmds.Lookup(strings.Join(args, " "))
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	switch n := n.(type) {
	case *cmd.Tree:
		h.displayCommands(subtrees[n])
	case *cmd.Command:
		hc := n.Data.(*command)
		if hc.usage != "" {
			h.printf("Syntax: %s\n\n", hc.usage)
		}
		switch {
		case hc.description != "":
			h.printf("Description:\n%s\n\n", indentWrap(3, hc.description))
		case hc.brief != "":
			h.printf("Description:\n%s.\n\n", indentWrap(3, hc.brief))
		}
	}
	return nil
}

func (h *Host) cmdInstructions(c *command, args []string) error {
	var list []*isa.Instruction
	if len(args) == 0 {
		list = isa.Instructions()
	} else {
		list = isa.Search(strings.ToLower(args[0]))
	}
	if len(list) == 0 {
		h.printf("No instructions begin with '%s'.\n", args[0])
		return nil
	}

	h.println("Instructions:")
	for _, inst := range list {
		h.printf("    %-8s %s  %s\n", inst.Name, inst.Format, inst.Usage())
	}
	return nil
}

func (h *Host) cmdList(c *command, args []string) error {
	if h.code == nil {
		h.println("No program loaded.")
		return nil
	}

	addr := h.settings.NextListAddr
	if len(args) >= 1 {
		a, err := h.parseAddress(args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	lines := h.settings.SourceLines
	if len(args) >= 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			h.printf("Invalid line count '%s'.\n", args[1])
			return nil
		}
		lines = n
	}

	h.settings.NextListAddr = h.list(addr, lines)
	return nil
}

func (h *Host) cmdLoad(c *command, args []string) error {
	if len(args) < 1 {
		h.displayUsage(c)
		return nil
	}

	filename := args[0]
	if filepath.Ext(filename) == "" {
		filename += ".bin"
	}

	h.load(filename)
	return nil
}

func (h *Host) cmdQuit(c *command, args []string) error {
	return errQuit
}

func (h *Host) cmdRegisters(c *command, args []string) error {
	h.println("Registers:")
	for i, name := range isa.RegisterNames() {
		h.printf("    %2d  $%s\n", i, name)
	}
	return nil
}

func (h *Host) cmdSet(c *command, args []string) error {
	switch len(args) {
	case 0:
		h.println("Variables:")
		h.settings.Display(h.output)

	case 1:
		h.displayUsage(c)

	default:
		key, value := args[0], strings.Join(args[1:], " ")

		var err error
		switch h.settings.Kind(key) {
		case reflect.Invalid:
			err = errors.Errorf("setting '%s' not found", key)
		case reflect.Bool:
			var v bool
			if v, err = stringToBool(value); err == nil {
				err = h.settings.Set(key, v)
			}
		case reflect.Int:
			var v int
			if v, err = strconv.Atoi(value); err == nil {
				err = h.settings.Set(key, v)
			}
		case reflect.Uint32:
			var v uint32
			if v, err = h.parseAddress(value); err == nil {
				err = h.settings.Set(key, v)
			}
		}

		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		h.println("Setting updated.")
	}
	return nil
}

func (h *Host) cmdSymbols(c *command, args []string) error {
	if h.sourceMap == nil {
		h.println("No source map loaded.")
		return nil
	}
	if len(h.sourceMap.Symbols) == 0 {
		h.println("No labels defined.")
		return nil
	}

	h.println("Labels:")
	for _, s := range h.sourceMap.Symbols {
		h.printf("    %08X  %s\n", s.Address, s.Label)
	}
	return nil
}

// Load a binary file and its source map as the current program.
func (h *Host) load(filename string) bool {
	file, err := os.Open(filename)
	if err != nil {
		h.printf("Failed to open '%s': %v\n", filepath.Base(filename), err)
		return false
	}
	defer file.Close()

	a := &asm.Assembly{}
	if _, err := a.ReadFrom(file); err != nil {
		h.printf("Failed to read '%s': %v\n", filepath.Base(filename), err)
		return false
	}

	h.code, h.sourceMap = a.Code, nil
	h.settings.NextListAddr = 0
	h.settings.NextDumpAddr = 0
	h.printf("Loaded '%s' ($%08X bytes).\n", filepath.Base(filename), len(a.Code))

	mapFilename := asm.TrimExt(filename) + ".map"
	mapFile, err := os.Open(mapFilename)
	if err != nil {
		return true
	}
	defer mapFile.Close()

	sourceMap := &asm.SourceMap{}
	if _, err := sourceMap.ReadFrom(mapFile); err != nil {
		h.printf("Failed to read source map '%s': %v\n", filepath.Base(mapFilename), err)
		return true
	}
	if !sourceMap.Matches(a.Code) {
		h.printf("Source map '%s' does not match the binary and was ignored.\n", filepath.Base(mapFilename))
		return true
	}

	h.sourceMap = sourceMap
	h.printf("Loaded source map from '%s'.\n", filepath.Base(mapFilename))
	return true
}

// Display lines of machine code with their source text, starting at addr.
// Return the address following the last line displayed.
func (h *Host) list(addr uint32, lines int) uint32 {
	addr &^= asm.InstructionSize - 1
	for ; lines > 0 && int(addr)+asm.InstructionSize <= len(h.code); lines-- {
		if h.sourceMap != nil {
			for _, label := range h.sourceMap.Labels(addr) {
				h.printf("%s:\n", label)
			}
		}

		w := h.code[addr : addr+asm.InstructionSize]
		h.printf("%08X-  %s   %s\n", addr, codeString(w), h.sourceText(addr))
		addr += asm.InstructionSize
	}
	return addr
}

// Dump machine code words starting at addr. Return the address following
// the last word dumped.
func (h *Host) dumpWords(addr uint32, words int) uint32 {
	const perLine = 4

	addr &^= asm.InstructionSize - 1
	for words > 0 && int(addr) < len(h.code) {
		var b strings.Builder
		fmt.Fprintf(&b, "%08X-", addr)
		for i := 0; i < perLine && words > 0 && int(addr)+asm.InstructionSize <= len(h.code); i++ {
			w := h.code[addr : addr+asm.InstructionSize]
			b.WriteString(" ")
			wordToBuf(w, &b)
			addr += asm.InstructionSize
			words--
		}
		h.println(b.String())
	}
	return addr
}

// Return the source text that produced the instruction at addr.
func (h *Host) sourceText(addr uint32) string {
	if h.sourceMap == nil {
		return ""
	}
	filename, line := h.sourceMap.Search(addr)
	if line < 1 {
		return ""
	}

	lines, ok := h.sources[filename]
	if !ok {
		lines = readLines(filename)
		h.sources[filename] = lines
	}
	if line > len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[line-1])
}

// Parse an address given as a number or a label of the current program.
func (h *Host) parseAddress(s string) (uint32, error) {
	if h.sourceMap != nil {
		if addr, ok := h.sourceMap.Find(s); ok {
			return addr, nil
		}
	}
	v, err := parseUint32(s)
	if err != nil {
		return 0, errors.Errorf("invalid address '%s'", s)
	}
	return v, nil
}

func (h *Host) print(args ...any) {
	fmt.Fprint(h.output, args...)
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return h.input.Text(), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if h.interactive {
		h.print("* ")
		h.flush()
	}
}

func (h *Host) displayUsage(c *command) {
	if c.usage != "" {
		h.printf("Syntax: %s\n", c.usage)
	} else {
		h.println("<no help text>")
	}
}

// Display the commands found under a subtree path, or all commands when
// the path is empty.
func (h *Host) displayCommands(path string) {
	if path == "" {
		h.println("Commands:")
	} else {
		h.printf("%s commands:\n", strings.ToUpper(path[:1])+path[1:])
	}
	for _, c := range commandsUnder(path) {
		if c.brief != "" {
			h.printf("    %-22s  %s\n", c.path, c.brief)
		}
	}
}
