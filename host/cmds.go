// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"strings"

	"github.com/beevik/cmd"
)

// A command describes a host command and the handler that runs it. It is
// stored as the data of its node in the command tree.
type command struct {
	path        string // full command name, e.g. "assemble file"
	brief       string
	description string
	usage       string
	fn          func(h *Host, c *command, args []string) error
}

type shortcut struct {
	name, target string
}

var (
	cmds      *cmd.Tree
	commands  []*command
	subtrees  = make(map[*cmd.Tree]string)
	shortcuts []shortcut
)

func init() {
	cmds = cmd.NewTree(cmd.TreeDescriptor{Name: "mipsasm"})
	root := cmds

	addCommand(root, "", &command{
		path:        "help",
		description: "Display help for a command.",
		usage:       "help [<command>]",
		fn:          (*Host).cmdHelp,
	})

	// Assemble commands
	as := addSubtree(root, "assemble", "Assemble commands")
	addCommand(as, "assemble", &command{
		path:  "file",
		brief: "Assemble a file from disk and save the binary to disk",
		description: "Run the assembler on the specified file," +
			" producing a binary file and source map file if successful." +
			" If you want verbose output, specify true as a second parameter." +
			" The assembled code becomes the current program.",
		usage: "assemble file <filename> [<verbose>]",
		fn:    (*Host).cmdAssembleFile,
	})
	addCommand(as, "assemble", &command{
		path:  "interactive",
		brief: "Start interactive assembly mode",
		description: "Start interactive assembler mode. A new prompt will" +
			" appear, allowing you to enter assembly language instructions" +
			" interactively. Once you type END, the instructions will be" +
			" assembled and become the current program.",
		usage: "assemble interactive",
		fn:    (*Host).cmdAssembleInteractive,
	})

	addCommand(root, "", &command{
		path:  "dump",
		brief: "Dump machine code words",
		description: "Dump the current program's machine code as 32-bit" +
			" words starting from the specified address or label. The" +
			" number of words to dump may be specified as an option. If no" +
			" address is specified, the dump continues from where the last" +
			" one left off.",
		usage: "dump [<address>] [<words>]",
		fn:    (*Host).cmdDump,
	})
	addCommand(root, "", &command{
		path:  "instructions",
		brief: "List instruction mnemonics",
		description: "Display the instruction set with each mnemonic's" +
			" encoding format and operand syntax. If a prefix is given, only" +
			" the mnemonics beginning with it are shown.",
		usage: "instructions [<prefix>]",
		fn:    (*Host).cmdInstructions,
	})
	addCommand(root, "", &command{
		path:  "list",
		brief: "List machine code with source lines",
		description: "List the current program starting at the specified" +
			" address or label, showing each instruction word alongside the" +
			" source line that produced it. The number of lines to list may" +
			" be specified as an option.",
		usage: "list [<address>] [<lines>]",
		fn:    (*Host).cmdList,
	})
	addCommand(root, "", &command{
		path:  "load",
		brief: "Load a binary file",
		description: "Load a previously assembled binary file as the" +
			" current program. If the file has an associated source map, it" +
			" will be loaded too.",
		usage: "load <filename>",
		fn:    (*Host).cmdLoad,
	})
	addCommand(root, "", &command{
		path:        "quit",
		brief:       "Quit the program",
		description: "Quit the program.",
		usage:       "quit",
		fn:          (*Host).cmdQuit,
	})
	addCommand(root, "", &command{
		path:  "registers",
		brief: "List register names",
		description: "Display the general-purpose registers by name along" +
			" with the index each one encodes to.",
		usage: "registers",
		fn:    (*Host).cmdRegisters,
	})
	addCommand(root, "", &command{
		path:  "set",
		brief: "Set a configuration variable",
		description: "Set the value of a configuration variable. Type the set" +
			" command without a variable name or value to display the current" +
			" values of all configuration variables.",
		usage: "set [<var> <value>]",
		fn:    (*Host).cmdSet,
	})
	addCommand(root, "", &command{
		path:  "symbols",
		brief: "List label addresses",
		description: "Display every label of the current program along" +
			" with the address it is bound to.",
		usage: "symbols",
		fn:    (*Host).cmdSymbols,
	})

	addShortcut(root, "a", "assemble file")
	addShortcut(root, "ai", "assemble interactive")
	addShortcut(root, "d", "dump")
	addShortcut(root, "i", "instructions")
	addShortcut(root, "l", "list")
	addShortcut(root, "r", "registers")
	addShortcut(root, "?", "help")
}

func addSubtree(t *cmd.Tree, name, brief string) *cmd.Tree {
	sub := t.AddSubtree(cmd.TreeDescriptor{Name: name, Brief: brief})
	subtrees[sub] = name
	return sub
}

func addCommand(t *cmd.Tree, prefix string, c *command) {
	name := c.path
	if prefix != "" {
		c.path = prefix + " " + name
	}
	t.AddCommand(cmd.CommandDescriptor{
		Name:        name,
		Brief:       c.brief,
		Description: c.description,
		Usage:       c.usage,
		Data:        c,
	})
	commands = append(commands, c)
}

func addShortcut(t *cmd.Tree, name, target string) {
	t.AddShortcut(name, target)
	shortcuts = append(shortcuts, shortcut{name, target})
}

// Return the commands whose path begins with prefix.
func commandsUnder(prefix string) []*command {
	var list []*command
	for _, c := range commands {
		if prefix == "" || strings.HasPrefix(c.path, prefix+" ") {
			list = append(list, c)
		}
	}
	return list
}
