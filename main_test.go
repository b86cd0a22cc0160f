// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	env := &environment{
		stdin:       strings.NewReader(stdin),
		stdout:      &out,
		stderr:      &out,
		interactive: func() bool { return false },
	}
	cmd := newRootCmd(env)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	src := writeFile(t, dir, "prog.s", "main: add $t0, $t1, $t2\n      lw $t0, 4($sp)\n")

	out, err := execute(t, "", "build", src)
	require.NoError(t, err)
	assert.Contains(t, out, "Assembled 'prog.s' to produce 'prog.bin' and 'prog.map'.")

	code, err := os.ReadFile(filepath.Join(dir, "prog.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x2A, 0x40, 0x20, 0x8F, 0xA8, 0x00, 0x04}, code)
	assert.FileExists(t, filepath.Join(dir, "prog.map"))
}

func TestBuildOptions(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	src := writeFile(t, dir, "prog.s", "nop\n")

	_, err := execute(t, "", "build", "--map=false", "-o", filepath.Join(dir, "out.img"), src)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "out.img"))
	assert.NoFileExists(t, filepath.Join(dir, "out.map"))

	out, err := execute(t, "", "build", "-v", src)
	require.NoError(t, err)
	assert.Contains(t, out, "-- Generating code --")

	_, err = execute(t, "", "build", "-o", "x.bin", src, src)
	assert.Error(t, err)

	_, err = execute(t, "", "build")
	assert.Error(t, err)
}

func TestBuildOutputConflicts(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	src := writeFile(t, dir, "prog.s", "nop\n")

	_, err := execute(t, "", "build", "-o", filepath.Join(dir, "prog.map"), src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "would overwrite the output file")
	assert.NoFileExists(t, filepath.Join(dir, "prog.map"))

	_, err = execute(t, "", "build", "-o", src, src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "would overwrite the source file")

	contents, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "nop\n", string(contents))
}

func TestBuildConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	src := writeFile(t, dir, "prog.s", "nop\n")
	cfg := writeFile(t, dir, "asm.toml", "output_ext = \"img\"\nmap_ext = \".sym\"\n")

	_, err := execute(t, "", "build", "--config", cfg, src)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "prog.img"))
	assert.FileExists(t, filepath.Join(dir, "prog.sym"))

	bad := writeFile(t, dir, "bad.toml", "unknown = 1\n")
	_, err = execute(t, "", "build", "--config", bad, src)
	assert.Error(t, err)
}

func TestBuildErrors(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	good := writeFile(t, dir, "good.s", "nop\n")
	bad1 := writeFile(t, dir, "bad1.s", "j nowhere\n")
	bad2 := writeFile(t, dir, "bad2.s", "t0: nop\n")

	out, err := execute(t, "", "build", bad1, good, bad2)
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 2)
	assert.Contains(t, err.Error(), "bad1.s")
	assert.Contains(t, err.Error(), "bad2.s")

	assert.Contains(t, out, "undefined label 'nowhere'")
	assert.Contains(t, out, "Assembled 'good.s'")
	assert.FileExists(t, filepath.Join(dir, "good.bin"))
	assert.NoFileExists(t, filepath.Join(dir, "bad1.bin"))
}

func TestShellScript(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	src := writeFile(t, dir, "prog.s", "start: j start\n")
	script := writeFile(t, dir, "cmds.txt", "assemble file "+src+"\nsymbols\nquit\n")

	out, err := execute(t, "help\n", "shell", script)
	require.NoError(t, err)
	assert.Contains(t, out, "    00000000  start")
	assert.NotContains(t, out, "Commands:")
}

func TestShellStdin(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := execute(t, "help\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Commands:")

	_, err = execute(t, "", "shell", "missing.txt")
	assert.Error(t, err)
}
