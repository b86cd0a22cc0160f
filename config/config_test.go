// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	c, err := Parse(`
verbose = true
source_map = false
output_ext = "img"
`)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Verbose:   true,
		SourceMap: false,
		OutputExt: ".img",
		MapExt:    ".map",
	}, c)
}

func TestParseEmpty(t *testing.T) {
	c, err := Parse("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("verbose = 1")
	assert.Error(t, err)

	_, err = Parse("verbos = true\nextra = 2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown keys: extra, verbos")

	_, err = Parse(`output_ext = ".out"` + "\n" + `map_ext = "out"`)
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asm.toml")
	require.NoError(t, os.WriteFile(path, []byte("map_ext = \".sym\"\n"), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ".sym", c.MapExt)
	assert.True(t, c.SourceMap)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadDefaultFile(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	require.NoError(t, os.WriteFile(DefaultFile, []byte("verbose = true\n"), 0644))
	c, err = Load("")
	require.NoError(t, err)
	assert.True(t, c.Verbose)
}
