// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads assembler settings from a TOML file.
package config

import (
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// DefaultFile is the configuration file looked for in the working
// directory when no path is given.
const DefaultFile = "mipsasm.toml"

// Config holds the assembler settings that may be set in a configuration
// file. Command-line flags override them.
type Config struct {
	Verbose   bool   `toml:"verbose"`    // trace assembly steps
	SourceMap bool   `toml:"source_map"` // write a source map next to each binary
	OutputExt string `toml:"output_ext"` // extension of machine code files
	MapExt    string `toml:"map_ext"`    // extension of source map files
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		SourceMap: true,
		OutputExt: ".bin",
		MapExt:    ".map",
	}
}

// Load reads the configuration file at path. If path is empty, DefaultFile
// is read when present, and the defaults are returned otherwise.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Wrapf(err, "error reading configuration file %s", path)
	}

	c, err := Parse(string(contents))
	if err != nil {
		return nil, errors.Wrapf(err, "error decoding configuration file %s", path)
	}
	return c, nil
}

// Parse decodes TOML configuration text on top of the defaults. Unknown
// keys are an error.
func Parse(contents string) (*Config, error) {
	c := Default()
	md, err := toml.Decode(contents, c)
	if err != nil {
		return nil, err
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}

	c.OutputExt = normalizeExt(c.OutputExt, ".bin")
	c.MapExt = normalizeExt(c.MapExt, ".map")
	if c.OutputExt == c.MapExt {
		return nil, errors.Errorf("output_ext and map_ext are both %q", c.OutputExt)
	}
	return c, nil
}

func normalizeExt(ext, def string) string {
	switch {
	case ext == "":
		return def
	case !strings.HasPrefix(ext, "."):
		return "." + ext
	default:
		return ext
	}
}
