// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"io"
	"os"

	"github.com/beevik/mipsasm/asm"
	"github.com/beevik/mipsasm/config"
	"github.com/beevik/mipsasm/host"
	"github.com/beevik/term"
	multierror "github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Command-line settings. Flags that are set override the configuration
// file.
type cliConfig struct {
	configFile string
	logLevel   string
	output     string
	sourceMap  bool
	verbose    bool
}

// An environment holds the streams a command runs against.
type environment struct {
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	interactive func() bool
}

func main() {
	env := &environment{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		interactive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}

	if err := newRootCmd(env).Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func newRootCmd(env *environment) *cobra.Command {
	var cli cliConfig

	shellCmd := &cobra.Command{
		Use:   "shell [script...]",
		Short: "Run host command scripts, then an interactive session",
		Long: "Run the commands contained in each script file, then accept" +
			" commands interactively when standard input is a terminal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, env, &cli, args)
		},
	}

	rootCmd := &cobra.Command{
		Use:   "mipsasm",
		Short: "mipsasm - assembler for a 32-bit MIPS-style instruction set",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return before(env, &cli)
		},
		RunE:          shellCmd.RunE,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetIn(env.stdin)
	rootCmd.SetOut(env.stdout)
	rootCmd.SetErr(env.stderr)

	buildCmd := &cobra.Command{
		Use:   "build [flags] file...",
		Short: "Assemble source files into binary files",
		Long: "Assemble each source file into a binary file of big-endian" +
			" instruction words, and optionally a source map. Errors from" +
			" every file are reported together.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, env, &cli, args)
		},
	}
	buildCmd.Flags().StringVarP(&cli.output, "output", "o", "", "Output file (only with a single source file)")
	buildCmd.Flags().BoolVar(&cli.sourceMap, "map", true, "Write a source map next to each binary")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cli.configFile, "config", "", "Configuration file (default "+config.DefaultFile+" if present)")
	flags.StringVar(&cli.logLevel, "log-level", "warn", "Log messages including and over the specified level: debug, info, warn, error, fatal, panic")
	flags.BoolVarP(&cli.verbose, "verbose", "v", false, "Trace assembly steps")

	rootCmd.AddCommand(buildCmd, shellCmd)
	return rootCmd
}

func before(env *environment, cli *cliConfig) error {
	level, err := logrus.ParseLevel(cli.logLevel)
	if err != nil {
		return err
	}
	logrus.SetOutput(env.stderr)
	logrus.SetLevel(level)
	return nil
}

// Load the configuration file and apply the flags that were set.
func loadConfig(cmd *cobra.Command, cli *cliConfig) (*config.Config, error) {
	cfg, err := config.Load(cli.configFile)
	if err != nil {
		return nil, err
	}
	if f := cmd.Flags().Lookup("verbose"); f != nil && f.Changed {
		cfg.Verbose = cli.verbose
	}
	if f := cmd.Flags().Lookup("map"); f != nil && f.Changed {
		cfg.SourceMap = cli.sourceMap
	}
	logrus.Debugf("Configuration: %+v", *cfg)
	return cfg, nil
}

func runBuild(cmd *cobra.Command, env *environment, cli *cliConfig, files []string) error {
	cfg, err := loadConfig(cmd, cli)
	if err != nil {
		return err
	}
	if cli.output != "" && len(files) > 1 {
		return errors.New("--output may only be used with a single source file")
	}

	var options asm.Option
	if cfg.Verbose {
		options |= asm.Verbose
	}
	if !cfg.SourceMap {
		options |= asm.NoSourceMap
	}

	var merr *multierror.Error
	for _, file := range files {
		binPath := cli.output
		if binPath == "" {
			binPath = asm.TrimExt(file) + cfg.OutputExt
		}
		mapPath := asm.TrimExt(binPath) + cfg.MapExt

		logrus.Debugf("Assembling %s", file)
		if err := asm.AssembleFileTo(file, binPath, mapPath, options, env.stdout); err != nil {
			merr = multierror.Append(merr, errors.Wrapf(err, "%s", file))
		}
	}
	return merr.ErrorOrNil()
}

func runShell(cmd *cobra.Command, env *environment, cli *cliConfig, scripts []string) error {
	cfg, err := loadConfig(cmd, cli)
	if err != nil {
		return err
	}

	h := host.New()
	h.SetVerbose(cfg.Verbose)
	h.SetSourceMap(cfg.SourceMap)

	// Run commands contained in script files.
	for _, filename := range scripts {
		file, err := os.Open(filename)
		if err != nil {
			return errors.Wrapf(err, "opening script '%s'", filename)
		}
		more := h.RunCommands(file, env.stdout, false)
		file.Close()
		if !more {
			return nil
		}
	}

	// Run commands interactively, or from piped input when no scripts were
	// given.
	switch {
	case env.interactive():
		h.RunCommands(env.stdin, env.stdout, true)
	case len(scripts) == 0:
		h.RunCommands(env.stdin, env.stdout, false)
	}
	return nil
}
