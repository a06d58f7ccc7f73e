// Copyright (c) 2025 slsrepo
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/slsrepo/t2bootstrap/internal/bootstrap"
	"github.com/slsrepo/t2bootstrap/internal/config"
	"github.com/slsrepo/t2bootstrap/internal/runlog"
)

const version = "1.0.0"

// options are the parsed command-line arguments.
type options struct {
	text          bool
	run           bool
	skipPreflight bool
	configPath    string
	url           string
	output        string
	venv          string
}

func main() {
	args := os.Args[1:]

	if len(args) > 0 && args[0] == "guide" {
		printGuide()
		return
	}

	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "t2bootstrap: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 't2bootstrap --help' for usage.")
		os.Exit(2)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "t2bootstrap: %v\n", err)
		os.Exit(2)
	}
	applyFlagOverrides(cfg, opts)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "t2bootstrap: %v\n", err)
		os.Exit(2)
	}

	if opts.text || !isTTY() {
		os.Exit(runText(cfg, opts))
	}
	os.Exit(runTUI(cfg, opts))
}

// parseArgs scans the argument list. Unknown flags are errors so typos do not
// silently start a root-privileged install.
func parseArgs(args []string) (options, error) {
	var opts options
	for i := 0; i < len(args); i++ {
		arg := args[i]

		value := func() (string, error) {
			i++
			if i >= len(args) {
				return "", fmt.Errorf("%s requires a value", arg)
			}
			return args[i], nil
		}

		var err error
		switch arg {
		case "--text", "-t":
			opts.text = true
		case "--run":
			opts.run = true
		case "--skip-preflight":
			opts.skipPreflight = true
		case "--config":
			opts.configPath, err = value()
		case "--url":
			opts.url, err = value()
		case "--output":
			opts.output, err = value()
		case "--venv":
			opts.venv, err = value()
		case "--version", "-v":
			fmt.Printf("t2bootstrap v%s\n", version)
			os.Exit(0)
		case "--help", "-h":
			printHelp()
			os.Exit(0)
		default:
			return opts, fmt.Errorf("unknown argument %q", arg)
		}
		if err != nil {
			return opts, err
		}
	}
	return opts, nil
}

// applyFlagOverrides layers flags over the loaded configuration. Flags win
// over both the file and the environment.
func applyFlagOverrides(cfg *config.Config, opts options) {
	if opts.url != "" {
		cfg.Installer.URL = opts.url
	}
	if opts.output != "" {
		cfg.Installer.Output = opts.output
	}
	if opts.venv != "" {
		cfg.Venv.Dir = opts.venv
	}
}

func printHelp() {
	fmt.Println(`t2bootstrap v` + version + ` - bootstrap for the t2archinstall guided installer

Usage: t2bootstrap [OPTIONS]
       t2bootstrap guide

Options:
  --text, -t        Text mode: tool output goes straight to the terminal
  --run             Launch the installer after a successful bootstrap
  --config PATH     Config file (default: /etc/t2bootstrap.toml, then
                    ~/.t2bootstrap/config.toml)
  --url URL         Installer download URL
  --output PATH     Local filename for the installer script
  --venv PATH       Virtual environment directory
  --skip-preflight  Proceed even when required environment checks fail
  --version, -v     Show version
  --help, -h        Show this help

The default mode is an interactive TUI. Text mode is used automatically when
stdin is not a terminal. Run 't2bootstrap guide' to see the equivalent manual
commands.`)
}

// isTTY reports whether stdin is an interactive terminal.
func isTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// =============================================================================
// SHARED RUN PLUMBING
// =============================================================================

// signalContext is the root context for text mode; SIGINT/SIGTERM abort the
// current step.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// saveRunLog persists the run record. Best-effort: the record exists for
// support threads, so a write failure only earns a note on stderr.
func saveRunLog(rec *runlog.Record) string {
	path, err := rec.Save("")
	if err != nil {
		log.Printf("could not save run log: %v", err)
		return ""
	}
	return path
}

// launchInstaller hands the terminal to the fetched installer and returns its
// exit code.
func launchInstaller(ctx context.Context, cfg *config.Config) int {
	cmd := bootstrap.LaunchCommand(ctx, cfg)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "t2bootstrap: failed to launch installer: %v\n", err)
		return 1
	}
	return 0
}
