// Copyright (c) 2025 slsrepo
// SPDX-License-Identifier: MIT

package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/slsrepo/t2bootstrap/internal/config"
	"github.com/slsrepo/t2bootstrap/internal/fetch"
)

// Sequence builds the five bootstrap steps for the given configuration, in
// their required order.
func Sequence(cfg *config.Config) []Step {
	return []Step{
		KeyringRefresh(cfg),
		ToolkitInstall(cfg),
		ScriptFetch(cfg),
		MarkExecutable(cfg),
		VenvSetup(cfg),
	}
}

// =============================================================================
// PACKAGE MANAGER STEPS
// =============================================================================

// pacmanArgs builds the argv tail for a refresh-and-install invocation.
func pacmanArgs(cfg *config.Config, packages ...string) []string {
	args := []string{"-Sy"}
	if cfg.Pacman.NoConfirm {
		args = append(args, "--noconfirm")
	}
	return append(args, packages...)
}

// KeyringRefresh refreshes the distribution's package signing keyring. Live
// ISOs go stale fast; without this, signature checks on the packages
// installed next can fail outright.
func KeyringRefresh(cfg *config.Config) Step {
	return Step{
		Name:  "keyring",
		Title: "Refreshing package signing keyring",
		Run: func(ctx context.Context, sink *Sink) error {
			return runCommand(ctx, sink, cfg.Pacman.Bin, pacmanArgs(cfg, cfg.Pacman.KeyringPackage)...)
		},
	}
}

// ToolkitInstall refreshes the package index and installs the terminal-UI
// toolkit the fetched installer imports.
func ToolkitInstall(cfg *config.Config) Step {
	return Step{
		Name:  "toolkit",
		Title: "Installing the terminal UI toolkit",
		Run: func(ctx context.Context, sink *Sink) error {
			return runCommand(ctx, sink, cfg.Pacman.Bin, pacmanArgs(cfg, cfg.Pacman.ToolkitPackages...)...)
		},
	}
}

// =============================================================================
// SCRIPT STEPS
// =============================================================================

// ScriptFetch downloads the installer script. The download is atomic: a
// failure at any point leaves either the previous file or nothing at the
// destination, never a truncated script.
func ScriptFetch(cfg *config.Config) Step {
	return Step{
		Name:  "fetch",
		Title: "Downloading the installer script",
		Run: func(ctx context.Context, sink *Sink) error {
			sink.Line("fetching " + cfg.Installer.URL)
			opts := fetch.Options{
				Timeout:  time.Duration(cfg.DownloadTimeoutSecsOrDefault()) * time.Second,
				SHA256:   cfg.Installer.SHA256,
				Progress: sink.Progress,
			}
			if err := fetch.Script(ctx, cfg.Installer.URL, cfg.Installer.Output, opts); err != nil {
				return err
			}
			sink.Line("saved " + cfg.Installer.Output)
			return nil
		},
	}
}

// MarkExecutable sets the executable bits on the downloaded script. Kept as
// its own step so a download failure observably stops the sequence before any
// permission change is attempted.
func MarkExecutable(cfg *config.Config) Step {
	return Step{
		Name:  "chmod",
		Title: "Marking the installer executable",
		Run: func(ctx context.Context, sink *Sink) error {
			if err := os.Chmod(cfg.Installer.Output, 0755); err != nil {
				return fmt.Errorf("failed to mark %s executable: %w", cfg.Installer.Output, err)
			}
			sink.Line("chmod 755 " + cfg.Installer.Output)
			return nil
		},
	}
}

// =============================================================================
// VIRTUAL ENVIRONMENT STEP
// =============================================================================

// venvCreateArgs builds the interpreter argv tail for environment creation.
func venvCreateArgs(cfg *config.Config) []string {
	return []string{"-m", "venv", cfg.Venv.Dir}
}

// pipInstallArgs builds the pip argv tail for the UI dependency install.
func pipInstallArgs(cfg *config.Config) []string {
	return append([]string{"install"}, cfg.Venv.Packages...)
}

// VenvPip returns the path of the pip binary inside the virtual environment.
func VenvPip(cfg *config.Config) string {
	return filepath.Join(cfg.Venv.Dir, "bin", "pip")
}

// VenvPython returns the path of the interpreter inside the virtual
// environment. The completion screen launches the installer with it.
func VenvPython(cfg *config.Config) string {
	return filepath.Join(cfg.Venv.Dir, "bin", "python")
}

// VenvSetup creates the isolated Python environment and installs the UI
// dependency into it. Both commands belong to one logical step: a usable
// environment either exists completely or the sequence fails here.
func VenvSetup(cfg *config.Config) Step {
	return Step{
		Name:  "venv",
		Title: "Creating the Python virtual environment",
		Run: func(ctx context.Context, sink *Sink) error {
			if err := runCommand(ctx, sink, cfg.Venv.Python, venvCreateArgs(cfg)...); err != nil {
				return err
			}
			return runCommand(ctx, sink, VenvPip(cfg), pipInstallArgs(cfg)...)
		},
	}
}

// =============================================================================
// LAUNCH
// =============================================================================

// LaunchCommand builds the command that hands the terminal over to the
// fetched installer, run under the virtual environment's interpreter.
func LaunchCommand(ctx context.Context, cfg *config.Config) *exec.Cmd {
	cmd := exec.CommandContext(ctx, VenvPython(cfg), cfg.Installer.Output)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}
