// Copyright (c) 2025 slsrepo
// SPDX-License-Identifier: MIT

/*
Package main provides t2bootstrap - the guided bootstrap that prepares an
Arch Linux live environment on a T2 Mac to run the t2archinstall installer.

# Overview

t2bootstrap replaces the manual command sequence from the t2archinstall
README with a single binary. It checks the live environment, then runs the
five bootstrap steps in order, stopping at the first failure:

 1. pacman -Sy --noconfirm archlinux-keyring
 2. pacman -Sy --noconfirm python-textual
 3. download t2archinstall.py over HTTPS (atomic, never leaves a partial file)
 4. chmod 755 t2archinstall.py
 5. python -m venv ~/t2venv && ~/t2venv/bin/pip install textual

There are no retries and no rollback: a live ISO is a throwaway environment
and every underlying tool prints better diagnostics than a wrapper could.

# Command Line Options

	--text, -t          Run in text mode (child processes write straight to
	                    the terminal; default when stdin is not a TTY)
	--run               Launch the installer when the bootstrap succeeds
	--config PATH       Explicit config file (default: /etc/t2bootstrap.toml,
	                    then ~/.t2bootstrap/config.toml)
	--url URL           Override the installer download URL
	--output PATH       Override the local script filename
	--venv PATH         Override the virtual environment directory
	--skip-preflight    Run the sequence even if required checks fail
	--version, -v       Show version
	--help, -h          Show help

The `guide` subcommand prints the equivalent manual commands, rendered from
markdown.

# Exit Status

0 on full success; 1 when a preflight requirement or any bootstrap step
fails; 2 on usage or configuration errors. With --run, a successful
bootstrap exits with the installer's own status.

# Architecture

  - main.go: argument parsing, config assembly, mode dispatch
  - tui.go: bubbletea phase state machine (welcome, preflight, running,
    complete/failed) fed by runner events over a channel
  - text.go: sequential text mode with native tool output
  - guide.go: glamour-rendered manual walkthrough
*/
package main
