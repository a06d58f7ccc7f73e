// Copyright (c) 2025 slsrepo
// SPDX-License-Identifier: MIT

// Package bootstrap implements the installation bootstrap sequence.
//
// The sequence prepares a bare Arch Linux live environment to run the
// t2archinstall guided installer, in this exact order:
//
//  1. Refresh the archlinux-keyring package
//  2. Refresh the package index and install the terminal-UI toolkit
//  3. Download the installer script over HTTPS
//  4. Mark the script executable
//  5. Create a Python virtual environment and install the UI toolkit into it
//
// Execution is strictly sequential and fail-fast: the first failing step
// aborts the run, later steps never execute, and there are no retries and no
// rollback. This is a one-shot tool for a throwaway live environment; the
// right response to any failure is to show the operator the underlying tool's
// own diagnostics and exit non-zero.
package bootstrap
