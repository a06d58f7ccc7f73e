// Copyright (c) 2025 slsrepo
// SPDX-License-Identifier: MIT

// Package preflight checks the live environment before the bootstrap
// sequence starts.
//
// Required checks (root, pacman, python) abort the run when they fail:
// without them step 1 would just die with a less helpful error. Advisory
// checks (live ISO detection, EFI boot mode, network, disk space, hardware
// model) only warn — the sequence itself stays fail-fast and each step
// surfaces its own tool's diagnostics, so preflight never needs to predict
// every possible failure.
package preflight
