// Copyright (c) 2025 slsrepo
// SPDX-License-Identifier: MIT

// Package config provides configuration loading for t2bootstrap.
//
// The bootstrap is designed to run unconfigured on a stock Arch Linux live
// ISO, so every field has a working default. A TOML file and T2BOOTSTRAP_*
// environment variables exist for people pointing the bootstrap at a mirror
// of the installer script or at a custom virtual environment location.
//
// Precedence, lowest to highest:
//   - Built-in defaults
//   - Config file (--config PATH, else /etc/t2bootstrap.toml,
//     else ~/.t2bootstrap/config.toml)
//   - T2BOOTSTRAP_* environment variables
//   - Command-line flags (applied by the caller)
package config
