// Copyright (c) 2025 slsrepo
// SPDX-License-Identifier: MIT

// Package util provides small filesystem and string helpers shared by the
// bootstrap packages.
//
// The atomic write helper exists for one reason: a bootstrap that dies halfway
// through writing the installer script must never leave a truncated file at
// the destination path. Everything here is dependency-light on purpose.
package util
