// Copyright (c) 2025 slsrepo
// SPDX-License-Identifier: MIT

// Package fetch downloads the installer script.
//
// The one hard requirement here comes from running on a live ISO with no
// rollback story: a failed or interrupted download must never leave a partial
// file at the destination. The body is streamed into a temp file in the
// destination directory and only renamed into place once fully written (and,
// when a checksum pin is configured, verified).
package fetch
