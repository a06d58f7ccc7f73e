// Copyright (c) 2025 slsrepo
// SPDX-License-Identifier: MIT

//go:build !linux

package preflight

import "errors"

// freeBytes is only meaningful on the Linux live ISO; elsewhere the disk
// check degrades to a warning.
func freeBytes(string) (uint64, error) {
	return 0, errors.New("disk space detection unsupported on this platform")
}
