// Copyright (c) 2025 slsrepo
// SPDX-License-Identifier: MIT

//go:build linux

package preflight

import "golang.org/x/sys/unix"

// freeBytes returns the space available to this process on the filesystem
// containing path. Bavail (space for unprivileged users) rather than Bfree;
// the live ISO runs as root but the distinction rarely matters there and
// Bavail is the conservative choice.
func freeBytes(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}
