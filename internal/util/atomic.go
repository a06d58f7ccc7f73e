// Copyright (c) 2025 slsrepo
// SPDX-License-Identifier: MIT

package util

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// AtomicWriteFile writes data to path without ever exposing a partial file:
//
//  1. Write to a temporary file in the same directory (same filesystem, so
//     the final rename is atomic)
//  2. fsync the data
//  3. Apply the requested permission bits to the temp file
//  4. Rename over the target
//
// On any error the temp file is removed and the previous content of path, if
// any, is left untouched.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	return AtomicWriteReader(path, bytes.NewReader(data), perm)
}

// AtomicWriteReader is AtomicWriteFile for streaming sources. The bootstrap
// uses it to land the downloaded installer script: the HTTP body is copied
// into the temp file and the destination name only ever points at a complete
// download.
func AtomicWriteReader(path string, r io.Reader, perm os.FileMode) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	f, err := os.CreateTemp(dir, ".t2bootstrap-")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := f.Name()

	success := false
	defer func() {
		if !success {
			f.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	// Data must be on disk before the rename makes it visible.
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync data to disk: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tempPath, perm); err != nil {
		return fmt.Errorf("failed to set file permissions: %w", err)
	}

	if err := os.Rename(tempPath, absPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
