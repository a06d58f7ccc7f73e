// Copyright (c) 2025 slsrepo
// SPDX-License-Identifier: MIT

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// TruncateWidth truncates s to a maximum display width, appending "..." when
// anything was cut. Width is measured in terminal cells, so double-width
// characters count as 2. Used by the live output pane so long pacman/pip
// lines never wrap and break the layout.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// SanitizeLine strips carriage returns and trailing whitespace from a line of
// subprocess output. pacman redraws its progress bars with bare CRs; keeping
// them would corrupt the TUI log pane.
func SanitizeLine(s string) string {
	if i := strings.LastIndexByte(s, '\r'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimRight(s, " \t")
}
