// Copyright (c) 2025 slsrepo
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// guideMarkdown is the manual equivalent of what the bootstrap automates,
// matching the t2archinstall README. Kept as markdown so the rendered and
// copy-pasteable forms stay one and the same text.
const guideMarkdown = `# Manual bootstrap

t2bootstrap automates the following commands. On an Arch Linux live ISO
(from wiki.t2linux.org), as root:

` + "```sh" + `
pacman -Sy archlinux-keyring
pacman -Sy python-textual
curl -o t2archinstall.py https://github.com/slsrepo/t2archinstall/raw/refs/heads/main/t2archinstall.py
chmod +x t2archinstall.py
python -m venv ~/t2venv
~/t2venv/bin/pip install textual
` + "```" + `

Then start the installer:

` + "```sh" + `
~/t2venv/bin/python t2archinstall.py
` + "```" + `

Every command must succeed before the next one runs; stop at the first
error. Re-running the whole sequence is safe.

## Notes

- The keyring refresh comes first: live ISOs go stale, and without current
  signing keys the toolkit install can fail signature verification.
- Wi-Fi on the live ISO: use ` + "`iwctl`" + ` before starting.
- The download overwrites any existing ` + "`t2archinstall.py`" + ` atomically.
`

// printGuide renders the manual walkthrough for the terminal, falling back
// to the raw markdown when rendering is unavailable.
func printGuide() {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		fmt.Print(guideMarkdown)
		return
	}

	out, err := renderer.Render(guideMarkdown)
	if err != nil {
		fmt.Print(guideMarkdown)
		return
	}
	fmt.Print(out)
}
