// Copyright (c) 2025 slsrepo
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/muesli/termenv"

	"github.com/slsrepo/t2bootstrap/internal/bootstrap"
	"github.com/slsrepo/t2bootstrap/internal/config"
	"github.com/slsrepo/t2bootstrap/internal/preflight"
	"github.com/slsrepo/t2bootstrap/internal/runlog"
)

// =============================================================================
// TEXT MODE
// =============================================================================

// textPalette colors the status markers when stdout supports it. termenv
// already honors NO_COLOR and dumb terminals via EnvColorProfile.
type textPalette struct {
	profile termenv.Profile
}

func newTextPalette() textPalette {
	return textPalette{profile: termenv.EnvColorProfile()}
}

func (p textPalette) ok(s string) string {
	return termenv.String(s).Foreground(p.profile.Color("2")).String()
}

func (p textPalette) warn(s string) string {
	return termenv.String(s).Foreground(p.profile.Color("3")).String()
}

func (p textPalette) fail(s string) string {
	return termenv.String(s).Foreground(p.profile.Color("1")).Bold().String()
}

func (p textPalette) marker(status preflight.Status) string {
	tag := "[" + status.String() + "]"
	switch status {
	case preflight.Pass:
		return p.ok(tag)
	case preflight.Warn:
		return p.warn(tag)
	default:
		return p.fail(tag)
	}
}

// textObserver prints step banners around the passthrough tool output.
type textObserver struct {
	palette textPalette
	total   int
}

func (o *textObserver) StepStarted(index int, step bootstrap.Step) {
	fmt.Printf("\n==> [%d/%d] %s\n", index+1, o.total, step.Title)
}

func (o *textObserver) StepFinished(index int, step bootstrap.Step, err error, elapsed time.Duration) {
	if err != nil {
		fmt.Printf("%s %s (%s)\n", o.palette.fail("[FAIL]"), step.Title, elapsed.Round(time.Millisecond))
		return
	}
	fmt.Printf("%s %s (%s)\n", o.palette.ok("[OK]"), step.Title, elapsed.Round(time.Millisecond))
}

// runText executes the preflight checks and the bootstrap sequence with all
// tool output going straight to the terminal. Returns the process exit code.
func runText(cfg *config.Config, opts options) int {
	palette := newTextPalette()

	fmt.Println()
	fmt.Println("================================================================================")
	fmt.Println("                              T2BOOTSTRAP v" + version)
	fmt.Println("          Preparing this live environment for the T2 Arch installer")
	fmt.Println("================================================================================")

	ctx, cancel := signalContext()
	defer cancel()

	// Preflight
	fmt.Println()
	fmt.Println("Environment checks:")
	checks := preflight.Checks(cfg, os.Geteuid())
	results := preflight.RunAll(ctx, checks)
	for _, r := range results {
		fmt.Printf("  %s %s - %s\n", palette.marker(r.Status), r.Name, r.Message)
		if r.Fix != "" {
			fmt.Printf("        -> %s\n", r.Fix)
		}
	}
	if preflight.RequiredFailed(checks, results) {
		if !opts.skipPreflight {
			fmt.Println()
			fmt.Println(palette.fail("Required checks failed; not starting. Use --skip-preflight to override."))
			return 1
		}
		fmt.Println()
		fmt.Println(palette.warn("Required checks failed; continuing because of --skip-preflight."))
	}

	// The sequence itself. Passthrough: pacman and pip own the terminal while
	// they run, so their native progress bars and errors are visible as-is.
	record := runlog.New(version)
	steps := bootstrap.Sequence(cfg)
	sink := &bootstrap.Sink{Passthrough: true}
	obs := bootstrap.MultiObserver(&textObserver{palette: palette, total: len(steps)}, record)

	err := bootstrap.NewRunner(steps, sink, obs).Run(ctx)
	record.Finish(err)
	logPath := saveRunLog(record)

	fmt.Println()
	if err != nil {
		fmt.Printf("%s %v\n", palette.fail("Bootstrap failed:"), err)
		if logPath != "" {
			fmt.Printf("Run log: %s\n", logPath)
		}
		return 1
	}

	fmt.Println(palette.ok("Bootstrap complete."))
	fmt.Println()
	fmt.Printf("The installer is ready. Start it with:\n\n")
	fmt.Printf("    %s %s\n\n", bootstrap.VenvPython(cfg), cfg.Installer.Output)
	if logPath != "" {
		fmt.Printf("Run log: %s\n", logPath)
	}

	if opts.run {
		fmt.Println("\nLaunching the installer...")
		return launchInstaller(ctx, cfg)
	}
	return 0
}
