// Copyright (c) 2025 slsrepo
// SPDX-License-Identifier: MIT

package bootstrap

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// STEP
// =============================================================================

// Step is one operation in the bootstrap sequence.
type Step struct {
	// Name is a short stable identifier ("keyring", "fetch", ...), used in
	// errors and the run log.
	Name string

	// Title is the human-readable description shown in the UI.
	Title string

	// Run performs the step. It must honor ctx cancellation and return the
	// underlying tool's error unmodified (wrapped, not replaced).
	Run func(ctx context.Context, sink *Sink) error
}

// Sink is where a running step sends its output.
//
// In passthrough mode child processes inherit the real terminal, so the
// operator sees pacman and pip exactly as if they had typed the commands
// themselves. In streaming mode output is delivered line by line to OutputFn
// for the TUI log pane.
type Sink struct {
	// Passthrough attaches child processes directly to this process's
	// stdout/stderr instead of capturing their output.
	Passthrough bool

	// OutputFn receives sanitized output lines in streaming mode. May be nil.
	OutputFn func(line string)

	// ProgressFn receives download progress for steps that know their total
	// size. total is -1 when unknown. May be nil.
	ProgressFn func(written, total int64)
}

// Line delivers a line to OutputFn if one is set.
func (s *Sink) Line(line string) {
	if s != nil && s.OutputFn != nil {
		s.OutputFn(line)
	}
}

// Progress delivers download progress if a callback is set.
func (s *Sink) Progress(written, total int64) {
	if s != nil && s.ProgressFn != nil {
		s.ProgressFn(written, total)
	}
}

// =============================================================================
// STEP ERROR
// =============================================================================

// StepError identifies which step of the sequence failed.
type StepError struct {
	Index int    // zero-based position in the sequence
	Name  string // Step.Name
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s) failed: %v", e.Index+1, e.Name, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// =============================================================================
// OBSERVER
// =============================================================================

// Observer receives sequence progress events. All methods are called from the
// goroutine running the sequence. Implementations must not block for long;
// the TUI forwards events over a channel.
type Observer interface {
	StepStarted(index int, step Step)
	StepFinished(index int, step Step, err error, elapsed time.Duration)
}

// nopObserver makes a nil observer safe to use.
type nopObserver struct{}

func (nopObserver) StepStarted(int, Step)                        {}
func (nopObserver) StepFinished(int, Step, error, time.Duration) {}

// MultiObserver fans events out to several observers, e.g. the UI and the
// run log.
func MultiObserver(obs ...Observer) Observer {
	return multiObserver(obs)
}

type multiObserver []Observer

func (m multiObserver) StepStarted(index int, step Step) {
	for _, o := range m {
		o.StepStarted(index, step)
	}
}

func (m multiObserver) StepFinished(index int, step Step, err error, elapsed time.Duration) {
	for _, o := range m {
		o.StepFinished(index, step, err, elapsed)
	}
}
