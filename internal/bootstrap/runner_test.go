// Copyright (c) 2025 slsrepo
// SPDX-License-Identifier: MIT

package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"
)

// recordingObserver collects sequence events for assertions.
type recordingObserver struct {
	started  []string
	finished []string
	errs     map[string]error
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{errs: make(map[string]error)}
}

func (o *recordingObserver) StepStarted(_ int, step Step) {
	o.started = append(o.started, step.Name)
}

func (o *recordingObserver) StepFinished(_ int, step Step, err error, _ time.Duration) {
	o.finished = append(o.finished, step.Name)
	o.errs[step.Name] = err
}

func okStep(name string) Step {
	return Step{Name: name, Title: name, Run: func(context.Context, *Sink) error { return nil }}
}

func failStep(name string, err error) Step {
	return Step{Name: name, Title: name, Run: func(context.Context, *Sink) error { return err }}
}

// =============================================================================
// RUNNER TESTS
// =============================================================================

func TestRunner_AllStepsInOrder(t *testing.T) {
	obs := newRecordingObserver()
	runner := NewRunner([]Step{okStep("a"), okStep("b"), okStep("c")}, nil, obs)

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{"a", "b", "c"}
	for i, name := range want {
		if obs.started[i] != name || obs.finished[i] != name {
			t.Fatalf("Order mismatch at %d: started=%v finished=%v", i, obs.started, obs.finished)
		}
	}
}

func TestRunner_FailFast(t *testing.T) {
	boom := errors.New("keyring refresh exploded")
	obs := newRecordingObserver()
	runner := NewRunner([]Step{okStep("keyring"), failStep("toolkit", boom), okStep("fetch")}, nil, obs)

	err := runner.Run(context.Background())

	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("Expected StepError, got %v", err)
	}
	if stepErr.Index != 1 || stepErr.Name != "toolkit" {
		t.Errorf("Wrong step identified: index=%d name=%s", stepErr.Index, stepErr.Name)
	}
	if !errors.Is(err, boom) {
		t.Error("StepError should wrap the underlying failure")
	}

	// The step after the failure must never have started.
	for _, name := range obs.started {
		if name == "fetch" {
			t.Error("Step after failure was started")
		}
	}
}

func TestRunner_CanceledBeforeStep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	obs := newRecordingObserver()
	runner := NewRunner([]Step{okStep("keyring")}, nil, obs)

	err := runner.Run(ctx)
	if err == nil {
		t.Fatal("Expected error from canceled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if len(obs.started) != 0 {
		t.Error("No step should start after cancellation")
	}
}

func TestRunner_CancellationDuringStep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	blocking := Step{Name: "slow", Title: "slow", Run: func(ctx context.Context, _ *Sink) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	}}

	runner := NewRunner([]Step{blocking, okStep("after")}, nil, nil)
	err := runner.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestStepError_Message(t *testing.T) {
	err := &StepError{Index: 2, Name: "fetch", Err: errors.New("dns failure")}
	want := "step 3 (fetch) failed: dns failure"
	if err.Error() != want {
		t.Errorf("Error(): got %q, want %q", err.Error(), want)
	}
}
