// Copyright (c) 2025 slsrepo
// SPDX-License-Identifier: MIT

package bootstrap

import (
	"context"
	"time"
)

// Runner executes a bootstrap sequence.
type Runner struct {
	steps []Step
	sink  *Sink
	obs   Observer
}

// NewRunner creates a runner for the given steps. sink controls where step
// output goes; obs may be nil.
func NewRunner(steps []Step, sink *Sink, obs Observer) *Runner {
	if obs == nil {
		obs = nopObserver{}
	}
	if sink == nil {
		sink = &Sink{}
	}
	return &Runner{steps: steps, sink: sink, obs: obs}
}

// Run executes the steps strictly in order and stops at the first failure.
// The returned error is a *StepError identifying the failed step, or nil when
// every step succeeded. Context cancellation aborts the current step and is
// reported the same way.
func (r *Runner) Run(ctx context.Context) error {
	for i, step := range r.steps {
		if err := ctx.Err(); err != nil {
			return &StepError{Index: i, Name: step.Name, Err: err}
		}

		r.obs.StepStarted(i, step)
		start := time.Now()

		err := step.Run(ctx, r.sink)
		r.obs.StepFinished(i, step, err, time.Since(start))

		if err != nil {
			return &StepError{Index: i, Name: step.Name, Err: err}
		}
	}
	return nil
}
