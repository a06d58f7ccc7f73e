// Copyright (c) 2025 slsrepo
// SPDX-License-Identifier: MIT

package runlog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/slsrepo/t2bootstrap/internal/bootstrap"
)

// =============================================================================
// RECORD TYPES
// =============================================================================

// StepRecord is the outcome of one executed step. Steps after a failure
// never execute and therefore never appear.
type StepRecord struct {
	Name       string `json:"name"`
	Title      string `json:"title"`
	Status     string `json:"status"` // "ok" or "failed"
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// Record describes a complete bootstrap run.
type Record struct {
	ID         string       `json:"id"`
	Version    string       `json:"version"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Success    bool         `json:"success"`
	Failure    string       `json:"failure,omitempty"`
	Steps      []StepRecord `json:"steps"`

	mu sync.Mutex
}

// New starts a record for a run of the given tool version.
func New(version string) *Record {
	return &Record{
		ID:        uuid.NewString(),
		Version:   version,
		StartedAt: time.Now().UTC(),
	}
}

// =============================================================================
// OBSERVER IMPLEMENTATION
// =============================================================================

// Record implements bootstrap.Observer so it can ride along with the UI.
var _ bootstrap.Observer = (*Record)(nil)

// StepStarted is part of bootstrap.Observer; starts are implied by finishes.
func (r *Record) StepStarted(int, bootstrap.Step) {}

// StepFinished appends the step outcome.
func (r *Record) StepFinished(_ int, step bootstrap.Step, err error, elapsed time.Duration) {
	rec := StepRecord{
		Name:       step.Name,
		Title:      step.Title,
		Status:     "ok",
		DurationMS: elapsed.Milliseconds(),
	}
	if err != nil {
		rec.Status = "failed"
		rec.Error = err.Error()
	}

	r.mu.Lock()
	r.Steps = append(r.Steps, rec)
	r.mu.Unlock()
}

// Finish stamps the end of the run. err is the sequence result.
func (r *Record) Finish(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FinishedAt = time.Now().UTC()
	r.Success = err == nil
	if err != nil {
		r.Failure = err.Error()
	}
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// DefaultDir returns the standard run log directory.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".t2bootstrap", "runs"), nil
}

// Save writes the record to dir as <id>.json and returns the path. An empty
// dir selects DefaultDir.
func (r *Record) Save(dir string) (string, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	r.mu.Lock()
	data, err := json.MarshalIndent(r, "", "  ")
	r.mu.Unlock()
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, r.ID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}
