// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"fmt"
)

// Status is a stage's lifecycle state.
type Status int

const (
	Pending Status = iota
	Running
	Done
	Skipped
	Failed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Done:
		return "done"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MissingDependencyError reports a stage whose declared input is
// neither computed this run nor available from persisted state. It is
// always fatal — proceeding would generate artifacts from sentinel or
// stale values.
type MissingDependencyError struct {
	// Stage is the stage that could not run.
	Stage string

	// Dependency names the missing input.
	Dependency string

	// Err is the underlying lookup failure.
	Err error
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("stage %s requires %s: %v", e.Stage, e.Dependency, e.Err)
}

func (e *MissingDependencyError) Unwrap() error { return e.Err }

// Requirement is one declared stage input. Ensure either confirms the
// input is present on the run context or populates it from persisted
// state, returning an error when neither is possible.
type Requirement struct {
	// Name describes the input in errors and logs.
	Name string

	// Ensure populates or verifies the input on the run context.
	Ensure func(*RunContext) error
}

// Predefined requirements shared by the standard stages.
var (
	RequireExtent = Requirement{
		Name:   "global extent",
		Ensure: func(rc *RunContext) error { return rc.EnsureExtent() },
	}
	RequireManifest = Requirement{
		Name:   "descriptor manifest",
		Ensure: func(rc *RunContext) error { return rc.EnsureManifest() },
	}
	RequireServiceConfig = Requirement{
		Name:   "service config",
		Ensure: func(rc *RunContext) error { return rc.EnsureServiceConfig() },
	}
)

// Stage is one independently toggleable unit of the pipeline.
type Stage struct {
	// Name identifies the stage in flags, logs and errors.
	Name string

	// Enabled gates execution; a disabled stage is Skipped without
	// touching its requirements.
	Enabled bool

	// Requires lists the run-context inputs validated before Run.
	Requires []Requirement

	// Run executes the stage.
	Run func(ctx context.Context, rc *RunContext) error

	status Status
}

// Status returns the stage's current state.
func (s *Stage) Status() Status {
	return s.status
}
