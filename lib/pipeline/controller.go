// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Controller executes stages in the order given, resolving each
// stage's declared requirements against the run context first. A
// failed stage halts the run; stages after it stay Pending.
type Controller struct {
	Stages []*Stage
	Logger *slog.Logger
}

// Run drives every stage to a terminal state or stops at the first
// failure. Stage state transitions: disabled stages go
// Pending→Skipped; enabled stages go Pending→Running→Done, or
// Pending→Failed when a requirement is missing, or
// Running→Failed when execution fails.
func (c *Controller) Run(ctx context.Context, rc *RunContext) error {
	for _, stage := range c.Stages {
		if !stage.Enabled {
			stage.status = Skipped
			c.Logger.Info("stage skipped", "stage", stage.Name)
			continue
		}

		for _, requirement := range stage.Requires {
			if err := requirement.Ensure(rc); err != nil {
				stage.status = Failed
				return &MissingDependencyError{Stage: stage.Name, Dependency: requirement.Name, Err: err}
			}
		}

		stage.status = Running
		c.Logger.Info("stage started", "stage", stage.Name)
		startTime := time.Now()

		if err := stage.Run(ctx, rc); err != nil {
			stage.status = Failed
			c.Logger.Error("stage failed", "stage", stage.Name, "duration", time.Since(startTime).Round(time.Millisecond), "error", err)
			return fmt.Errorf("stage %s: %w", stage.Name, err)
		}

		stage.status = Done
		c.Logger.Info("stage done", "stage", stage.Name, "duration", time.Since(startTime).Round(time.Millisecond))
	}
	return nil
}
