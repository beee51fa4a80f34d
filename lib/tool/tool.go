// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

// Package tool runs the external binaries the ingestion pipeline
// depends on (metadata extraction, the ingestion tool, the database
// client, the spatial-index stages). Every invocation is bounded by a
// timeout and returns a typed *Error carrying the exit code and
// captured stderr, so callers never have to guess whether a tool
// succeeded.
package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single external invocation when the Runner
// does not specify its own. Bulk ingestion of a large file can take
// minutes; metadata extraction is near-instant. One generous default
// covers both rather than per-tool tuning.
const DefaultTimeout = 15 * time.Minute

// Error describes a failed external tool invocation.
type Error struct {
	// Tool is the binary name as invoked.
	Tool string

	// Args are the arguments passed to the tool.
	Args []string

	// ExitCode is the tool's exit code, or -1 if it did not run to
	// completion (start failure or timeout).
	ExitCode int

	// Stderr is the captured standard error output, trimmed.
	Stderr string

	// TimedOut reports whether the invocation was killed because it
	// exceeded the Runner's timeout.
	TimedOut bool

	// Err is the underlying error from the exec layer.
	Err error
}

func (e *Error) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("%s %s: timed out", e.Tool, strings.Join(e.Args, " "))
	}
	if e.Stderr != "" {
		return fmt.Sprintf("%s %s: %v (stderr: %s)", e.Tool, strings.Join(e.Args, " "), e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s %s: %v", e.Tool, strings.Join(e.Args, " "), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Runner executes external binaries with a per-invocation timeout.
// The zero value uses DefaultTimeout.
type Runner struct {
	// Timeout bounds each invocation. Zero means DefaultTimeout;
	// negative disables the bound entirely.
	Timeout time.Duration
}

// Output runs the tool and returns its stdout. Stderr is captured
// separately and included in the error on failure.
func (r Runner) Output(ctx context.Context, name string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	if err := r.run(ctx, name, args, &stdout, &stderr); err != nil {
		return "", err
	}
	return stdout.String(), nil
}

// Run runs the tool discarding stdout. Stderr is captured and included
// in the error on failure.
func (r Runner) Run(ctx context.Context, name string, args ...string) error {
	var stderr bytes.Buffer
	return r.run(ctx, name, args, nil, &stderr)
}

func (r Runner) run(ctx context.Context, name string, args []string, stdout, stderr *bytes.Buffer) error {
	timeout := r.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	command := exec.CommandContext(ctx, name, args...)
	if stdout != nil {
		command.Stdout = stdout
	}
	command.Stderr = stderr

	err := command.Run()
	if err == nil {
		return nil
	}

	toolError := &Error{
		Tool:     name,
		Args:     args,
		ExitCode: -1,
		Stderr:   strings.TrimSpace(stderr.String()),
		Err:      err,
	}
	var exitError *exec.ExitError
	if errors.As(err, &exitError) {
		toolError.ExitCode = exitError.ExitCode()
	}
	if ctx.Err() == context.DeadlineExceeded {
		toolError.TimedOut = true
	}
	return toolError
}
