// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRunner(t *testing.T) {
	t.Parallel()

	t.Run("output captured", func(t *testing.T) {
		t.Parallel()

		output, err := Runner{}.Output(context.Background(), "sh", "-c", "echo hello")
		if err != nil {
			t.Fatalf("Output: %v", err)
		}
		if strings.TrimSpace(output) != "hello" {
			t.Errorf("output = %q, want hello", output)
		}
	})

	t.Run("exit code and stderr in error", func(t *testing.T) {
		t.Parallel()

		err := Runner{}.Run(context.Background(), "sh", "-c", "echo broken >&2; exit 3")
		var toolError *Error
		if !errors.As(err, &toolError) {
			t.Fatalf("error = %v, want *Error", err)
		}
		if toolError.ExitCode != 3 {
			t.Errorf("exit code = %d, want 3", toolError.ExitCode)
		}
		if toolError.Stderr != "broken" {
			t.Errorf("stderr = %q, want broken", toolError.Stderr)
		}
		if toolError.TimedOut {
			t.Error("TimedOut set on a plain failure")
		}
	})

	t.Run("missing binary", func(t *testing.T) {
		t.Parallel()

		err := Runner{}.Run(context.Background(), "terrapoint-no-such-binary")
		var toolError *Error
		if !errors.As(err, &toolError) {
			t.Fatalf("error = %v, want *Error", err)
		}
		if toolError.ExitCode != -1 {
			t.Errorf("exit code = %d, want -1 for start failure", toolError.ExitCode)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()

		err := Runner{Timeout: 100 * time.Millisecond}.Run(context.Background(), "sh", "-c", "sleep 5")
		var toolError *Error
		if !errors.As(err, &toolError) {
			t.Fatalf("error = %v, want *Error", err)
		}
		if !toolError.TimedOut {
			t.Errorf("TimedOut not set: %v", toolError)
		}
	})
}
