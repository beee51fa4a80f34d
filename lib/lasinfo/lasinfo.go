// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

// Package lasinfo provides typed access to the point-cloud metadata
// tool. The pipeline only consumes its bound-report lines; parsing
// lives in lib/extent, this package just produces the text.
package lasinfo

import (
	"context"

	"github.com/terrapoint-foundation/terrapoint/lib/tool"
)

// Tool invokes the metadata binary for one file at a time.
type Tool struct {
	// Binary is the metadata tool, usually "lasinfo".
	Binary string

	// Runner bounds and reports each invocation.
	Runner tool.Runner
}

// Info returns the metadata report for the file at path. The report is
// requested on stdout (-stdout); without it the tool writes the report
// to stderr where it would be mistaken for diagnostics.
func (t Tool) Info(ctx context.Context, path string) (string, error) {
	return t.Runner.Output(ctx, t.Binary, "-i", path, "-stdout")
}
