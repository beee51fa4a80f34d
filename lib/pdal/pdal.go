// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

// Package pdal provides typed access to the ingestion-pipeline tool.
// Each generated descriptor is executed with "pdal pipeline", exactly
// the way an operator would run it by hand.
package pdal

import (
	"context"
	"strings"

	"github.com/terrapoint-foundation/terrapoint/lib/tool"
)

// Tool invokes the ingestion-pipeline binary.
type Tool struct {
	// Binary is the ingestion tool, usually "pdal".
	Binary string

	// Runner bounds and reports each invocation.
	Runner tool.Runner
}

// Pipeline executes the ingestion descriptor at path, loading one
// source file into the database.
func (t Tool) Pipeline(ctx context.Context, path string) error {
	return t.Runner.Run(ctx, t.Binary, "pipeline", path)
}

// Version returns the tool's version string, used by the environment
// check.
func (t Tool) Version(ctx context.Context) (string, error) {
	output, err := t.Runner.Output(ctx, t.Binary, "--version")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}
