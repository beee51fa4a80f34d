// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipeline sequences the ingestion stages. Stages are
// independently toggleable but run in a fixed order, and every stage
// declares the run-context data it requires; a requirement satisfied
// neither by an earlier stage this run nor by state persisted under
// the working directory fails the run before the stage executes,
// instead of letting sentinel values leak into generated artifacts.
package pipeline

import (
	"fmt"
	"os"

	"github.com/terrapoint-foundation/terrapoint/lib/bulkload"
	"github.com/terrapoint-foundation/terrapoint/lib/descriptor"
	"github.com/terrapoint-foundation/terrapoint/lib/extent"
	"github.com/terrapoint-foundation/terrapoint/lib/serviceconfig"
)

// Params are the read-only run parameters, supplied once at
// invocation.
type Params struct {
	Database  string
	User      string
	Host      string
	Table     string
	SRID      int
	PatchSize int

	// Workers bounds the per-file worker pools in extraction and
	// bulk load.
	Workers int

	// WorkDir owns every generated artifact for the run.
	WorkDir string

	// Files are the source point-cloud files.
	Files []string

	// AllowStale permits bulk loading from a manifest generated by a
	// different run.
	AllowStale bool
}

// RunID fingerprints every parameter that affects descriptor content.
func (p Params) RunID() string {
	return descriptor.Fingerprint(p.Database, p.User, p.Host, p.Table, p.SRID, p.PatchSize, p.Files)
}

// RunContext carries state across stages. Fields start unset and are
// populated by the stage that computes them; requirements fill them
// from persisted state when the computing stage was skipped this run.
type RunContext struct {
	Params Params

	// Extent is the global reduction, set by the extraction stage or
	// loaded from the working directory.
	Extent *extent.Record

	// Manifest is the descriptor set, set by the descriptor stage or
	// loaded from the working directory.
	Manifest *descriptor.Manifest

	// ServiceConfigPath is the rendered service config consumed by
	// the downstream spatial-index stages.
	ServiceConfigPath string

	// LoadReport is the bulk load batch result, for the final
	// summary and exit code.
	LoadReport *bulkload.Report
}

// EnsureExtent satisfies the global-extent requirement, loading the
// persisted record when extraction did not run this time.
func (rc *RunContext) EnsureExtent() error {
	if rc.Extent != nil {
		return nil
	}
	record, err := extent.LoadRecord(rc.Params.WorkDir)
	if err != nil {
		return err
	}
	rc.Extent = record
	return nil
}

// EnsureManifest satisfies the descriptor-manifest requirement. A
// manifest loaded from disk is verified against the current run's
// fingerprint unless AllowStale is set.
func (rc *RunContext) EnsureManifest() error {
	if rc.Manifest != nil {
		return nil
	}
	manifest, err := descriptor.LoadManifest(rc.Params.WorkDir)
	if err != nil {
		return err
	}
	if !rc.Params.AllowStale {
		if err := manifest.Verify(rc.Params.RunID()); err != nil {
			return err
		}
	}
	rc.Manifest = manifest
	return nil
}

// EnsureServiceConfig satisfies the service-config requirement for the
// downstream spatial-index stages, falling back to the artifact a
// previous run left under the working directory.
func (rc *RunContext) EnsureServiceConfig() error {
	if rc.ServiceConfigPath != "" {
		return nil
	}
	path := serviceconfig.Path(rc.Params.WorkDir, rc.Params.Database)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("no service config at %s: %w", path, err)
	}
	rc.ServiceConfigPath = path
	return nil
}
