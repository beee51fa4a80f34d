// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

// Package bulkload executes the ingestion tool once per generated
// descriptor and builds the patch indexes afterwards. Loading is
// manifest-driven: descriptors are taken from the run manifest, not
// from globbing the working directory, so stale descriptor sets are
// rejected instead of silently ingested.
package bulkload

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/terrapoint-foundation/terrapoint/lib/descriptor"
)

// Ingester runs one ingestion descriptor. pdal.Tool satisfies it in
// production; tests substitute a stub.
type Ingester interface {
	Pipeline(ctx context.Context, path string) error
}

// Database is the slice of the SQL session the loader needs for index
// creation and the patch count report.
type Database interface {
	Exec(ctx context.Context, query string, args ...any) error
	QueryInt(ctx context.Context, query string) (int64, error)
}

// Failure records one descriptor that failed to load.
type Failure struct {
	Source     string
	Descriptor string
	Err        error
}

// Report summarizes a bulk load. Per-file failures do not abort the
// batch; they are collected here and surfaced together.
type Report struct {
	Loaded   int
	Failures []Failure
	Patches  int64
}

// Summary renders the report for logs and the final error message.
func (r *Report) Summary() string {
	if len(r.Failures) == 0 {
		return fmt.Sprintf("%d files loaded, %d patches", r.Loaded, r.Patches)
	}
	lines := make([]string, len(r.Failures))
	for i, failure := range r.Failures {
		lines[i] = fmt.Sprintf("%s: %v", failure.Source, failure.Err)
	}
	return fmt.Sprintf("%d files loaded, %d failed:\n  %s", r.Loaded, len(r.Failures), strings.Join(lines, "\n  "))
}

// Loader runs the bulk load stage.
type Loader struct {
	Ingest  Ingester
	DB      Database
	Table   string
	Workers int
	Logger  *slog.Logger
}

// Load executes every descriptor in the manifest on a bounded worker
// pool, then creates the patch indexes if at least one file loaded.
// The returned report is non-nil whenever loading was attempted, even
// when an error is also returned (all files failed, or index creation
// failed).
func (l *Loader) Load(ctx context.Context, manifest *descriptor.Manifest) (*Report, error) {
	total := len(manifest.Descriptors)
	if total == 0 {
		return nil, fmt.Errorf("manifest lists no descriptors")
	}

	workers := l.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > total {
		workers = total
	}

	jobs := make(chan descriptor.Entry)
	failures := make([][]Failure, workers)
	var loaded atomic.Int64
	var done atomic.Int64

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range jobs {
				err := l.Ingest.Pipeline(ctx, entry.Descriptor)
				progress := fmt.Sprintf("%d/%d", done.Add(1), total)
				if err != nil {
					l.Logger.Error("load failed", "file", entry.Source, "progress", progress, "error", err)
					failures[w] = append(failures[w], Failure{Source: entry.Source, Descriptor: entry.Descriptor, Err: err})
					continue
				}
				loaded.Add(1)
				l.Logger.Info("file loaded", "file", entry.Source, "progress", progress)
			}
		}()
	}

	for _, entry := range manifest.Descriptors {
		jobs <- entry
	}
	close(jobs)
	wg.Wait()

	report := &Report{Loaded: int(loaded.Load())}
	for _, f := range failures {
		report.Failures = append(report.Failures, f...)
	}

	if report.Loaded == 0 {
		return report, fmt.Errorf("bulk load: every file failed:\n%s", report.Summary())
	}

	if err := l.createIndexes(ctx); err != nil {
		return report, fmt.Errorf("index creation after load: %w", err)
	}

	patches, err := l.DB.QueryInt(ctx, fmt.Sprintf("SELECT count(*) FROM %s", l.Table))
	if err != nil {
		return report, fmt.Errorf("counting patches: %w", err)
	}
	report.Patches = patches
	return report, nil
}

// createIndexes builds the spatial and Morton indexes over the patch
// table. The Morton column is what the grid-assignment stage orders
// by, so it must exist before the downstream stages run.
func (l *Loader) createIndexes(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_points_gist ON %s USING gist(geometry(points))", l.Table, l.Table),
		fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS morton bigint", l.Table),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_morton ON %s (morton)", l.Table, l.Table),
	}
	for _, statement := range statements {
		l.Logger.Debug("index statement", "sql", statement)
		if err := l.DB.Exec(ctx, statement); err != nil {
			return err
		}
	}
	return nil
}
