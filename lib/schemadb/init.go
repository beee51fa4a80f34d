// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

// Package schemadb prepares the target database: it renders the schema
// scripts with the run's spatial reference id and global offset, then
// drives the database client through drop, create, extensions, and
// schema application in a fixed order.
package schemadb

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/terrapoint-foundation/terrapoint/lib/extent"
	"github.com/terrapoint-foundation/terrapoint/lib/template"
)

var (
	//go:embed templates/extensions.sql
	defaultExtensions []byte

	//go:embed templates/patch_schema.sql
	defaultPatchSchema []byte

	//go:embed templates/meta_schema.sql
	defaultMetaSchema []byte
)

// Admin is the slice of the database client the initializer drives.
// *pgclient.Client satisfies it in production; tests substitute a
// stub.
type Admin interface {
	DropDatabase(ctx context.Context) error
	CreateDatabase(ctx context.Context) error
	ApplyScript(ctx context.Context, path string) error
}

// Initializer renders and applies the schema scripts.
type Initializer struct {
	// Admin executes scripts and manages the database lifecycle.
	Admin Admin

	// Database keys the rendered script names under WorkDir.
	Database string

	// WorkDir receives the rendered scripts.
	WorkDir string

	// SRID is the spatial reference id written into both schemas.
	SRID int

	// Overrides for the built-in script templates; nil means built-in.
	Extensions  []byte
	PatchSchema []byte
	MetaSchema  []byte

	// Logger reports per-step progress.
	Logger *slog.Logger
}

// formatOffset renders an offset component with enough digits to be
// exact for any realistic coordinate.
func formatOffset(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// Init renders both schema scripts with the global offset, then
// executes: drop database (failure ignored — it may not exist), create
// database, extensions script, patch schema, metadata schema.
//
// A create failure after a successful drop leaves the schema state
// unknown; the returned error is terminal for the run, and the caller
// must not proceed to bulk loading.
func (i *Initializer) Init(ctx context.Context, offset extent.Offset) error {
	patchScript := filepath.Join(i.WorkDir, fmt.Sprintf("%s_patch_schema.sql", i.Database))
	metaScript := filepath.Join(i.WorkDir, fmt.Sprintf("%s_meta_schema.sql", i.Database))
	extensionsScript := filepath.Join(i.WorkDir, fmt.Sprintf("%s_extensions.sql", i.Database))

	patchValues := map[string]string{
		"SRID":    strconv.Itoa(i.SRID),
		"XOFFSET": formatOffset(offset.X),
		"YOFFSET": formatOffset(offset.Y),
		"ZOFFSET": formatOffset(offset.Z),
	}
	if err := template.RenderFile(patchScript, orDefault(i.PatchSchema, defaultPatchSchema), patchValues,
		"SRID", "XOFFSET", "YOFFSET", "ZOFFSET"); err != nil {
		return fmt.Errorf("patch schema: %w", err)
	}

	metaValues := map[string]string{"SRID": strconv.Itoa(i.SRID)}
	if err := template.RenderFile(metaScript, orDefault(i.MetaSchema, defaultMetaSchema), metaValues, "SRID"); err != nil {
		return fmt.Errorf("metadata schema: %w", err)
	}

	if err := template.RenderFile(extensionsScript, orDefault(i.Extensions, defaultExtensions), nil); err != nil {
		return fmt.Errorf("extensions script: %w", err)
	}

	if err := i.Admin.DropDatabase(ctx); err != nil {
		i.Logger.Info("drop database failed (it may not exist)", "database", i.Database, "error", err)
	}
	if err := i.Admin.CreateDatabase(ctx); err != nil {
		return fmt.Errorf("FATAL: creating database %s after drop (schema state unknown): %w", i.Database, err)
	}
	for _, script := range []string{extensionsScript, patchScript, metaScript} {
		i.Logger.Info("applying script", "script", script)
		if err := i.Admin.ApplyScript(ctx, script); err != nil {
			return fmt.Errorf("applying %s: %w", script, err)
		}
	}
	return nil
}

func orDefault(override, fallback []byte) []byte {
	if override != nil {
		return override
	}
	return fallback
}
