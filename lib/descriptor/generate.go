// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

// Package descriptor generates one ingestion descriptor per source
// file and the run manifest that ties the descriptor set to the run
// that produced it. Descriptors are consumed by the ingestion tool,
// never read back by the controller.
package descriptor

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/terrapoint-foundation/terrapoint/lib/template"
)

//go:embed templates/pipeline.json
var defaultTemplate []byte

// requiredTokens are the tokens the descriptor template contract
// demands. An override template may use fewer, but the mapping must
// supply them all.
var requiredTokens = []string{"LAZFILE", "SRID", "SIZE", "TABLE", "HOST", "USER", "DB"}

// Generator renders descriptors for one run.
type Generator struct {
	// Template is the descriptor template; nil means the built-in.
	Template []byte

	// WorkDir receives the rendered descriptors and the manifest.
	WorkDir string

	// Database connection parameters propagated into descriptors.
	Database string
	User     string
	Host     string

	// Table is the patch table, PatchSize the points-per-patch
	// capacity, SRID the spatial reference id.
	Table     string
	PatchSize int
	SRID      int

	// Logger reports per-file progress.
	Logger *slog.Logger
}

// Path returns the deterministic descriptor path for a source file:
// <workdir>/<basename>_<table>_pipeline.json. The table name is part
// of the key so runs against different tables can share a working
// directory.
func (g *Generator) Path(sourceFile string) string {
	base := strings.TrimSuffix(filepath.Base(sourceFile), filepath.Ext(sourceFile))
	return filepath.Join(g.WorkDir, fmt.Sprintf("%s_%s_pipeline.json", base, g.Table))
}

// Generate renders one descriptor per source file and writes the run
// manifest. Regeneration is idempotent: identical parameters produce
// byte-identical descriptors, and the previous manifest is replaced
// wholesale.
func (g *Generator) Generate(files []string) (*Manifest, error) {
	templateData := g.Template
	if templateData == nil {
		templateData = defaultTemplate
	}

	manifest := &Manifest{
		RunID:    Fingerprint(g.Database, g.User, g.Host, g.Table, g.SRID, g.PatchSize, files),
		Database: g.Database,
		Table:    g.Table,
	}

	for i, sourceFile := range files {
		absolute, err := filepath.Abs(sourceFile)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", sourceFile, err)
		}
		values := map[string]string{
			"LAZFILE": absolute,
			"SRID":    strconv.Itoa(g.SRID),
			"SIZE":    strconv.Itoa(g.PatchSize),
			"TABLE":   g.Table,
			"HOST":    g.Host,
			"USER":    g.User,
			"DB":      g.Database,
		}
		path := g.Path(sourceFile)
		if err := template.RenderFile(path, templateData, values, requiredTokens...); err != nil {
			return nil, fmt.Errorf("descriptor for %s: %w", sourceFile, err)
		}
		g.Logger.Info("descriptor generated", "file", sourceFile, "descriptor", path, "progress", fmt.Sprintf("%d/%d", i+1, len(files)))
		manifest.Descriptors = append(manifest.Descriptors, Entry{Source: absolute, Descriptor: path})
	}

	if err := manifest.Write(g.WorkDir); err != nil {
		// Descriptors without a manifest would poison later load-only
		// runs; remove what this run wrote.
		for _, entry := range manifest.Descriptors {
			_ = os.Remove(entry.Descriptor)
		}
		return nil, err
	}
	return manifest, nil
}
