// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/terrapoint-foundation/terrapoint/lib/bulkload"
	"github.com/terrapoint-foundation/terrapoint/lib/config"
	"github.com/terrapoint-foundation/terrapoint/lib/descriptor"
	"github.com/terrapoint-foundation/terrapoint/lib/extent"
	"github.com/terrapoint-foundation/terrapoint/lib/lasinfo"
	"github.com/terrapoint-foundation/terrapoint/lib/pdal"
	"github.com/terrapoint-foundation/terrapoint/lib/pgclient"
	"github.com/terrapoint-foundation/terrapoint/lib/pipeline"
	"github.com/terrapoint-foundation/terrapoint/lib/schemadb"
	"github.com/terrapoint-foundation/terrapoint/lib/serviceconfig"
	"github.com/terrapoint-foundation/terrapoint/lib/tool"
)

// stageNames is the fixed execution order.
var stageNames = []string{
	"extract", "descriptors", "schema", "load", "serviceconfig", "morton", "hierarchy",
}

// partialLoadError surfaces a bulk load that completed with per-file
// failures: the run finished, but the operator must know which files
// never made it into the database.
type partialLoadError struct {
	report *bulkload.Report
}

func (e *partialLoadError) Error() string {
	return "bulk load completed with failures:\n" + e.report.Summary()
}

var knownStage = func() map[string]bool {
	known := make(map[string]bool, len(stageNames))
	for _, name := range stageNames {
		known[name] = true
	}
	return known
}()

// loadTemplate reads an override template, or returns nil for the
// built-in default.
func loadTemplate(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template override %s: %w", path, err)
	}
	return data, nil
}

// execute assembles the stage set and runs the controller.
func execute(ctx context.Context, params pipeline.Params, cfg *config.Config, disabled map[string]bool, logger *slog.Logger) error {
	timeout, err := cfg.Timeout()
	if err != nil {
		return err
	}
	runner := tool.Runner{Timeout: timeout}

	metadataTool := lasinfo.Tool{Binary: cfg.Tools.Metadata, Runner: runner}
	ingestTool := pdal.Tool{Binary: cfg.Tools.Ingest, Runner: runner}
	client := &pgclient.Client{
		Host:     params.Host,
		User:     params.User,
		Database: params.Database,
		Psql:     cfg.Tools.Psql,
		CreateDB: cfg.Tools.CreateDB,
		DropDB:   cfg.Tools.DropDB,
		Runner:   runner,
	}

	descriptorTemplate, err := loadTemplate(cfg.Templates.Descriptor)
	if err != nil {
		return err
	}
	patchSchema, err := loadTemplate(cfg.Templates.PatchSchema)
	if err != nil {
		return err
	}
	metaSchema, err := loadTemplate(cfg.Templates.MetaSchema)
	if err != nil {
		return err
	}
	extensions, err := loadTemplate(cfg.Templates.Extensions)
	if err != nil {
		return err
	}
	processTemplate, err := loadTemplate(cfg.Templates.ProcessConfig)
	if err != nil {
		return err
	}
	serviceTemplate, err := loadTemplate(cfg.Templates.ServiceConfig)
	if err != nil {
		return err
	}

	// The session dials lazily; opening it here costs nothing when the
	// load stage is skipped.
	session, err := pgclient.Open(params.Host, params.User, params.Database)
	if err != nil {
		return err
	}
	defer session.Close()

	stages := []*pipeline.Stage{
		{
			Name:    "extract",
			Enabled: !disabled["extract"],
			Run: func(ctx context.Context, rc *pipeline.RunContext) error {
				reduction, err := extent.Reduce(ctx, rc.Params.Files, metadataTool.Info, rc.Params.Workers, logger)
				if err != nil {
					return err
				}
				logger.Info("global extent reduced",
					"extent", reduction.Extent.String(),
					"offset", fmt.Sprintf("(%g %g %g)", reduction.Offset.X, reduction.Offset.Y, reduction.Offset.Z),
					"files", reduction.Files)
				if err := extent.WriteRecord(rc.Params.WorkDir, reduction, rc.Params.SRID); err != nil {
					return err
				}
				rc.Extent = &extent.Record{
					Extent: reduction.Extent,
					Offset: reduction.Offset,
					SRID:   rc.Params.SRID,
					Files:  reduction.Files,
				}
				return nil
			},
		},
		{
			Name:    "descriptors",
			Enabled: !disabled["descriptors"],
			Run: func(ctx context.Context, rc *pipeline.RunContext) error {
				generator := &descriptor.Generator{
					Template:  descriptorTemplate,
					WorkDir:   rc.Params.WorkDir,
					Database:  rc.Params.Database,
					User:      rc.Params.User,
					Host:      rc.Params.Host,
					Table:     rc.Params.Table,
					PatchSize: rc.Params.PatchSize,
					SRID:      rc.Params.SRID,
					Logger:    logger,
				}
				manifest, err := generator.Generate(rc.Params.Files)
				if err != nil {
					return err
				}
				rc.Manifest = manifest
				return nil
			},
		},
		{
			Name:     "schema",
			Enabled:  !disabled["schema"],
			Requires: []pipeline.Requirement{pipeline.RequireExtent},
			Run: func(ctx context.Context, rc *pipeline.RunContext) error {
				initializer := &schemadb.Initializer{
					Admin:       client,
					Database:    rc.Params.Database,
					WorkDir:     rc.Params.WorkDir,
					SRID:        rc.Params.SRID,
					Extensions:  extensions,
					PatchSchema: patchSchema,
					MetaSchema:  metaSchema,
					Logger:      logger,
				}
				return initializer.Init(ctx, rc.Extent.Offset)
			},
		},
		{
			Name:     "load",
			Enabled:  !disabled["load"],
			Requires: []pipeline.Requirement{pipeline.RequireManifest},
			Run: func(ctx context.Context, rc *pipeline.RunContext) error {
				loader := &bulkload.Loader{
					Ingest:  ingestTool,
					DB:      session,
					Table:   rc.Params.Table,
					Workers: rc.Params.Workers,
					Logger:  logger,
				}
				report, err := loader.Load(ctx, rc.Manifest)
				rc.LoadReport = report
				return err
			},
		},
		{
			Name:     "serviceconfig",
			Enabled:  !disabled["serviceconfig"],
			Requires: []pipeline.Requirement{pipeline.RequireExtent},
			Run: func(ctx context.Context, rc *pipeline.RunContext) error {
				generator := &serviceconfig.Generator{
					WorkDir:         rc.Params.WorkDir,
					Interface:       cfg.Network.Interface,
					Database:        rc.Params.Database,
					User:            rc.Params.User,
					Host:            rc.Params.Host,
					Table:           rc.Params.Table,
					ProcessTemplate: processTemplate,
					ServiceTemplate: serviceTemplate,
				}
				path, err := generator.Generate(rc.Extent.Extent)
				if err != nil {
					return err
				}
				logger.Info("service configs generated", "service", path, "process", serviceconfig.ProcessPath(rc.Params.WorkDir, rc.Params.Database))
				rc.ServiceConfigPath = path
				return nil
			},
		},
		{
			Name:     "morton",
			Enabled:  !disabled["morton"],
			Requires: []pipeline.Requirement{pipeline.RequireServiceConfig},
			Run: func(ctx context.Context, rc *pipeline.RunContext) error {
				return runner.Run(ctx, cfg.Tools.Morton, rc.ServiceConfigPath)
			},
		},
		{
			Name:     "hierarchy",
			Enabled:  !disabled["hierarchy"],
			Requires: []pipeline.Requirement{pipeline.RequireServiceConfig},
			Run: func(ctx context.Context, rc *pipeline.RunContext) error {
				return runner.Run(ctx, cfg.Tools.Hierarchy, rc.ServiceConfigPath, rc.Params.WorkDir)
			},
		},
	}

	controller := &pipeline.Controller{Stages: stages, Logger: logger}
	rc := &pipeline.RunContext{Params: params}
	if err := controller.Run(ctx, rc); err != nil {
		return err
	}

	if rc.LoadReport != nil {
		logger.Info("bulk load summary", "result", rc.LoadReport.Summary())
		if len(rc.LoadReport.Failures) > 0 {
			return &partialLoadError{report: rc.LoadReport}
		}
	}
	return nil
}
