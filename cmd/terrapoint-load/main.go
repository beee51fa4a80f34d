// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

// Terrapoint-load is the staged ingestion controller. It reduces the
// spatial extents of a set of point-cloud files into one global
// bounding volume and a numerically stable offset, generates the
// per-file ingestion descriptors and service configuration artifacts
// from that reduction, and sequences the toggleable pipeline stages:
// extract, descriptors, schema, load, serviceconfig, morton,
// hierarchy.
//
// Any subset of stages may run; a stage whose inputs were computed by
// an earlier run finds them persisted under the working directory, and
// a stage whose inputs exist nowhere fails before touching the
// database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/terrapoint-foundation/terrapoint/lib/config"
	"github.com/terrapoint-foundation/terrapoint/lib/extent"
	"github.com/terrapoint-foundation/terrapoint/lib/pipeline"
	"github.com/terrapoint-foundation/terrapoint/lib/process"
	"github.com/terrapoint-foundation/terrapoint/lib/template"
	"github.com/terrapoint-foundation/terrapoint/lib/tool"
	"github.com/terrapoint-foundation/terrapoint/lib/version"
)

// usageError distinguishes bad invocations (exit 2, no side effects)
// from failures during the run.
type usageError struct{ message string }

func (e *usageError) Error() string { return e.message }

func main() {
	if err := run(); err != nil {
		process.Fatal(err, exitCode(err))
	}
}

// exitCode maps the error taxonomy onto the shared exit-code
// convention: usage 2, dependency/config 3, external tool 4.
func exitCode(err error) int {
	var usage *usageError
	var missingDependency *pipeline.MissingDependencyError
	var missingValue *template.MissingValueError
	var toolError *tool.Error
	var parseError *extent.ParseError
	var partialLoad *partialLoadError
	switch {
	case errors.As(err, &usage):
		return process.ExitUsage
	case errors.As(err, &missingDependency), errors.As(err, &missingValue):
		return process.ExitDependency
	case errors.As(err, &toolError), errors.As(err, &parseError), errors.As(err, &partialLoad):
		return process.ExitTool
	}
	return process.ExitDependency
}

func run() error {
	var (
		database   string
		user       string
		host       string
		table      string
		files      string
		srid       int
		patchSize  int
		workers    int
		workDir    string
		configPath string
		netIface   string
		skipSpec   string
		allowStale bool
		verbose    bool
		showVer    bool
	)

	flag.StringVar(&database, "db", "", "target database name (required)")
	flag.StringVar(&user, "user", "", "database user (required)")
	flag.StringVar(&host, "host", "", "database host (required)")
	flag.StringVar(&table, "table", "", "patch table name (required)")
	flag.StringVar(&files, "files", "", "comma-separated point-cloud files or globs (required)")
	flag.IntVar(&patchSize, "size", 0, "points per patch (required)")
	flag.IntVar(&srid, "srid", 4326, "spatial reference id")
	flag.IntVar(&workers, "j", 1, "per-file worker pool size for extraction and load")
	flag.StringVar(&workDir, "wdir", ".", "working directory for generated artifacts")
	flag.StringVar(&configPath, "config", "", "yaml config file (or TERRAPOINT_CONFIG)")
	flag.StringVar(&netIface, "interface", "", "network interface for service configs (overrides config)")
	flag.StringVar(&skipSpec, "skip", "", "comma-separated stages to skip: "+strings.Join(stageNames, ","))
	flag.BoolVar(&allowStale, "allow-stale", false, "load descriptors from a manifest generated by a different run")
	flag.BoolVar(&verbose, "verbose", false, "debug logging")
	flag.BoolVar(&showVer, "version", false, "print version information and exit")
	flag.Parse()

	if showVer {
		fmt.Println(version.Info())
		return nil
	}

	var missing []string
	for _, required := range []struct {
		name, value string
	}{
		{"db", database}, {"user", user}, {"host", host},
		{"table", table}, {"files", files},
	} {
		if required.value == "" {
			missing = append(missing, "-"+required.name)
		}
	}
	if patchSize <= 0 {
		missing = append(missing, "-size")
	}
	if len(missing) > 0 {
		flag.Usage()
		return &usageError{message: fmt.Sprintf("missing required flags: %s", strings.Join(missing, " "))}
	}

	disabled, err := parseSkip(skipSpec)
	if err != nil {
		flag.Usage()
		return err
	}

	fileList, err := expandFiles(files)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if netIface != "" {
		cfg.Network.Interface = netIface
	}
	if allowStale {
		cfg.AllowStale = true
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("creating working directory %s: %w", workDir, err)
	}

	params := pipeline.Params{
		Database:   database,
		User:       user,
		Host:       host,
		Table:      table,
		SRID:       srid,
		PatchSize:  patchSize,
		Workers:    workers,
		WorkDir:    workDir,
		Files:      fileList,
		AllowStale: cfg.AllowStale,
	}

	ctx := context.Background()
	return execute(ctx, params, cfg, disabled, logger)
}

// parseSkip validates the -skip list against the known stage names.
func parseSkip(spec string) (map[string]bool, error) {
	disabled := make(map[string]bool)
	if spec == "" {
		return disabled, nil
	}
	for _, name := range strings.Split(spec, ",") {
		name = strings.TrimSpace(name)
		if !knownStage[name] {
			return nil, &usageError{message: fmt.Sprintf("unknown stage %q in -skip (stages: %s)", name, strings.Join(stageNames, ","))}
		}
		disabled[name] = true
	}
	return disabled, nil
}

// expandFiles splits the -files value and expands glob patterns. The
// result is sorted for a stable run fingerprint.
func expandFiles(spec string) ([]string, error) {
	var fileList []string
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		matches, err := filepath.Glob(entry)
		if err != nil {
			return nil, &usageError{message: fmt.Sprintf("bad file pattern %q: %v", entry, err)}
		}
		if matches == nil {
			return nil, &usageError{message: fmt.Sprintf("no files match %q", entry)}
		}
		fileList = append(fileList, matches...)
	}
	if len(fileList) == 0 {
		return nil, &usageError{message: "no input files"}
	}
	sort.Strings(fileList)
	return fileList, nil
}
