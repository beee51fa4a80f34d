// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

package extent

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// RecordFile is the name of the persisted reduction under the working
// directory. Stages that need the global extent in a run where
// extraction was skipped load it from here.
const RecordFile = "extent.yaml"

// Record is the persisted form of a reduction, written by the
// extraction stage and consumed by schema initialization and service
// config generation in later runs.
type Record struct {
	Extent      Extent    `yaml:"extent"`
	Offset      Offset    `yaml:"offset"`
	SRID        int       `yaml:"srid"`
	Files       int       `yaml:"files"`
	GeneratedAt time.Time `yaml:"generated_at"`
}

// WriteRecord persists the reduction under the working directory,
// replacing any previous record.
func WriteRecord(workDir string, reduction Reduction, srid int) error {
	record := Record{
		Extent:      reduction.Extent,
		Offset:      reduction.Offset,
		SRID:        srid,
		Files:       reduction.Files,
		GeneratedAt: time.Now().UTC(),
	}
	data, err := yaml.Marshal(&record)
	if err != nil {
		return fmt.Errorf("encoding extent record: %w", err)
	}
	path := filepath.Join(workDir, RecordFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing extent record %s: %w", path, err)
	}
	return nil
}

// LoadRecord loads a previously persisted reduction from the working
// directory. Returns fs.ErrNotExist (wrapped) when no record exists,
// so callers can distinguish "never extracted" from a corrupt record.
// A record whose extent fails validation is rejected — a sentinel or
// inverted extent must never flow into generated artifacts.
func LoadRecord(workDir string) (*Record, error) {
	path := filepath.Join(workDir, RecordFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no persisted extent at %s: %w", path, err)
		}
		return nil, fmt.Errorf("reading extent record %s: %w", path, err)
	}
	var record Record
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parsing extent record %s: %w", path, err)
	}
	if err := record.Extent.Validate(); err != nil {
		return nil, fmt.Errorf("extent record %s: %w", path, err)
	}
	return &record, nil
}
