// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

package descriptor

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the manifest's name under the working directory.
const ManifestFile = "manifest.yaml"

// Entry ties one source file to its rendered descriptor.
type Entry struct {
	Source     string `yaml:"source"`
	Descriptor string `yaml:"descriptor"`
}

// Manifest records which descriptors a run generated and the
// fingerprint of the parameters that produced them. The bulk loader
// loads descriptors through the manifest rather than globbing the
// working directory, so a load-only run cannot silently pick up
// descriptors left behind by an unrelated run.
type Manifest struct {
	RunID       string    `yaml:"run_id"`
	GeneratedAt time.Time `yaml:"generated_at"`
	Database    string    `yaml:"database"`
	Table       string    `yaml:"table"`
	Descriptors []Entry   `yaml:"descriptors"`
}

// Fingerprint derives the run id from every parameter that affects
// descriptor content, plus the file list. Identical parameters yield
// an identical id, so regenerating descriptors does not invalidate a
// manifest.
func Fingerprint(database, user, host, table string, srid, patchSize int, files []string) string {
	hasher := blake3.New()
	write := func(field string) {
		hasher.Write([]byte(field))
		hasher.Write([]byte{0})
	}
	write(database)
	write(user)
	write(host)
	write(table)
	write(strconv.Itoa(srid))
	write(strconv.Itoa(patchSize))
	for _, file := range files {
		write(file)
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

// Write persists the manifest under the working directory, replacing
// any previous manifest. GeneratedAt is stamped here.
func (m *Manifest) Write(workDir string) error {
	m.GeneratedAt = time.Now().UTC()
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	path := filepath.Join(workDir, ManifestFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}

// LoadManifest loads the manifest from the working directory. Returns
// a wrapped fs.ErrNotExist when none exists.
func LoadManifest(workDir string) (*Manifest, error) {
	path := filepath.Join(workDir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no descriptor manifest at %s: %w", path, err)
		}
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &manifest, nil
}

// Verify checks the manifest against the current run's fingerprint.
// A mismatch means the descriptors on disk were generated with
// different parameters or a different file list; loading them would
// ingest stale data.
func (m *Manifest) Verify(runID string) error {
	if m.RunID != runID {
		return fmt.Errorf("descriptor manifest was generated by a different run (manifest %.12s..., current %.12s...); regenerate descriptors or pass -allow-stale",
			m.RunID, runID)
	}
	return nil
}
