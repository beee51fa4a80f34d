// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for Terrapoint packages.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WorkDir creates a temporary working directory for a pipeline test.
// It is removed when the test completes.
func WorkDir(t *testing.T) string {
	t.Helper()
	directory, err := os.MkdirTemp("", "terrapoint-test-*")
	if err != nil {
		t.Fatalf("creating working directory: %v", err)
	}
	t.Cleanup(func() {
		_ = os.RemoveAll(directory)
	})
	return directory
}

// WriteFile writes content to name under dir, creating parent
// directories as needed, and fails the test on error. Returns the
// full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// ReadFile reads the file at path and fails the test on error.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}
