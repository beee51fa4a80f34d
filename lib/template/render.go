// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

// Package template substitutes !TOKEN! placeholders in generated
// pipeline artifacts (ingestion descriptors, schema scripts, service
// configs). Substitution is purely textual: the template's encoding
// and line endings pass through untouched, and tokens are matched as
// whole delimited units so a token that is a substring of another can
// never clobber it.
package template

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// tokenPattern matches !NAME! references. Only the fully delimited
// form is recognized; a bare NAME or a stray ! is left alone. Token
// names are upper-case with digits and underscores.
var tokenPattern = regexp.MustCompile(`!([A-Z][A-Z0-9_]*)!`)

// MissingValueError reports tokens the caller requires that have no
// value in the supplied mapping. It is always a contract violation:
// rendering stops and no output artifact is produced.
type MissingValueError struct {
	// Tokens are the required token names with no value, sorted.
	Tokens []string
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("no value for required template tokens: %s", strings.Join(e.Tokens, ", "))
}

// Render replaces every occurrence of every known token in data with
// its value. Tokens present in the template but absent from values are
// preserved verbatim — a template may carry tokens meant for a later
// pass. Tokens listed in required must have a value in the mapping;
// otherwise Render returns *MissingValueError and no output.
func Render(data []byte, values map[string]string, required ...string) ([]byte, error) {
	var missing []string
	for _, name := range required {
		if _, exists := values[name]; !exists {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &MissingValueError{Tokens: missing}
	}

	rendered := tokenPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := string(match[1 : len(match)-1])
		if value, exists := values[name]; exists {
			return []byte(value)
		}
		return match
	})
	return rendered, nil
}

// RenderFile renders data and writes the result to path. Nothing is
// written when rendering fails, so a half-substituted artifact can
// never reach an external tool.
func RenderFile(path string, data []byte, values map[string]string, required ...string) error {
	rendered, err := Render(data, values, required...)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, rendered, 0o644); err != nil {
		return fmt.Errorf("writing rendered artifact %s: %w", path, err)
	}
	return nil
}

// Tokens returns the distinct token names referenced by data, in
// order of first appearance. Useful for validating override templates
// supplied through configuration.
func Tokens(data []byte) []string {
	seen := make(map[string]bool)
	var names []string
	for _, match := range tokenPattern.FindAllSubmatch(data, -1) {
		name := string(match[1])
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
