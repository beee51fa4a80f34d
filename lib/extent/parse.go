// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

package extent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// The metadata tool reports one line per bound, e.g.:
//
//	Min X, Y, Z:  728970.92 4676439.35 280.88,
//	Max X, Y, Z:  729001.43 4676648.29 309.19,
//
// Field positions are significant: exactly three numeric fields after
// the colon, with an optional trailing separator on each.
var (
	minLinePattern = regexp.MustCompile(`(?m)^\s*Min X, Y, Z:\s*(\S+)\s+(\S+)\s+(\S+)\s*$`)
	maxLinePattern = regexp.MustCompile(`(?m)^\s*Max X, Y, Z:\s*(\S+)\s+(\S+)\s+(\S+)\s*$`)
)

// ParseError reports metadata output that does not carry a usable
// extent. It aborts the extraction stage for the file that produced it.
type ParseError struct {
	// Path is the source file whose metadata was being parsed.
	Path string

	// Reason describes what was missing or malformed.
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing metadata for %s: %s", e.Path, e.Reason)
}

// ParseInfo extracts the min/max bounds from the metadata tool's text
// output for the file at path. Degenerate bounds (min == max on an
// axis) parse like any other.
func ParseInfo(path, output string) (Extent, error) {
	mins, err := parseBoundLine(path, "Min X, Y, Z", minLinePattern, output)
	if err != nil {
		return Extent{}, err
	}
	maxes, err := parseBoundLine(path, "Max X, Y, Z", maxLinePattern, output)
	if err != nil {
		return Extent{}, err
	}
	return Extent{
		MinX: mins[0], MinY: mins[1], MinZ: mins[2],
		MaxX: maxes[0], MaxY: maxes[1], MaxZ: maxes[2],
	}, nil
}

func parseBoundLine(path, label string, pattern *regexp.Regexp, output string) ([3]float64, error) {
	var values [3]float64
	match := pattern.FindStringSubmatch(output)
	if match == nil {
		return values, &ParseError{Path: path, Reason: fmt.Sprintf("no %q line in metadata output", label)}
	}
	for i := 0; i < 3; i++ {
		field := strings.TrimRight(match[i+1], ",;")
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return values, &ParseError{
				Path:   path,
				Reason: fmt.Sprintf("%s field %d: %q is not numeric", label, i+1, match[i+1]),
			}
		}
		values[i] = value
	}
	return values, nil
}
