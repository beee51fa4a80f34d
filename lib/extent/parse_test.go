// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

package extent

import (
	"errors"
	"strings"
	"testing"
)

const sampleInfo = `lasinfo report for tile_0042.laz
  Number of point records:    12734921
  Min X, Y, Z:  728970.92 4676439.35 280.88,
  Max X, Y, Z:  729001.43 4676648.29 309.19,
  Scale X Y Z:  0.01 0.01 0.01
`

func TestParseInfo(t *testing.T) {
	t.Parallel()

	t.Run("well-formed report", func(t *testing.T) {
		t.Parallel()

		e, err := ParseInfo("tile_0042.laz", sampleInfo)
		if err != nil {
			t.Fatalf("ParseInfo: %v", err)
		}
		want := Extent{
			MinX: 728970.92, MinY: 4676439.35, MinZ: 280.88,
			MaxX: 729001.43, MaxY: 4676648.29, MaxZ: 309.19,
		}
		if e != want {
			t.Errorf("extent = %+v, want %+v", e, want)
		}
	})

	t.Run("degenerate extent", func(t *testing.T) {
		t.Parallel()

		flat := "Min X, Y, Z: 1.0 2.0 5.0,\nMax X, Y, Z: 1.0 2.0 5.0,\n"
		e, err := ParseInfo("flat.laz", flat)
		if err != nil {
			t.Fatalf("ParseInfo: %v", err)
		}
		if e.MinZ != e.MaxZ {
			t.Errorf("MinZ = %g, MaxZ = %g, want equal", e.MinZ, e.MaxZ)
		}
	})

	t.Run("negative coordinates", func(t *testing.T) {
		t.Parallel()

		report := "Min X, Y, Z: -12.5 -300.25 -1.0,\nMax X, Y, Z: -2.5 -100.75 3.5,\n"
		e, err := ParseInfo("neg.laz", report)
		if err != nil {
			t.Fatalf("ParseInfo: %v", err)
		}
		if e.MinX != -12.5 || e.MinY != -300.25 {
			t.Errorf("mins = (%g, %g), want (-12.5, -300.25)", e.MinX, e.MinY)
		}
	})

	t.Run("missing min line", func(t *testing.T) {
		t.Parallel()

		report := "Max X, Y, Z: 1 2 3,\n"
		_, err := ParseInfo("broken.laz", report)
		var parseError *ParseError
		if !errors.As(err, &parseError) {
			t.Fatalf("error = %v, want *ParseError", err)
		}
		if !strings.Contains(parseError.Reason, "Min X, Y, Z") {
			t.Errorf("reason %q does not name the missing line", parseError.Reason)
		}
	})

	t.Run("missing max line", func(t *testing.T) {
		t.Parallel()

		report := "Min X, Y, Z: 1 2 3,\n"
		var parseError *ParseError
		if _, err := ParseInfo("broken.laz", report); !errors.As(err, &parseError) {
			t.Fatalf("error = %v, want *ParseError", err)
		}
	})

	t.Run("non-numeric field", func(t *testing.T) {
		t.Parallel()

		report := "Min X, Y, Z: 1 oops 3,\nMax X, Y, Z: 4 5 6,\n"
		var parseError *ParseError
		if _, err := ParseInfo("bad.laz", report); !errors.As(err, &parseError) {
			t.Fatalf("error = %v, want *ParseError", err)
		}
	})

	t.Run("error names the file", func(t *testing.T) {
		t.Parallel()

		_, err := ParseInfo("tile_7.laz", "nothing useful")
		if err == nil || !strings.Contains(err.Error(), "tile_7.laz") {
			t.Errorf("error %v does not name the file", err)
		}
	})
}
