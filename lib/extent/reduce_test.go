// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

package extent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"strings"
	"testing"

	"github.com/terrapoint-foundation/terrapoint/lib/tool"
)

// stubInfo serves canned metadata reports keyed by file path.
func stubInfo(reports map[string]string) InfoFunc {
	return func(ctx context.Context, path string) (string, error) {
		report, exists := reports[path]
		if !exists {
			return "", fmt.Errorf("%s: no such file", path)
		}
		return report, nil
	}
}

func report(minX, minY, minZ, maxX, maxY, maxZ float64) string {
	return fmt.Sprintf("Min X, Y, Z: %g %g %g,\nMax X, Y, Z: %g %g %g,\n",
		minX, minY, minZ, maxX, maxY, maxZ)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReduce(t *testing.T) {
	t.Parallel()

	reports := map[string]string{
		"a.laz": report(0, 0, 0, 10, 10, 10),
		"b.laz": report(-5, 2, 1, 4, 20, 30),
	}

	t.Run("two file example", func(t *testing.T) {
		t.Parallel()

		reduction, err := Reduce(context.Background(), []string{"a.laz", "b.laz"}, stubInfo(reports), 1, discardLogger())
		if err != nil {
			t.Fatalf("Reduce: %v", err)
		}
		want := Extent{MinX: -5, MinY: 0, MinZ: 0, MaxX: 10, MaxY: 20, MaxZ: 30}
		if reduction.Extent != want {
			t.Errorf("extent = %+v, want %+v", reduction.Extent, want)
		}
		if reduction.Offset != (Offset{X: 2.5, Y: 10, Z: 15}) {
			t.Errorf("offset = %+v, want (2.5, 10, 15)", reduction.Offset)
		}
		if reduction.Files != 2 {
			t.Errorf("files = %d, want 2", reduction.Files)
		}
	})

	t.Run("result independent of file order", func(t *testing.T) {
		t.Parallel()

		many := make(map[string]string)
		var files []string
		for i := 0; i < 12; i++ {
			path := fmt.Sprintf("tile_%02d.laz", i)
			offset := float64(i)*3 - 15
			many[path] = report(offset, -offset, offset/4, offset+2, -offset+2, offset/4+2)
			files = append(files, path)
		}

		reference, err := Reduce(context.Background(), files, stubInfo(many), 1, discardLogger())
		if err != nil {
			t.Fatalf("Reduce: %v", err)
		}

		reversed := make([]string, len(files))
		for i, path := range files {
			reversed[len(files)-1-i] = path
		}
		shuffled := make([]string, len(files))
		copy(shuffled, files)
		rand.New(rand.NewSource(7)).Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		for name, order := range map[string][]string{"reversed": reversed, "shuffled": shuffled} {
			reduction, err := Reduce(context.Background(), order, stubInfo(many), 1, discardLogger())
			if err != nil {
				t.Fatalf("Reduce (%s): %v", name, err)
			}
			if reduction.Extent != reference.Extent {
				t.Errorf("%s order: extent = %+v, want %+v", name, reduction.Extent, reference.Extent)
			}
			if reduction.Offset != reference.Offset {
				t.Errorf("%s order: offset = %+v, want %+v", name, reduction.Offset, reference.Offset)
			}
		}
	})

	t.Run("result independent of worker count", func(t *testing.T) {
		t.Parallel()

		many := make(map[string]string)
		var files []string
		for i := 0; i < 40; i++ {
			path := fmt.Sprintf("tile_%02d.laz", i)
			offset := float64(i) - 20
			many[path] = report(offset, offset*2, offset/2, offset+1, offset*2+1, offset/2+1)
			files = append(files, path)
		}

		reference, err := Reduce(context.Background(), files, stubInfo(many), 1, discardLogger())
		if err != nil {
			t.Fatalf("Reduce: %v", err)
		}
		for _, workers := range []int{2, 5, 16, 100} {
			reduction, err := Reduce(context.Background(), files, stubInfo(many), workers, discardLogger())
			if err != nil {
				t.Fatalf("Reduce with %d workers: %v", workers, err)
			}
			if reduction.Extent != reference.Extent {
				t.Errorf("workers=%d: extent = %+v, want %+v", workers, reduction.Extent, reference.Extent)
			}
		}
	})

	t.Run("no files", func(t *testing.T) {
		t.Parallel()

		if _, err := Reduce(context.Background(), nil, stubInfo(nil), 1, discardLogger()); err == nil {
			t.Error("Reduce accepted an empty file list")
		}
	})

	t.Run("failures are collected, not short-circuited", func(t *testing.T) {
		t.Parallel()

		broken := map[string]string{
			"good.laz":  report(0, 0, 0, 1, 1, 1),
			"bad.laz":   "garbage",
			"worse.laz": "Min X, Y, Z: a b c,\nMax X, Y, Z: 1 2 3,\n",
		}
		_, err := Reduce(context.Background(), []string{"good.laz", "bad.laz", "worse.laz", "missing.laz"},
			stubInfo(broken), 2, discardLogger())
		if err == nil {
			t.Fatal("Reduce succeeded despite malformed files")
		}
		message := err.Error()
		for _, path := range []string{"bad.laz", "worse.laz", "missing.laz"} {
			if !strings.Contains(message, path) {
				t.Errorf("error does not mention %s:\n%s", path, message)
			}
		}
		if !strings.Contains(message, "3 of 4") {
			t.Errorf("error does not summarize counts:\n%s", message)
		}
	})

	t.Run("failure types survive aggregation", func(t *testing.T) {
		t.Parallel()

		toolFailure := &tool.Error{Tool: "lasinfo", Args: []string{"-i", "a.laz"}, ExitCode: 1, Stderr: "corrupt header"}
		info := func(ctx context.Context, path string) (string, error) {
			switch path {
			case "a.laz":
				return "", toolFailure
			case "b.laz":
				return "garbage", nil
			}
			return report(0, 0, 0, 1, 1, 1), nil
		}

		_, err := Reduce(context.Background(), []string{"a.laz", "b.laz", "c.laz"}, info, 2, discardLogger())
		if err == nil {
			t.Fatal("Reduce succeeded despite failures")
		}
		var toolError *tool.Error
		if !errors.As(err, &toolError) {
			t.Errorf("*tool.Error not reachable through batch error: %v", err)
		} else if toolError.ExitCode != 1 {
			t.Errorf("exit code = %d, want 1", toolError.ExitCode)
		}
		var parseError *ParseError
		if !errors.As(err, &parseError) {
			t.Errorf("*ParseError not reachable through batch error: %v", err)
		}
	})
}
