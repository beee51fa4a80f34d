// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

package extent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// InfoFunc produces the metadata tool's text output for one file.
// Production use wraps the external metadata binary; tests supply a
// stub.
type InfoFunc func(ctx context.Context, path string) (string, error)

// Reduction is the result of folding every file's extent into one
// global bounding volume.
type Reduction struct {
	Extent Extent
	Offset Offset
	Files  int
}

// Reduce extracts the extent of every file and folds them into a
// global extent, then derives the offset. Files are processed by a
// bounded worker pool; each worker folds into a private partial extent
// and the partials are merged after the pool drains, so no fold ever
// races. The fold is commutative and associative, making the result
// independent of file order and worker scheduling.
//
// Every file is attempted even after a failure; the per-file failures
// are then reported together as a single error.
func Reduce(ctx context.Context, files []string, info InfoFunc, workers int, logger *slog.Logger) (Reduction, error) {
	if len(files) == 0 {
		return Reduction{}, errors.New("no input files to reduce")
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(files) {
		workers = len(files)
	}

	jobs := make(chan string)
	partials := make([]Extent, workers)
	failures := make([][]error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			partial := Seed()
			for path := range jobs {
				output, err := info(ctx, path)
				if err != nil {
					failures[w] = append(failures[w], fmt.Errorf("%s: %w", path, err))
					continue
				}
				fileExtent, err := ParseInfo(path, output)
				if err != nil {
					failures[w] = append(failures[w], err)
					continue
				}
				logger.Debug("file extent", "path", path, "extent", fileExtent.String())
				partial = partial.Fold(fileExtent)
			}
			partials[w] = partial
		}()
	}

	for _, path := range files {
		jobs <- path
	}
	close(jobs)
	wg.Wait()

	var all []error
	for _, errs := range failures {
		all = append(all, errs...)
	}
	if len(all) > 0 {
		// errors.Join keeps every per-file error reachable through
		// errors.As, so the caller's exit-code mapping still sees tool
		// failures as tool failures.
		return Reduction{}, fmt.Errorf("extent extraction failed for %d of %d files:\n%w",
			len(all), len(files), errors.Join(all...))
	}

	global := Seed()
	for _, partial := range partials {
		global = global.Fold(partial)
	}
	if err := global.Validate(); err != nil {
		return Reduction{}, err
	}

	return Reduction{Extent: global, Offset: global.Offset(), Files: len(files)}, nil
}
