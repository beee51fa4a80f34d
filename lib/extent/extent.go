// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

// Package extent computes the global axis-aligned bounding volume of a
// point-cloud file set and the coordinate offset derived from it.
//
// Every later pipeline stage consumes the reduction produced here: the
// schema scripts carry the offset so stored coordinates stay near the
// origin (narrow-precision patch formats lose millimetres when raw
// UTM-scale coordinates are stored directly), and the service config
// carries the global bounds for the streaming server.
package extent

import (
	"fmt"
	"math"
)

// Extent is an axis-aligned min/max bounding volume.
type Extent struct {
	MinX float64 `yaml:"minx"`
	MinY float64 `yaml:"miny"`
	MinZ float64 `yaml:"minz"`
	MaxX float64 `yaml:"maxx"`
	MaxY float64 `yaml:"maxy"`
	MaxZ float64 `yaml:"maxz"`
}

// Offset is the per-axis midpoint of an extent, subtracted from stored
// coordinates for numeric stability.
type Offset struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Seed returns the identity element of the min/max fold: +Inf minimums
// and -Inf maximums. Seeding with infinities (rather than large finite
// literals) keeps the fold correct for legitimately negative
// coordinates and for coordinates beyond any fixed sentinel.
func Seed() Extent {
	return Extent{
		MinX: math.Inf(1), MinY: math.Inf(1), MinZ: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1), MaxZ: math.Inf(-1),
	}
}

// Fold tightens e to cover other. The operation is commutative and
// associative, so per-worker partial extents can be folded in any
// order with identical results.
func (e Extent) Fold(other Extent) Extent {
	return Extent{
		MinX: math.Min(e.MinX, other.MinX),
		MinY: math.Min(e.MinY, other.MinY),
		MinZ: math.Min(e.MinZ, other.MinZ),
		MaxX: math.Max(e.MaxX, other.MaxX),
		MaxY: math.Max(e.MaxY, other.MaxY),
		MaxZ: math.Max(e.MaxZ, other.MaxZ),
	}
}

// Offset returns the per-axis midpoint, min + (max-min)/2. This is the
// midpoint of the bounding volume, not the centroid of the points.
func (e Extent) Offset() Offset {
	return Offset{
		X: e.MinX + (e.MaxX-e.MinX)/2,
		Y: e.MinY + (e.MaxY-e.MinY)/2,
		Z: e.MinZ + (e.MaxZ-e.MinZ)/2,
	}
}

// Bounded reports whether every bound is finite, i.e. at least one
// real extent has been folded into a seeded value. An unbounded extent
// must never reach a generated artifact.
func (e Extent) Bounded() bool {
	for _, v := range []float64{e.MinX, e.MinY, e.MinZ, e.MaxX, e.MaxY, e.MaxZ} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}

// Validate returns an error unless the extent is bounded and every
// minimum is at most its maximum. Degenerate extents (min == max on an
// axis, e.g. a flat scan) are valid.
func (e Extent) Validate() error {
	if !e.Bounded() {
		return fmt.Errorf("extent has non-finite bounds: %+v", e)
	}
	if e.MinX > e.MaxX || e.MinY > e.MaxY || e.MinZ > e.MaxZ {
		return fmt.Errorf("extent has inverted bounds: %+v", e)
	}
	return nil
}

func (e Extent) String() string {
	return fmt.Sprintf("[%g %g %g, %g %g %g]", e.MinX, e.MinY, e.MinZ, e.MaxX, e.MaxY, e.MaxZ)
}
