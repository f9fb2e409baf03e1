// Package region derives everything the grid generator needs from a planar
// region in 3D space: its 2D frame, its corner classification, the cavity
// offset and the extended layout bounds.
//
// The pieces are independent functions so callers can run them one at a
// time, but the usual sequence is:
//
//	corner := region.Classify(r.Normal, r.Siblings, region.DefaultPerpendicularThreshold)
//	cavity := region.ComputeCavity(r.Normal, distance, corner, preserveCorners)
//	frame, err := region.BuildFrame(r, forceHorizontal, cavity.Offset)
//	bounds, err := region.ExtendBounds(frame, r.Boundary, cavity.Margin)
package region

import (
	"math"

	"github.com/matzehuels/cladding/pkg/core/geom"
	"github.com/matzehuels/cladding/pkg/errors"
)

// Region is a planar boundary with its outward normal. Siblings holds the
// normals of the other regions processed in the same run.
type Region struct {
	ID       string
	Boundary []geom.Vec3
	Normal   geom.Vec3
	Siblings []geom.Vec3
}

// Area returns the area enclosed by the boundary.
func (r Region) Area() float64 {
	return geom.PolygonArea(r.Boundary)
}

// Validate rejects regions the layout cannot process: fewer than three
// points, non-finite coordinates, a zero normal, or an area below minArea.
func (r Region) Validate(minArea float64) error {
	if len(r.Boundary) < 3 {
		return errors.New(errors.ErrCodeInvalidRegion, "region %q: boundary has %d points, need at least 3", r.ID, len(r.Boundary))
	}
	for i, p := range r.Boundary {
		if !geom.Finite(p) {
			return errors.New(errors.ErrCodeInvalidRegion, "region %q: boundary point %d is not finite", r.ID, i)
		}
	}
	if _, ok := geom.Unit(r.Normal); !ok {
		return errors.New(errors.ErrCodeInvalidRegion, "region %q: normal has zero length", r.ID)
	}
	if a := r.Area(); a < minArea || math.IsNaN(a) {
		return errors.New(errors.ErrCodeInvalidRegion, "region %q: area %.4g below minimum %.4g", r.ID, a, minArea)
	}
	return nil
}

// WithSiblings returns a copy of regions in which each region's Siblings
// holds the normals of every other region, in index order.
func WithSiblings(regions []Region) []Region {
	out := make([]Region, len(regions))
	for i, r := range regions {
		r.Siblings = make([]geom.Vec3, 0, len(regions)-1)
		for j, o := range regions {
			if j != i {
				r.Siblings = append(r.Siblings, o.Normal)
			}
		}
		out[i] = r
	}
	return out
}
