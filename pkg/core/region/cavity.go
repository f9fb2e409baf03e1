package region

import (
	"github.com/matzehuels/cladding/pkg/core/geom"
)

// Cavity factors per corner classification.
const (
	InternalOffsetFactor = 0.7
	ExternalOffsetFactor = 1.0
	InternalMarginFactor = 0.02
	ExternalMarginFactor = 0.05
)

// minCavity is the distance at or below which no boundary margin is added.
const minCavity = 0.001

// Cavity is the offset of the layout plane from the region surface and the
// margin added around the layout bounds.
type Cavity struct {
	Offset    geom.Vec3 `json:"offset"`
	Magnitude float64   `json:"magnitude"`
	Margin    float64   `json:"margin"`
}

// ComputeCavity scales distance by the corner factor and points it along
// the region normal. Internal corners get a shorter offset and a smaller
// margin so two adjacent offset regions meet near their shared edge
// instead of overlapping.
//
// The margin is zero unless preserveCorners is set and distance is above
// 0.001.
func ComputeCavity(normal geom.Vec3, distance float64, c Corner, preserveCorners bool) Cavity {
	offsetFactor, marginFactor := ExternalOffsetFactor, ExternalMarginFactor
	if c == Internal {
		offsetFactor, marginFactor = InternalOffsetFactor, InternalMarginFactor
	}

	mag := distance * offsetFactor
	var offset geom.Vec3
	if n, ok := geom.Unit(normal); ok {
		offset = n.MulScalar(mag)
	}

	var margin float64
	if preserveCorners && distance > minCavity {
		margin = distance * marginFactor
	}

	return Cavity{Offset: offset, Magnitude: mag, Margin: margin}
}
