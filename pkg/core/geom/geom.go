// Package geom holds the small set of geometric primitives shared by the
// layout core: vectors (backed by sdfx), axis-aligned rectangles in a
// region's 2D frame, and polygon helpers.
package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Vec3 is a point or direction in world space.
type Vec3 = v3.Vec

// Vec2 is a point in a region's local frame.
type Vec2 = v2.Vec

const (
	// Eps is the tolerance used for orthogonality and zero-length checks.
	Eps = 1e-9

	// MinExtent is the smallest width or height a rectangle may have and
	// still count as non-degenerate. It also bounds the overlap required
	// for a clipped element to be emitted.
	MinExtent = 0.001
)

// World axes.
var (
	AxisX = Vec3{X: 1}
	AxisY = Vec3{Y: 1}
	AxisZ = Vec3{Z: 1}
)

// Unit returns v scaled to length 1. ok is false when v is (nearly) zero
// or contains NaN components.
func Unit(v Vec3) (u Vec3, ok bool) {
	l := v.Length()
	if l < Eps || math.IsNaN(l) || math.IsInf(l, 0) {
		return Vec3{}, false
	}
	return v.MulScalar(1 / l), true
}

// Finite reports whether every component of v is a finite number.
func Finite(v Vec3) bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// BoxCenter returns the center of the axis-aligned 3D bounding box of pts.
func BoxCenter(pts []Vec3) Vec3 {
	if len(pts) == 0 {
		return Vec3{}
	}
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo = Vec3{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = Vec3{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	return lo.Add(hi).MulScalar(0.5)
}

// Newell returns the (unnormalized) polygon normal of a closed loop using
// Newell's method. Its length is twice the polygon area.
func Newell(pts []Vec3) Vec3 {
	var n Vec3
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		n.X += (p.Y - q.Y) * (p.Z + q.Z)
		n.Y += (p.Z - q.Z) * (p.X + q.X)
		n.Z += (p.X - q.X) * (p.Y + q.Y)
	}
	return n
}

// PolygonArea returns the area of a planar closed loop.
func PolygonArea(pts []Vec3) float64 {
	if len(pts) < 3 {
		return 0
	}
	return Newell(pts).Length() / 2
}
