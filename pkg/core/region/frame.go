package region

import (
	"math"

	"github.com/matzehuels/cladding/pkg/core/geom"
	"github.com/matzehuels/cladding/pkg/errors"
)

// snapThreshold is the normal component above which forced-horizontal mode
// snaps the frame to world axes.
const snapThreshold = 0.8

// Frame is an orthonormal 2D coordinate system embedded in 3D.
type Frame struct {
	Origin geom.Vec3 `json:"origin"`
	X      geom.Vec3 `json:"x"`
	Y      geom.Vec3 `json:"y"`
	Normal geom.Vec3 `json:"normal"`
}

// ToLocal projects p onto the frame plane.
func (f Frame) ToLocal(p geom.Vec3) geom.Vec2 {
	d := p.Sub(f.Origin)
	return geom.Vec2{X: d.Dot(f.X), Y: d.Dot(f.Y)}
}

// ToWorld maps local coordinates back onto the frame plane in 3D.
func (f Frame) ToWorld(x, y float64) geom.Vec3 {
	return f.Origin.Add(f.X.MulScalar(x)).Add(f.Y.MulScalar(y))
}

// Corners maps a local rectangle to its four world corners, counter-
// clockwise from the lower-left.
func (f Frame) Corners(r geom.Rect) [4]geom.Vec3 {
	return [4]geom.Vec3{
		f.ToWorld(r.Left, r.Bottom),
		f.ToWorld(r.Right, r.Bottom),
		f.ToWorld(r.Right, r.Top),
		f.ToWorld(r.Left, r.Top),
	}
}

// Orthonormal reports whether the three axes are unit length and mutually
// perpendicular within tol.
func (f Frame) Orthonormal(tol float64) bool {
	for _, v := range []geom.Vec3{f.X, f.Y, f.Normal} {
		if math.Abs(v.Length()-1) > tol {
			return false
		}
	}
	return math.Abs(f.X.Dot(f.Y)) <= tol &&
		math.Abs(f.X.Dot(f.Normal)) <= tol &&
		math.Abs(f.Y.Dot(f.Normal)) <= tol
}

// BuildFrame derives the 2D frame of r. The origin is the center of the
// boundary's bounding box moved by offset (the cavity offset).
//
// With forceHorizontal the axes snap to world axes for nearly axis-aligned
// regions, and otherwise run along the horizontal so element rows stay
// level. Without it, X follows the longest boundary edge.
func BuildFrame(r Region, forceHorizontal bool, offset geom.Vec3) (Frame, error) {
	n, ok := geom.Unit(r.Normal)
	if !ok {
		return Frame{}, errors.New(errors.ErrCodeInvalidRegion, "region %q: normal has zero length", r.ID)
	}

	var x, y geom.Vec3
	if forceHorizontal {
		x, y = horizontalAxes(n)
	} else {
		x = longestEdge(r.Boundary, n)
		y = n.Cross(x)
	}

	x, y, ok = orthonormalize(n, x, y)
	if !ok {
		return Frame{}, errors.New(errors.ErrCodeInvalidRegion, "region %q: cannot derive frame axes", r.ID)
	}

	return Frame{
		Origin: geom.BoxCenter(r.Boundary).Add(offset),
		X:      x,
		Y:      y,
		Normal: n,
	}, nil
}

func horizontalAxes(n geom.Vec3) (x, y geom.Vec3) {
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	switch {
	case az > snapThreshold:
		return geom.AxisX, geom.AxisY
	case ay > snapThreshold:
		return geom.AxisX, geom.AxisZ
	case ax > snapThreshold:
		return geom.AxisY, geom.AxisZ
	}
	h, ok := geom.Unit(geom.Vec3{X: n.X, Y: n.Y})
	if !ok {
		return geom.AxisX, geom.AxisZ
	}
	x = h.Cross(geom.AxisZ)
	return x, x.Cross(n)
}

func longestEdge(boundary []geom.Vec3, n geom.Vec3) geom.Vec3 {
	var best geom.Vec3
	bestLen := 0.0
	for i, p := range boundary {
		e := boundary[(i+1)%len(boundary)].Sub(p)
		// drop the out-of-plane component of slightly non-planar loops
		e = e.Sub(n.MulScalar(e.Dot(n)))
		if l := e.Length(); l > bestLen {
			best, bestLen = e, l
		}
	}
	if bestLen > geom.Eps {
		return best
	}
	if math.Abs(n.Z) > 1-geom.Eps {
		return geom.AxisX
	}
	return n.Cross(geom.AxisZ)
}

// orthonormalize runs Gram-Schmidt on x and y against n, keeping the
// snapped directions where the region is slightly tilted.
func orthonormalize(n, x, y geom.Vec3) (geom.Vec3, geom.Vec3, bool) {
	x, ok := geom.Unit(x.Sub(n.MulScalar(x.Dot(n))))
	if !ok {
		return geom.Vec3{}, geom.Vec3{}, false
	}
	y = y.Sub(n.MulScalar(y.Dot(n))).Sub(x.MulScalar(y.Dot(x)))
	y, ok = geom.Unit(y)
	if !ok {
		// y collapsed onto x or n; any perpendicular keeps the frame valid
		y, ok = geom.Unit(n.Cross(x))
	}
	return x, y, ok
}
