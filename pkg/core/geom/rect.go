package geom

import "math"

// Rect is an axis-aligned rectangle in a region's 2D frame.
type Rect struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Top    float64 `json:"top"`
}

// BoundsOf returns the bounding rectangle of pts. The zero Rect is
// returned for an empty slice.
func BoundsOf(pts []Vec2) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	r := Rect{Left: pts[0].X, Right: pts[0].X, Bottom: pts[0].Y, Top: pts[0].Y}
	for _, p := range pts[1:] {
		r.Left = math.Min(r.Left, p.X)
		r.Right = math.Max(r.Right, p.X)
		r.Bottom = math.Min(r.Bottom, p.Y)
		r.Top = math.Max(r.Top, p.Y)
	}
	return r
}

// Width returns the horizontal span of the rectangle.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical span of the rectangle.
func (r Rect) Height() float64 { return r.Top - r.Bottom }

// CenterX returns the horizontal center of the rectangle.
func (r Rect) CenterX() float64 { return (r.Left + r.Right) / 2 }

// CenterY returns the vertical center of the rectangle.
func (r Rect) CenterY() float64 { return (r.Bottom + r.Top) / 2 }

// Min returns the lower-left corner.
func (r Rect) Min() Vec2 { return Vec2{X: r.Left, Y: r.Bottom} }

// Degenerate reports whether either side is shorter than MinExtent.
func (r Rect) Degenerate() bool {
	return !(r.Width() >= MinExtent && r.Height() >= MinExtent)
}

// Grow returns r expanded by m on all four sides.
func (r Rect) Grow(m float64) Rect {
	return Rect{Left: r.Left - m, Right: r.Right + m, Bottom: r.Bottom - m, Top: r.Top + m}
}

// Translate returns r shifted by d.
func (r Rect) Translate(d Vec2) Rect {
	return Rect{Left: r.Left + d.X, Right: r.Right + d.X, Bottom: r.Bottom + d.Y, Top: r.Top + d.Y}
}

// Intersect clips r against o. ok is false unless both axes overlap by
// more than MinExtent.
func (r Rect) Intersect(o Rect) (Rect, bool) {
	c := Rect{
		Left:   math.Max(r.Left, o.Left),
		Right:  math.Min(r.Right, o.Right),
		Bottom: math.Max(r.Bottom, o.Bottom),
		Top:    math.Min(r.Top, o.Top),
	}
	if c.Width() <= MinExtent || c.Height() <= MinExtent {
		return Rect{}, false
	}
	return c, true
}

// Contains reports whether o lies inside r within tolerance tol.
func (r Rect) Contains(o Rect, tol float64) bool {
	return o.Left >= r.Left-tol && o.Right <= r.Right+tol &&
		o.Bottom >= r.Bottom-tol && o.Top <= r.Top+tol
}
