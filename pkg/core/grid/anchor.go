package grid

import (
	"math"
	"math/rand/v2"
	"strings"

	"github.com/matzehuels/cladding/pkg/core/geom"
)

// Anchor names the point of the bounds the pattern grid is laid from.
type Anchor string

const (
	TopLeft     Anchor = "top_left"
	Top         Anchor = "top"
	TopRight    Anchor = "top_right"
	Left        Anchor = "left"
	Center      Anchor = "center"
	Right       Anchor = "right"
	BottomLeft  Anchor = "bottom_left"
	Bottom      Anchor = "bottom"
	BottomRight Anchor = "bottom_right"
)

var anchors = []Anchor{TopLeft, Top, TopRight, Left, Center, Right, BottomLeft, Bottom, BottomRight}

// Anchors returns the nine anchor names in reading order.
func Anchors() []Anchor {
	return append([]Anchor(nil), anchors...)
}

// ParseAnchor returns the anchor named s. Unknown names fall back to
// Center.
func ParseAnchor(s string) Anchor {
	a := Anchor(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range anchors {
		if a == known {
			return a
		}
	}
	return Center
}

// Valid reports whether a is one of the nine anchors.
func (a Anchor) Valid() bool {
	for _, known := range anchors {
		if a == known {
			return true
		}
	}
	return false
}

func (a Anchor) top() bool    { return a == TopLeft || a == Top || a == TopRight }
func (a Anchor) bottom() bool { return a == BottomLeft || a == Bottom || a == BottomRight }
func (a Anchor) left() bool   { return a == TopLeft || a == Left || a == BottomLeft }
func (a Anchor) right() bool  { return a == TopRight || a == Right || a == BottomRight }

// ResolveAnchor returns the lower-left corner of a patternW x patternH grid
// placed in bounds. The grid is flush with the anchored edges and centered
// on any axis the anchor does not name.
func ResolveAnchor(bounds geom.Rect, patternW, patternH float64, a Anchor) geom.Vec2 {
	a = ParseAnchor(string(a))

	x := bounds.Left + (bounds.Width()-patternW)/2
	switch {
	case a.left():
		x = bounds.Left
	case a.right():
		x = bounds.Right - patternW
	}

	y := bounds.Bottom + (bounds.Height()-patternH)/2
	switch {
	case a.bottom():
		y = bounds.Bottom
	case a.top():
		y = bounds.Top - patternH
	}

	return geom.Vec2{X: x, Y: y}
}

// Caps bound the work done for a single region.
type Caps struct {
	MaxRows     int `json:"maxRows" toml:"maxRows"`
	MaxCols     int `json:"maxCols" toml:"maxCols"`
	MaxElements int `json:"maxElements" toml:"maxElements"`
}

// DefaultCaps are 150 rows, 150 columns and 2000 elements.
var DefaultCaps = Caps{MaxRows: 150, MaxCols: 150, MaxElements: 2000}

func (c Caps) orDefault() Caps {
	if c.MaxRows <= 0 {
		c.MaxRows = DefaultCaps.MaxRows
	}
	if c.MaxCols <= 0 {
		c.MaxCols = DefaultCaps.MaxCols
	}
	if c.MaxElements <= 0 {
		c.MaxElements = DefaultCaps.MaxElements
	}
	return c
}

// PatternSize returns the size of the nominal pattern grid for bounds: two
// more elements per axis than the bounds need, capped by caps.
func PatternSize(bounds geom.Rect, avgLen, avgHeight, jointL, jointW float64, caps Caps) (w, h float64) {
	caps = caps.orDefault()
	cols := patternCount(bounds.Width(), avgLen, jointL, caps.MaxCols)
	rows := patternCount(bounds.Height(), avgHeight, jointW, caps.MaxRows)
	w = float64(cols)*avgLen + float64(cols-1)*jointL
	h = float64(rows)*avgHeight + float64(rows-1)*jointW
	return w, h
}

func patternCount(span, avg, joint float64, limit int) int {
	n := int(math.Ceil((span+joint)/(avg+joint))) + 2
	return min(n, limit)
}

// Jitter returns a random start offset of up to 35% of avgLen on X and
// 15% on Y in either direction.
func Jitter(rng *rand.Rand, avgLen float64) geom.Vec2 {
	return geom.Vec2{
		X: (rng.Float64() - 0.5) * 0.7 * avgLen,
		Y: (rng.Float64() - 0.5) * 0.3 * avgLen,
	}
}
