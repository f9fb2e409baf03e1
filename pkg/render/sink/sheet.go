package sink

import (
	"math"

	"github.com/matzehuels/cladding/pkg/core/geom"
	"github.com/matzehuels/cladding/pkg/core/layout"
)

// DefaultWidth is the pixel width of a rendered sheet.
const DefaultWidth = 1200

const (
	gapFactor = 0.08
	padPx     = 16.0
)

// placed is one region positioned on the sheet. Extent covers the region's
// unextended outline and every footprint, in sheet coordinates.
type placed struct {
	rr      *layout.RegionResult
	extent  geom.Rect
	offsetX float64
}

// sheet arranges the laid-out regions left to right along a common
// baseline and maps sheet coordinates to pixels with y pointing down.
type sheet struct {
	regions []placed
	width   float64
	height  float64
	scale   float64
	top     float64
	bottom  float64
}

func newSheet(res *layout.Result, only string, pxWidth int) sheet {
	if pxWidth <= 0 {
		pxWidth = DefaultWidth
	}
	var s sheet
	var x float64
	bottom, top := math.Inf(1), math.Inf(-1)
	maxH := 0.0
	for i := range res.Regions {
		rr := &res.Regions[i]
		if rr.Skipped || (only != "" && rr.ID != only) {
			continue
		}
		ext := rr.Sheet()
		for _, fp := range rr.Footprints {
			ext = union(ext, fp.Sheet)
		}
		maxH = math.Max(maxH, ext.Height())
		s.regions = append(s.regions, placed{rr: rr, extent: ext, offsetX: x - ext.Left})
		x += ext.Width()
		bottom = math.Min(bottom, ext.Bottom)
		top = math.Max(top, ext.Top)
	}
	if len(s.regions) == 0 {
		s.width, s.height, s.scale = float64(pxWidth), float64(pxWidth)/2, 1
		return s
	}

	gap := maxH * gapFactor
	for i := range s.regions {
		s.regions[i].offsetX += float64(i) * gap
	}
	total := x + gap*float64(len(s.regions)-1)
	s.scale = (float64(pxWidth) - 2*padPx) / total
	s.width = float64(pxWidth)
	s.height = (top-bottom)*s.scale + 2*padPx
	s.top, s.bottom = top, bottom
	return s
}

// px maps a sheet rect of region p to pixel x, y, w, h.
func (s sheet) px(p placed, r geom.Rect) (x, y, w, h float64) {
	x = padPx + (r.Left+p.offsetX)*s.scale
	y = padPx + (s.top-r.Top)*s.scale
	return x, y, r.Width() * s.scale, r.Height() * s.scale
}

func union(a, b geom.Rect) geom.Rect {
	return geom.Rect{
		Left:   math.Min(a.Left, b.Left),
		Right:  math.Max(a.Right, b.Right),
		Bottom: math.Min(a.Bottom, b.Bottom),
		Top:    math.Max(a.Top, b.Top),
	}
}
