package sink

import (
	"fmt"
	"io"
	"math"

	"github.com/gogpu/gg"

	"github.com/matzehuels/cladding/pkg/core/layout"
)

// RenderPNG rasterizes the same sheet as [RenderSVG] and writes it to w.
// Trimmed elements are drawn in a darker shade of the appearance color.
func RenderPNG(res *layout.Result, w io.Writer, opts ...SVGOption) error {
	var r svgRenderer
	for _, opt := range opts {
		opt(&r)
	}
	s := newSheet(res, r.region, r.width)

	dc := gg.NewContext(int(math.Ceil(s.width)), int(math.Ceil(s.height)))
	defer dc.Close()
	dc.ClearWithColor(gg.White)

	a := res.Config.Appearance
	base := [3]float64{float64(a.R) / 255, float64(a.G) / 255, float64(a.B) / 255}

	for _, p := range s.regions {
		for _, fp := range p.rr.Footprints {
			x, y, w, h := s.px(p, fp.Sheet)
			dc.DrawRectangle(x, y, w, h)
			if fp.Trimmed {
				dc.SetRGB(base[0]*0.7, base[1]*0.7, base[2]*0.7)
			} else {
				dc.SetRGB(base[0], base[1], base[2])
			}
			if err := dc.FillPreserve(); err != nil {
				return fmt.Errorf("fill element %d: %w", fp.Index, err)
			}
			dc.SetRGB(1, 1, 1)
			dc.SetLineWidth(0.75)
			if err := dc.Stroke(); err != nil {
				return fmt.Errorf("stroke element %d: %w", fp.Index, err)
			}
		}

		x, y, w, h := s.px(p, p.rr.Sheet())
		dc.DrawRectangle(x, y, w, h)
		dc.SetRGBA(0.27, 0.27, 0.27, 1)
		dc.SetLineWidth(1)
		dc.SetDash(4, 3)
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("stroke outline %s: %w", p.rr.ID, err)
		}
		dc.SetDash()
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
