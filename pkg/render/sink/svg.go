package sink

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/cladding/pkg/core/layout"
)

const hatchDefs = `  <defs>
    <pattern id="hatch" patternUnits="userSpaceOnUse" width="6" height="6" patternTransform="rotate(45)">
      <line x1="0" y1="0" x2="0" y2="6" stroke="#000" stroke-opacity="0.35" stroke-width="1.5"/>
    </pattern>
  </defs>
`

const elementCSS = `
    .outline { fill: none; stroke: #444; stroke-dasharray: 4 3; }
    .element { stroke: #fff; stroke-width: 0.75; }
    .element:hover { stroke: #000; }
    .label { font: 12px sans-serif; fill: #222; }`

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	width  int
	region string
	labels bool
}

// WithWidth sets the pixel width of the sheet.
func WithWidth(px int) SVGOption { return func(r *svgRenderer) { r.width = px } }

// WithRegion renders only the region with the given id.
func WithRegion(id string) SVGOption { return func(r *svgRenderer) { r.region = id } }

// WithLabels writes each region's id under its outline.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

// RenderSVG draws every laid-out region of res as a flat sheet: one group
// per region with its dashed outline and one rectangle per element.
// Trimmed elements are hatched.
func RenderSVG(res *layout.Result, opts ...SVGOption) []byte {
	var r svgRenderer
	for _, opt := range opts {
		opt(&r)
	}
	s := newSheet(res, r.region, r.width)
	height := s.height
	if r.labels {
		height += 2 * padPx
	}
	fill := res.Config.Appearance.Hex()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		s.width, height, s.width, height)
	buf.WriteString(hatchDefs)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", elementCSS)

	for _, p := range s.regions {
		fmt.Fprintf(&buf, `  <g id="region-%s" class="region" data-corner="%s">`+"\n", html.EscapeString(p.rr.ID), p.rr.Corner)
		x, y, w, h := s.px(p, p.rr.Sheet())
		fmt.Fprintf(&buf, `    <rect class="outline" x="%.2f" y="%.2f" width="%.2f" height="%.2f"/>`+"\n", x, y, w, h)
		for _, fp := range p.rr.Footprints {
			x, y, w, h := s.px(p, fp.Sheet)
			fmt.Fprintf(&buf, `    <rect class="element" data-index="%d" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
				fp.Index, x, y, w, h, fill)
			if fp.Trimmed {
				fmt.Fprintf(&buf, `    <rect class="trimmed" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="url(#hatch)" pointer-events="none"/>`+"\n",
					x, y, w, h)
			}
		}
		if r.labels {
			fmt.Fprintf(&buf, `    <text class="label" x="%.2f" y="%.2f">%s</text>`+"\n", x, s.height+padPx, html.EscapeString(p.rr.ID))
		}
		buf.WriteString("  </g>\n")
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}
