package sink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/cladding/pkg/core/region"
)

// CornersDOT describes the perpendicular relations between regions as an
// undirected Graphviz graph. Internal-corner regions are filled, external
// ones outlined; an edge joins every perpendicular pair.
func CornersDOT(regions []region.Region, threshold float64) string {
	regions = region.WithSiblings(regions)

	var buf bytes.Buffer
	buf.WriteString("graph corners {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded\", fontsize=14];\n\n")

	for _, r := range regions {
		c := region.Classify(r.Normal, r.Siblings, threshold)
		attrs := fmt.Sprintf("label=%q", fmt.Sprintf("%s\n%s (%.2g, %.2g, %.2g)", r.ID, c, r.Normal.X, r.Normal.Y, r.Normal.Z))
		if c == region.Internal {
			attrs += ", style=\"rounded,filled\", fillcolor=\"#d9d9d9\""
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", r.ID, attrs)
	}

	buf.WriteString("\n")
	for i, a := range regions {
		for _, b := range regions[i+1:] {
			if region.Perpendicular(a.Normal, b.Normal, threshold) {
				fmt.Fprintf(&buf, "  %q -- %q;\n", a.ID, b.ID)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderCornersSVG lays out a DOT graph with Graphviz and returns the SVG.
func RenderCornersSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with a
// zero-origin viewBox so the diagram scales like the sheet renders.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
