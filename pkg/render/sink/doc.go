// Package sink turns a finished [layout.Result] into output files.
//
// # Overview
//
// A sink reads the footprints of a run and writes one of:
//
//   - SVG: a flat sheet, one group per region, trimmed elements hatched
//   - PNG: the same sheet rasterized with gogpu/gg
//   - JSON: a cut list with a bill of pieces by nominal size
//   - STL: exact element prisms, or a marching-cubes solid per region
//   - DOT/SVG: the corner diagram of a scene, laid out by Graphviz
//
// Sheets place regions side by side in their own 2D frames; they show how
// each surface is cut, not where it sits in 3D. STL output is in world
// coordinates.
//
//	res, _ := layout.Run(ctx, regions, cfg)
//	svg := sink.RenderSVG(res, sink.WithLabels())
//	doc, err := sink.RenderJSON(res)
//	n, err := sink.RenderSTL(ctx, res, "cladding.stl", sink.MeshPrism, 0)
//
// # Corner Diagrams
//
// [CornersDOT] lists regions as nodes and joins perpendicular pairs, which
// is what decides whether a region is an internal corner:
//
//	dot := sink.CornersDOT(regions, region.DefaultPerpendicularThreshold)
//	svg, err := sink.RenderCornersSVG(ctx, dot)
package sink
