// Package pkg holds the libraries behind cladding, a generator for cladding
// and tiling layouts on planar building faces.
//
// # Overview
//
// A scene lists planar regions (wall faces with an outline, a normal and
// optional openings). For every region cladding builds a local frame,
// classifies its corners against the neighbouring regions, extends the
// bounds into those corners and lays out a row-by-row grid of panels from
// length and height sequences. The pieces that would be too small are
// merged into their neighbours.
//
// The typical data flow:
//
//	scene (JSON / TOML)
//	         ↓
//	    [scene] package (decode, unit scale, regions)
//	         ↓
//	    [core/region] package (frame, corners, cavity, bounds)
//	         ↓
//	    [core/grid] package (anchors, rows, consolidation)
//	         ↓
//	    [core/layout] package (multi-region run, materialize, commit)
//	         ↓
//	    [render/sink] package (SVG, PNG, cut list, STL, corner diagrams)
//
// # Quick Start
//
//	sc, _ := scene.Load("house.json")
//	regions, _ := sc.Regions()
//	scale, _ := sc.Scale(units.Millimeter)
//
//	cfg := layout.DefaultConfig(units.Millimeter)
//	res, _ := layout.Run(ctx, regions, cfg, layout.WithScale(scale))
//
//	svg := sink.RenderSVG(res, sink.WithLabels())
//
// # Packages
//
// [core/geom], [core/units] and [core/sequence] are the small building
// blocks: vectors and rectangles, unit conversion, and the value sequences
// that feed panel lengths and row heights.
//
// [pipeline] wraps a layout run with caching ([cache]) so the CLI and the
// HTTP API ([server]) behave the same way. [preview] keeps short-lived
// preview runs whose panels fade in through [ghost]; [materialize] and
// [store] receive finished panels and committed layouts.
//
// [config] loads the TOML configuration, [errors] carries the error codes
// shared by every entry point and [observability] exposes layout hooks.
//
// [core/geom]: https://pkg.go.dev/github.com/matzehuels/cladding/pkg/core/geom
// [core/units]: https://pkg.go.dev/github.com/matzehuels/cladding/pkg/core/units
// [core/sequence]: https://pkg.go.dev/github.com/matzehuels/cladding/pkg/core/sequence
// [core/region]: https://pkg.go.dev/github.com/matzehuels/cladding/pkg/core/region
// [core/grid]: https://pkg.go.dev/github.com/matzehuels/cladding/pkg/core/grid
// [core/layout]: https://pkg.go.dev/github.com/matzehuels/cladding/pkg/core/layout
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/cladding/pkg/render/sink
// [scene]: https://pkg.go.dev/github.com/matzehuels/cladding/pkg/scene
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/cladding/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/cladding/pkg/cache
// [server]: https://pkg.go.dev/github.com/matzehuels/cladding/pkg/server
// [preview]: https://pkg.go.dev/github.com/matzehuels/cladding/pkg/preview
// [ghost]: https://pkg.go.dev/github.com/matzehuels/cladding/pkg/ghost
// [materialize]: https://pkg.go.dev/github.com/matzehuels/cladding/pkg/materialize
// [store]: https://pkg.go.dev/github.com/matzehuels/cladding/pkg/store
// [config]: https://pkg.go.dev/github.com/matzehuels/cladding/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/cladding/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/cladding/pkg/observability
package pkg
