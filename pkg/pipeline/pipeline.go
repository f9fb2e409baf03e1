// Package pipeline provides the scene → layout → render pipeline shared by
// the CLI and the HTTP API.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Layout: resolve the scene's regions and scale, then run the cladding
//     layout over them
//  2. Render: produce output artifacts (SVG, PNG, JSON) from the result
//
// Each stage can be run on its own or through [Runner.Execute]. Both are
// cached through a [cache.Cache] keyed by a [cache.Keyer].
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Scene:   sc,
//	    Config:  layout.DefaultConfig(units.Millimeter),
//	    Formats: []string{"svg", "json"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cladding/pkg/cache"
	"github.com/matzehuels/cladding/pkg/core/layout"
	"github.com/matzehuels/cladding/pkg/errors"
	"github.com/matzehuels/cladding/pkg/render"
	"github.com/matzehuels/cladding/pkg/render/sink"
	"github.com/matzehuels/cladding/pkg/scene"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default pixel width of SVG and PNG sheets.
	DefaultWidth = sink.DefaultWidth

	// MaxWidth bounds requested sheet widths.
	MaxWidth = 8000
)

// ValidFormats lists the formats the pipeline renders into memory. STL is
// written straight to disk by the CLI and is not an in-memory artifact.
var ValidFormats = map[string]bool{
	render.FormatSVG:  true,
	render.FormatPNG:  true,
	render.FormatJSON: true,
}

// =============================================================================
// Options
// =============================================================================

// Options configures one pipeline run.
type Options struct {
	// Layout
	Scene  *scene.Scene  // Regions to lay out (required)
	Config layout.Config // Layout configuration; lengths in Config.Unit
	Seed   uint64        // Base seed for unsynchronized runs, used when Seeded
	Seeded bool          // Whether Seed is set

	// Side effects. A run with either never touches the layout cache.
	Materializer layout.Materializer
	Committer    layout.Committer

	// Render
	Formats []string // Output formats (default: svg)
	Width   int      // Sheet width in pixels
	Region  string   // Restrict rendering to one region ID
	Labels  bool     // Draw element sequence numbers

	Refresh bool        // Bypass cache reads
	Logger  *log.Logger // Logger (default: discard)

	validated bool
}

// Result holds the outputs of a complete pipeline run.
type Result struct {
	Layout    *layout.Result
	Artifacts map[string][]byte
	SceneHash string
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Regions    int
	Elements   int
	Trimmed    int
	Skipped    int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for
// the full pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLayout checks the fields the layout stage needs.
func (o *Options) ValidateForLayout() error {
	if o.Scene == nil || len(o.Scene.Regions) == 0 {
		return errors.New(errors.ErrCodeInvalidScene, "scene with at least one region is required")
	}
	if o.Config.Unit == "" {
		unit, err := o.Scene.GeometryUnit()
		if err != nil {
			return err
		}
		o.Config = layout.DefaultConfig(unit)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{render.FormatSVG}
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Width < 0 || o.Width > MaxWidth {
		return errors.New(errors.ErrCodeInvalidInput, "width must be between 1 and %d, got %d", MaxWidth, o.Width)
	}
	return ValidateFormats(o.Formats)
}

// Cacheable reports whether the layout of o may be served from cache. A
// randomized run that neither synchronizes regions nor fixes a seed draws
// a fresh seed, and side effects must run every time.
func (o *Options) Cacheable() bool {
	randomized := o.Config.RandomizeLengths || o.Config.RandomizeHeights || o.Config.NaturalVariation
	if randomized && !o.Config.SynchronizeAcrossRegions && !o.Seeded {
		return false
	}
	return o.Materializer == nil && o.Committer == nil
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts(scale float64) (cache.LayoutKeyOpts, error) {
	h, err := cache.HashJSON(o.Config)
	if err != nil {
		return cache.LayoutKeyOpts{}, err
	}
	return cache.LayoutKeyOpts{ConfigHash: h, Scale: scale, Seed: o.Seed}, nil
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Region: o.Region,
		Width:  o.Width,
		Labels: o.Labels,
	}
}

// layoutOptions translates o into layout run options.
func (o *Options) layoutOptions(scale float64) []layout.Option {
	opts := []layout.Option{layout.WithLogger(o.Logger), layout.WithScale(scale)}
	if o.Seeded {
		opts = append(opts, layout.WithSeed(o.Seed))
	}
	if o.Materializer != nil {
		opts = append(opts, layout.WithMaterializer(o.Materializer))
	}
	if o.Committer != nil {
		opts = append(opts, layout.WithCommitter(o.Committer))
	}
	return opts
}
