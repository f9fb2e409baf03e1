package layout

import (
	"fmt"
	"math"

	"github.com/matzehuels/cladding/pkg/core/grid"
	"github.com/matzehuels/cladding/pkg/core/region"
	"github.com/matzehuels/cladding/pkg/core/sequence"
	"github.com/matzehuels/cladding/pkg/core/units"
	"github.com/matzehuels/cladding/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultAnchor is the start anchor used when none is configured.
	DefaultAnchor = grid.Center

	// DefaultPattern is the bond pattern used when none is configured.
	DefaultPattern = grid.RunningBond

	// DefaultGhostDelayMillis is the delay between ghost updates of
	// consecutive elements.
	DefaultGhostDelayMillis = 10

	// fallbackThreshold replaces non-positive perpendicular thresholds.
	fallbackThreshold = region.DefaultPerpendicularThreshold
)

// DefaultAppearance is the neutral grey given to elements when no
// appearance is configured.
var DefaultAppearance = Appearance{Name: "cladding", R: 122, G: 122, B: 122}

// ValidPatterns is the set of accepted pattern names.
var ValidPatterns = map[grid.Pattern]bool{
	grid.RunningBond: true,
	grid.StackBond:   true,
	grid.Herringbone: true,
}

// =============================================================================
// Config
// =============================================================================

// Appearance is the material given to created elements.
type Appearance struct {
	Name string `json:"name" toml:"name"`
	R    uint8  `json:"r" toml:"r"`
	G    uint8  `json:"g" toml:"g"`
	B    uint8  `json:"b" toml:"b"`
}

// Hex returns the appearance color as #rrggbb.
func (a Appearance) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", a.R, a.G, a.B)
}

// Config is the immutable configuration of one layout run. Lengths are in
// Unit; [Config.Normalize] converts them to geometry units.
type Config struct {
	Unit string `json:"unit" toml:"unit"`

	ElementLengths []float64 `json:"elementLengths" toml:"elementLengths"`
	ElementHeights []float64 `json:"elementHeights" toml:"elementHeights"`
	Thickness      float64   `json:"thickness" toml:"thickness"`
	JointLength    float64   `json:"jointLength" toml:"jointLength"`
	JointWidth     float64   `json:"jointWidth" toml:"jointWidth"`

	PatternStyle  grid.Pattern `json:"patternStyle" toml:"patternStyle"`
	StartAnchor   grid.Anchor  `json:"startAnchor" toml:"startAnchor"`
	StartRowIndex int          `json:"startRowIndex" toml:"startRowIndex"`

	RandomizeLengths         bool   `json:"randomizeLengths" toml:"randomizeLengths"`
	RandomizeHeights         bool   `json:"randomizeHeights" toml:"randomizeHeights"`
	SynchronizeAcrossRegions bool   `json:"synchronizeAcrossRegions" toml:"synchronizeAcrossRegions"`
	Seed                     uint64 `json:"seed,omitempty" toml:"seed"`
	NaturalVariation         bool   `json:"naturalVariation" toml:"naturalVariation"`
	StartWithFullPiece       bool   `json:"startWithFullPiece" toml:"startWithFullPiece"`

	CavityDistance           float64 `json:"cavityDistance" toml:"cavityDistance"`
	PreserveCorners          bool    `json:"preserveCorners" toml:"preserveCorners"`
	PerpendicularThreshold   float64 `json:"perpendicularThreshold" toml:"perpendicularThreshold"`
	ForceHorizontalAlignment bool    `json:"forceHorizontalAlignment" toml:"forceHorizontalAlignment"`

	SmallPieceRemoval bool    `json:"smallPieceRemoval" toml:"smallPieceRemoval"`
	MinPieceSize      float64 `json:"minPieceSize" toml:"minPieceSize"`
	MinRegionSize     float64 `json:"minRegionSize" toml:"minRegionSize"`

	MaxRows     int `json:"maxRows" toml:"maxRows"`
	MaxCols     int `json:"maxCols" toml:"maxCols"`
	MaxElements int `json:"maxElements" toml:"maxElements"`

	Appearance       Appearance `json:"appearance" toml:"appearance"`
	GhostDelayMillis int        `json:"ghostDelayMillis" toml:"ghostDelayMillis"`
}

// DefaultConfig returns the built-in configuration for u.
func DefaultConfig(u units.Unit) Config {
	d := units.DefaultsFor(u)
	return Config{
		Unit:                     string(u),
		ElementLengths:           d.Lengths,
		ElementHeights:           d.Heights,
		Thickness:                d.Thickness,
		JointLength:              d.Joint,
		JointWidth:               d.Joint,
		PatternStyle:             DefaultPattern,
		StartAnchor:              DefaultAnchor,
		SynchronizeAcrossRegions: true,
		Seed:                     sequence.DefaultSeed,
		CavityDistance:           d.Cavity,
		PreserveCorners:          true,
		PerpendicularThreshold:   region.DefaultPerpendicularThreshold,
		ForceHorizontalAlignment: true,
		MinPieceSize:             d.MinPiece,
		MinRegionSize:            d.MinRegionLen,
		MaxRows:                  grid.DefaultCaps.MaxRows,
		MaxCols:                  grid.DefaultCaps.MaxCols,
		MaxElements:              grid.DefaultCaps.MaxElements,
		Appearance:               DefaultAppearance,
		GhostDelayMillis:         DefaultGhostDelayMillis,
	}
}

// Caps returns the grid caps of c.
func (c Config) Caps() grid.Caps {
	return grid.Caps{MaxRows: c.MaxRows, MaxCols: c.MaxCols, MaxElements: c.MaxElements}
}

// Diagnostic records a recovered problem: a configuration fallback, a
// skipped region or a failed element.
type Diagnostic struct {
	RegionID string      `json:"regionId,omitempty"`
	Code     errors.Code `json:"code"`
	Message  string      `json:"message"`
}

func (d Diagnostic) String() string {
	if d.RegionID != "" {
		return fmt.Sprintf("%s [%s] %s", d.Code, d.RegionID, d.Message)
	}
	return fmt.Sprintf("%s %s", d.Code, d.Message)
}

func diagnose(regionID string, err error) Diagnostic {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return Diagnostic{RegionID: regionID, Code: code, Message: errors.UserMessage(err)}
}

// Normalize replaces every invalid value of c with the unit default,
// recording one CONFIGURATION_ERROR diagnostic per fallback, and multiplies
// all lengths by scale. The result is in geometry units.
//
// Normalize never fails; a configuration is always usable after it.
func (c Config) Normalize(scale float64) (Config, []Diagnostic) {
	var diags []Diagnostic
	fallback := func(field string, format string, args ...any) {
		diags = append(diags, Diagnostic{
			Code:    errors.ErrCodeConfiguration,
			Message: field + ": " + fmt.Sprintf(format, args...),
		})
	}

	u, err := units.Parse(c.Unit)
	if err != nil {
		fallback("unit", "%s, using %s", errors.UserMessage(err), units.Default)
		u = units.Default
	}
	c.Unit = string(u)
	d := units.DefaultsFor(u)

	if !(scale > 0) || math.IsInf(scale, 0) {
		fallback("scale", "%v is not positive, using 1", scale)
		scale = 1
	}

	c.ElementLengths = catalog(c.ElementLengths, d.Lengths, "elementLengths", fallback)
	c.ElementHeights = catalog(c.ElementHeights, d.Heights, "elementHeights", fallback)

	c.Thickness = nonNegative(c.Thickness, d.Thickness, "thickness", fallback)
	c.JointLength = nonNegative(c.JointLength, d.Joint, "jointLength", fallback)
	c.JointWidth = nonNegative(c.JointWidth, d.Joint, "jointWidth", fallback)
	c.MinPieceSize = nonNegative(c.MinPieceSize, d.MinPiece, "minPieceSize", fallback)
	c.MinRegionSize = nonNegative(c.MinRegionSize, d.MinRegionLen, "minRegionSize", fallback)
	if math.IsNaN(c.CavityDistance) || math.IsInf(c.CavityDistance, 0) {
		fallback("cavityDistance", "%v is not finite, using %v", c.CavityDistance, d.Cavity)
		c.CavityDistance = d.Cavity
	}

	if shortest := minOf(c.ElementLengths); c.SmallPieceRemoval && c.MinPieceSize > shortest {
		fallback("minPieceSize", "%v exceeds the shortest length, using %v", c.MinPieceSize, shortest)
		c.MinPieceSize = shortest
	}

	switch {
	case c.PatternStyle == "":
		c.PatternStyle = DefaultPattern
	case c.PatternStyle == grid.Herringbone:
		fallback("patternStyle", "herringbone is reserved, using %s", DefaultPattern)
		c.PatternStyle = DefaultPattern
	case !ValidPatterns[c.PatternStyle]:
		fallback("patternStyle", "unknown pattern %q, using %s", c.PatternStyle, DefaultPattern)
		c.PatternStyle = DefaultPattern
	}

	switch {
	case c.StartAnchor == "":
		c.StartAnchor = DefaultAnchor
	case !c.StartAnchor.Valid():
		fallback("startAnchor", "unknown anchor %q, using %s", c.StartAnchor, grid.Center)
		c.StartAnchor = grid.ParseAnchor(string(c.StartAnchor))
	}

	if !(c.PerpendicularThreshold > 0) {
		c.PerpendicularThreshold = fallbackThreshold
	}
	if c.SynchronizeAcrossRegions && c.Seed == 0 {
		c.Seed = sequence.DefaultSeed
	}

	if c.MaxRows <= 0 {
		c.MaxRows = grid.DefaultCaps.MaxRows
	}
	if c.MaxCols <= 0 {
		c.MaxCols = grid.DefaultCaps.MaxCols
	}
	if c.MaxElements <= 0 {
		c.MaxElements = grid.DefaultCaps.MaxElements
	}
	if c.Appearance.Name == "" {
		c.Appearance = DefaultAppearance
	}
	if c.GhostDelayMillis < 0 {
		c.GhostDelayMillis = DefaultGhostDelayMillis
	}

	c.scale(scale)
	return c, diags
}

func (c *Config) scale(k float64) {
	if k == 1 {
		return
	}
	mul := func(vs []float64) []float64 {
		out := make([]float64, len(vs))
		for i, v := range vs {
			out[i] = v * k
		}
		return out
	}
	c.ElementLengths = mul(c.ElementLengths)
	c.ElementHeights = mul(c.ElementHeights)
	c.Thickness *= k
	c.JointLength *= k
	c.JointWidth *= k
	c.CavityDistance *= k
	c.MinPieceSize *= k
	c.MinRegionSize *= k
}

func catalog(values, def []float64, field string, fallback func(string, string, ...any)) []float64 {
	if len(values) == 0 {
		fallback(field, "empty, using defaults")
		return append([]float64(nil), def...)
	}
	for _, v := range values {
		if !(v > 0) || math.IsInf(v, 0) {
			fallback(field, "%v is not positive, using defaults", v)
			return append([]float64(nil), def...)
		}
	}
	return append([]float64(nil), values...)
}

func nonNegative(v, def float64, field string, fallback func(string, string, ...any)) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		fallback(field, "%v is invalid, using %v", v, def)
		return def
	}
	return v
}

func minOf(vs []float64) float64 {
	m := math.Inf(1)
	for _, v := range vs {
		m = math.Min(m, v)
	}
	return m
}
