// Package grid lays rectangular elements over the extended bounds of a
// region, row by row, and clips them against the bounds.
//
// Rows are laid in strict row-major order and every row and column draws
// its size from a [sequence.Sequencer]; later pieces depend on earlier
// draws, so the iteration order is part of the output.
package grid

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/matzehuels/cladding/pkg/core/geom"
	"github.com/matzehuels/cladding/pkg/core/region"
	"github.com/matzehuels/cladding/pkg/core/sequence"
	"github.com/matzehuels/cladding/pkg/errors"
)

// eps is the tolerance used to decide whether a clipped element is trimmed.
const eps = geom.MinExtent

// Pattern is a bond pattern style.
type Pattern string

const (
	RunningBond Pattern = "running_bond"
	StackBond   Pattern = "stack_bond"
	// Herringbone is reserved and not laid by Generate.
	Herringbone Pattern = "herringbone"
)

// Footprint is one element clipped to the bounds.
type Footprint struct {
	Index         int          `json:"index"`
	Row           int          `json:"row"`
	Col           int          `json:"col"`
	Local         geom.Rect    `json:"local"`
	Sheet         geom.Rect    `json:"sheet"`
	Corners       [4]geom.Vec3 `json:"corners"`
	NominalLength float64      `json:"nominalLength"`
	NominalHeight float64      `json:"nominalHeight"`
	Trimmed       bool         `json:"trimmed"`
}

// Width returns the clipped width of the element.
func (f Footprint) Width() float64 { return f.Local.Width() }

// Height returns the clipped height of the element.
func (f Footprint) Height() float64 { return f.Local.Height() }

// Input describes one region's grid.
type Input struct {
	Frame  region.Frame
	Bounds geom.Rect // extended bounds in frame coordinates

	// SheetOrigin is subtracted from local rectangles to give sheet
	// coordinates, usually the lower-left of the unextended bounds.
	SheetOrigin geom.Vec2

	Lengths     *sequence.Sequencer
	Heights     *sequence.Sequencer
	JointLength float64
	JointWidth  float64
	Pattern     Pattern
	Anchor      Anchor

	// Jitter moves the start point by a random offset.
	Jitter bool
	// NaturalVariation perturbs sizes, joints and row offsets.
	NaturalVariation bool
	// Rand feeds Jitter and NaturalVariation.
	Rand *rand.Rand

	// SmallPieceRemoval fills rows with ConsolidateRow instead of clipping
	// on X.
	SmallPieceRemoval bool
	MinPiece          float64

	Caps Caps
}

// Output is the result of Generate.
type Output struct {
	Footprints []Footprint `json:"footprints"`
	Trimmed    int         `json:"trimmed"`
	Undersized int         `json:"undersized"`
	Rows       int         `json:"rows"`
	Start      geom.Vec2   `json:"start"`
	PatternW   float64     `json:"patternWidth"`
	PatternH   float64     `json:"patternHeight"`
	Capped     bool        `json:"capped"`
}

// Generate lays the grid described by in. Elements with no overlap on
// either axis are dropped without being counted. The context is checked
// once per row.
func Generate(ctx context.Context, in Input) (Output, error) {
	if err := in.check(); err != nil {
		return Output{}, err
	}
	g := &generator{in: in, caps: in.Caps.orDefault()}
	return g.run(ctx)
}

func (in Input) check() error {
	if in.Lengths == nil || in.Heights == nil {
		return errors.New(errors.ErrCodeConfiguration, "length and height sequencers are required")
	}
	if in.Pattern != RunningBond && in.Pattern != StackBond {
		return errors.New(errors.ErrCodeConfiguration, "pattern %q is not supported", in.Pattern)
	}
	if in.JointLength < 0 || in.JointWidth < 0 {
		return errors.New(errors.ErrCodeConfiguration, "joints must not be negative")
	}
	if (in.Jitter || in.NaturalVariation) && in.Rand == nil {
		return errors.New(errors.ErrCodeConfiguration, "jitter and natural variation need a generator")
	}
	if in.Bounds.Degenerate() {
		return errors.New(errors.ErrCodeDegenerateBounds, "bounds %.4g x %.4g below minimum extent",
			in.Bounds.Width(), in.Bounds.Height())
	}
	return nil
}

type generator struct {
	in   Input
	caps Caps
	out  Output

	avgLen, avgHeight float64
}

func (g *generator) run(ctx context.Context) (Output, error) {
	in := g.in
	b := in.Bounds
	g.avgLen, g.avgHeight = in.Lengths.Average(), in.Heights.Average()

	g.out.PatternW, g.out.PatternH = PatternSize(b, g.avgLen, g.avgHeight, in.JointLength, in.JointWidth, g.caps)
	start := ResolveAnchor(b, g.out.PatternW, g.out.PatternH, in.Anchor)
	if in.Jitter {
		j := Jitter(in.Rand, g.avgLen)
		start = geom.Vec2{X: start.X + j.X, Y: start.Y + j.Y}
	}
	g.out.Start = start

	anchor := ParseAnchor(string(in.Anchor))
	down := anchor.top()
	rowStep := g.avgHeight + in.JointWidth

	// cursor is the near edge of the next row: its bottom when laying
	// upward, its top when laying downward.
	cursor := start.Y
	if down {
		cursor = rollUp(start.Y+g.out.PatternH, b.Top-eps, rowStep)
	} else {
		cursor = rollDown(cursor, b.Bottom+eps, rowStep)
	}

	for row := 0; ; row++ {
		if (down && cursor <= b.Bottom+eps) || (!down && cursor >= b.Top-eps) {
			break
		}
		if row >= g.caps.MaxRows || len(g.out.Footprints) >= g.caps.MaxElements {
			g.out.Capped = true
			break
		}
		if err := ctx.Err(); err != nil {
			return Output{}, errors.Wrap(errors.ErrCodeCanceled, err, "grid generation interrupted at row %d", row)
		}

		h := g.vary(in.Heights.Next(), 0.1)
		y0, y1 := cursor, cursor+h
		if down {
			y0, y1 = cursor-h, cursor
		}

		if in.SmallPieceRemoval {
			g.consolidatedRow(row, y0, y1, h, anchor.right())
		} else {
			g.clippedRow(row, start.X, y0, y1, h, anchor.right())
		}
		g.out.Rows++

		adv := h + g.vary(in.JointWidth, 0.4)
		if down {
			cursor -= adv
		} else {
			cursor += adv
		}
	}

	return g.out, nil
}

// rowOffset returns the bond offset of a row.
func (g *generator) rowOffset(row int) float64 {
	var off float64
	if g.in.Pattern == RunningBond {
		off = float64(row%2) * (g.avgLen + g.in.JointLength) * 0.5
		if g.in.NaturalVariation {
			off += (g.in.Rand.Float64() - 0.5) * 0.6 * g.avgLen
		}
		return off
	}
	if g.in.NaturalVariation {
		off = (g.in.Rand.Float64() - 0.5) * 0.2 * g.avgLen
	}
	return off
}

func (g *generator) clippedRow(row int, startX, y0, y1, h float64, leftward bool) {
	b := g.in.Bounds
	step := g.avgLen + g.in.JointLength
	off := g.rowOffset(row)

	// cursor is the near edge of the next column, as for rows.
	var cursor float64
	if leftward {
		cursor = rollUp(startX+g.out.PatternW-off, b.Right-eps, step)
	} else {
		cursor = rollDown(startX+off, b.Left+eps, step)
	}

	for col := 0; ; col++ {
		if (leftward && cursor <= b.Left+eps) || (!leftward && cursor >= b.Right-eps) {
			return
		}
		if col >= g.caps.MaxCols || len(g.out.Footprints) >= g.caps.MaxElements {
			g.out.Capped = true
			return
		}

		l := g.vary(g.in.Lengths.Next(), 0.1)
		x0, x1 := cursor, cursor+l
		if leftward {
			x0, x1 = cursor-l, cursor
		}
		g.emit(row, col, geom.Rect{Left: x0, Right: x1, Bottom: y0, Top: y1}, l, h)

		adv := l + g.vary(g.in.JointLength, 0.4)
		if leftward {
			cursor -= adv
		} else {
			cursor += adv
		}
	}
}

func (g *generator) consolidatedRow(row int, y0, y1, h float64, leftward bool) {
	b := g.in.Bounds
	next := func() float64 { return g.vary(g.in.Lengths.Next(), 0.1) }

	lead := math.Mod(g.rowOffset(row), g.avgLen+g.in.JointLength)
	pieces := ConsolidateRow(b.Width(), g.in.MinPiece, g.in.JointLength, next, lead)

	for col, p := range pieces {
		if len(g.out.Footprints) >= g.caps.MaxElements {
			g.out.Capped = true
			return
		}
		x0 := b.Left + p.Offset
		if leftward {
			x0 = b.Right - p.Offset - p.Width
		}
		g.emit(row, col, geom.Rect{Left: x0, Right: x0 + p.Width, Bottom: y0, Top: y1}, p.Nominal, h)
	}
}

// emit clips r against the bounds and records the footprint.
func (g *generator) emit(row, col int, r geom.Rect, l, h float64) {
	clip, ok := r.Intersect(g.in.Bounds)
	if !ok {
		return
	}
	fp := Footprint{
		Index:         len(g.out.Footprints),
		Row:           row,
		Col:           col,
		Local:         clip,
		Sheet:         clip.Translate(geom.Vec2{X: -g.in.SheetOrigin.X, Y: -g.in.SheetOrigin.Y}),
		Corners:       g.in.Frame.Corners(clip),
		NominalLength: l,
		NominalHeight: h,
		Trimmed:       clip.Width() < l-eps || clip.Height() < h-eps,
	}
	if fp.Trimmed {
		g.out.Trimmed++
	}
	if g.in.MinPiece > 0 && (clip.Width() < g.in.MinPiece-eps || clip.Height() < g.in.MinPiece-eps) {
		g.out.Undersized++
	}
	g.out.Footprints = append(g.out.Footprints, fp)
}

// vary scales v by a random factor in [1-spread/2, 1+spread/2] when
// natural variation is on.
func (g *generator) vary(v, spread float64) float64 {
	if !g.in.NaturalVariation || v == 0 {
		return v
	}
	return v * (1 + (g.in.Rand.Float64()-0.5)*spread)
}

// rollUp returns the first of c, c+step, c+2·step, ... that is not below
// limit.
func rollUp(c, limit, step float64) float64 {
	if c >= limit || step <= 0 {
		return c
	}
	c += math.Ceil((limit-c)/step) * step
	for c < limit {
		c += step
	}
	return c
}

// rollDown returns the first of c, c-step, c-2·step, ... that is not above
// limit.
func rollDown(c, limit, step float64) float64 {
	if c <= limit || step <= 0 {
		return c
	}
	c -= math.Ceil((c-limit)/step) * step
	for c > limit {
		c -= step
	}
	return c
}
