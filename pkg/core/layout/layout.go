// Package layout runs the cladding layout over a set of regions.
//
// For every region, in index order, Run classifies its corner against the
// other regions, offsets it by the cavity, builds its frame and extended
// bounds, lays the element grid and hands each element to a
// [Materializer]. Region and element failures are recorded as diagnostics
// and skipped; only a failing [Committer] aborts the run.
//
//	res, err := layout.Run(ctx, regions, layout.DefaultConfig(units.Millimeter),
//	    layout.WithLogger(logger),
//	    layout.WithMaterializer(scene),
//	)
package layout

import (
	"context"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/cladding/pkg/core/geom"
	"github.com/matzehuels/cladding/pkg/core/grid"
	"github.com/matzehuels/cladding/pkg/core/region"
	"github.com/matzehuels/cladding/pkg/core/sequence"
	"github.com/matzehuels/cladding/pkg/errors"
	"github.com/matzehuels/cladding/pkg/observability"
)

// Result is the outcome of a Run.
type Result struct {
	RunID       string         `json:"runId"`
	Seed        uint64         `json:"seed"`
	Scale       float64        `json:"scale"`
	Preview     bool           `json:"preview"`
	Config      Config         `json:"config"`
	Regions     []RegionResult `json:"regions"`
	Created     int            `json:"created"`
	Trimmed     int            `json:"trimmed"`
	Failed      int            `json:"failed"`
	Skipped     int            `json:"skipped"`
	Diagnostics []Diagnostic   `json:"diagnostics,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// RegionResult is the layout of one region. A skipped region carries only
// its identity and the error that skipped it.
type RegionResult struct {
	ID          string           `json:"id"`
	Index       int              `json:"index"`
	Skipped     bool             `json:"skipped,omitempty"`
	Error       string           `json:"error,omitempty"`
	Corner      region.Corner    `json:"corner,omitempty"`
	Cavity      region.Cavity    `json:"cavity"`
	Frame       region.Frame     `json:"frame"`
	LocalBounds geom.Rect        `json:"localBounds"`
	Bounds      geom.Rect        `json:"bounds"`
	Seed        uint64           `json:"seed"`
	Start       geom.Vec2        `json:"start"`
	Rows        int              `json:"rows"`
	Capped      bool             `json:"capped,omitempty"`
	Footprints  []grid.Footprint `json:"footprints"`
	Created     int              `json:"created"`
	Trimmed     int              `json:"trimmed"`
	Undersized  int              `json:"undersized"`
	Failed      int              `json:"failed"`
}

// Sheet returns the unextended bounds in sheet coordinates, with the
// lower-left corner at the origin.
func (rr RegionResult) Sheet() geom.Rect {
	return geom.Rect{Right: rr.LocalBounds.Width(), Top: rr.LocalBounds.Height()}
}

// Run lays out regions with cfg. It returns the result gathered so far
// together with a CANCELED error when ctx ends, and a COMMIT_FAILURE error
// when the committer fails.
func Run(ctx context.Context, regions []region.Region, cfg Config, opts ...Option) (*Result, error) {
	o := newRunOptions(opts)
	start := time.Now()

	norm, diags := cfg.Normalize(o.scale)
	res := &Result{
		RunID:       uuid.NewString(),
		Scale:       o.scale,
		Preview:     o.preview,
		Config:      norm,
		Regions:     make([]RegionResult, 0, len(regions)),
		Diagnostics: diags,
		CreatedAt:   start.UTC(),
	}
	for _, d := range diags {
		o.logger.Warn("configuration fallback", "code", d.Code, "detail", d.Message)
	}

	switch {
	case norm.SynchronizeAcrossRegions:
		res.Seed = norm.Seed
	case o.seeded:
		res.Seed = o.seed
	default:
		res.Seed = rand.Uint64()
	}

	hooks := observability.Layout()
	hooks.OnRunStart(ctx, res.RunID, len(regions))
	o.logger.Debug("layout started", "run", res.RunID, "regions", len(regions), "seed", res.Seed)

	err := run(ctx, res, region.WithSiblings(regions), norm, o)
	if err == nil && o.committer != nil && !o.preview {
		if cerr := o.committer.Commit(ctx, res); cerr != nil {
			err = errors.Wrap(errors.ErrCodeCommitFailure, cerr, "commit run %s", res.RunID)
		}
	}

	d := time.Since(start)
	hooks.OnRunComplete(ctx, res.RunID, res.Created, res.Trimmed, d, err)
	if err != nil {
		o.logger.Error("layout aborted", "run", res.RunID, "err", err)
		return res, err
	}
	o.logger.Info("layout complete",
		"regions", len(res.Regions),
		"created", res.Created,
		"trimmed", res.Trimmed,
		"skipped", res.Skipped,
		"duration", d)
	return res, nil
}

func run(ctx context.Context, res *Result, regions []region.Region, cfg Config, o runOptions) error {
	hooks := observability.Layout()
	minArea := cfg.MinRegionSize * cfg.MinRegionSize
	seq := 0

	for i, r := range regions {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(errors.ErrCodeCanceled, err, "layout interrupted before region %d", i)
		}
		if r.ID == "" {
			r.ID = regionID(i)
		}
		regionStart := time.Now()

		rr, err := layoutRegion(ctx, i, r, cfg, res.Seed, minArea)
		if !errors.Recoverable(err) {
			return err
		}
		if err != nil {
			res.Skipped++
			res.Diagnostics = append(res.Diagnostics, diagnose(r.ID, err))
			res.Regions = append(res.Regions, RegionResult{ID: r.ID, Index: i, Skipped: true, Error: errors.UserMessage(err)})
			o.logger.Warn("region skipped", "region", r.ID, "err", err)
			hooks.OnRegionComplete(ctx, r.ID, 0, 0, time.Since(regionStart), err)
			continue
		}

		// The whole region is generated before any element is handed out.
		kept := rr.Footprints[:0]
		for _, fp := range rr.Footprints {
			if o.materializer != nil {
				if err := o.materializer.Materialize(ctx, newPanel(res.RunID, &rr, fp, seq, cfg)); err != nil {
					rr.Failed++
					res.Diagnostics = append(res.Diagnostics, diagnose(r.ID,
						errors.Wrap(errors.ErrCodeElementCreationFailure, err, "element %d", fp.Index)))
					continue
				}
			}
			kept = append(kept, fp)
			seq++
			rr.Created++
			if fp.Trimmed {
				rr.Trimmed++
			}
		}

		rr.Footprints = kept
		res.Created += rr.Created
		res.Trimmed += rr.Trimmed
		res.Failed += rr.Failed
		res.Regions = append(res.Regions, rr)

		o.logger.Info("region laid out",
			"region", rr.ID,
			"corner", rr.Corner,
			"elements", rr.Created,
			"trimmed", rr.Trimmed,
			"failed", rr.Failed)
		hooks.OnRegionComplete(ctx, rr.ID, rr.Created, rr.Trimmed, time.Since(regionStart), nil)
	}
	return nil
}

func layoutRegion(ctx context.Context, i int, r region.Region, cfg Config, base uint64, minArea float64) (RegionResult, error) {
	rr := RegionResult{ID: r.ID, Index: i}
	if err := r.Validate(minArea); err != nil {
		return rr, err
	}

	rr.Corner = region.Classify(r.Normal, r.Siblings, cfg.PerpendicularThreshold)
	rr.Cavity = region.ComputeCavity(r.Normal, cfg.CavityDistance, rr.Corner, cfg.PreserveCorners)

	frame, err := region.BuildFrame(r, cfg.ForceHorizontalAlignment, rr.Cavity.Offset)
	if err != nil {
		return rr, err
	}
	rr.Frame = frame
	rr.LocalBounds = region.LocalBounds(frame, r.Boundary)
	if rr.Bounds, err = region.ExtendBounds(frame, r.Boundary, rr.Cavity.Margin); err != nil {
		return rr, err
	}

	rr.Seed = sequence.SeedFor(base, i)
	rng := sequence.NewRand(rr.Seed)
	lengths, err := sequence.New(cfg.ElementLengths, sequence.ModeFor(cfg.RandomizeLengths), rng)
	if err != nil {
		return rr, err
	}
	heights, err := sequence.New(cfg.ElementHeights, sequence.ModeFor(cfg.RandomizeHeights), rng)
	if err != nil {
		return rr, err
	}
	heights.Rotate(cfg.StartRowIndex)

	out, err := grid.Generate(ctx, grid.Input{
		Frame:             frame,
		Bounds:            rr.Bounds,
		SheetOrigin:       rr.LocalBounds.Min(),
		Lengths:           lengths,
		Heights:           heights,
		JointLength:       cfg.JointLength,
		JointWidth:        cfg.JointWidth,
		Pattern:           cfg.PatternStyle,
		Anchor:            cfg.StartAnchor,
		Jitter:            cfg.RandomizeLengths && !cfg.StartWithFullPiece,
		NaturalVariation:  cfg.NaturalVariation,
		Rand:              rng,
		SmallPieceRemoval: cfg.SmallPieceRemoval,
		MinPiece:          cfg.MinPieceSize,
		Caps:              cfg.Caps(),
	})
	if err != nil {
		return rr, err
	}
	rr.Footprints = out.Footprints
	rr.Start = out.Start
	rr.Rows = out.Rows
	rr.Capped = out.Capped
	rr.Undersized = out.Undersized
	return rr, nil
}

func regionID(i int) string {
	return "region-" + strconv.Itoa(i)
}
