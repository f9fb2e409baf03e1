package layout

import (
	"context"

	"github.com/matzehuels/cladding/pkg/core/geom"
	"github.com/matzehuels/cladding/pkg/core/grid"
)

// Panel is the request to create one element: a flat rectangle in 3D,
// extruded back toward its region by Thickness.
type Panel struct {
	RunID       string       `json:"runId"`
	RegionID    string       `json:"regionId"`
	RegionIndex int          `json:"regionIndex"`
	Index       int          `json:"index"`
	Sequence    int          `json:"sequence"`
	Corners     [4]geom.Vec3 `json:"corners"`
	Normal      geom.Vec3    `json:"normal"`
	Thickness   float64      `json:"thickness"`
	Trimmed     bool         `json:"trimmed"`
	Appearance  Appearance   `json:"appearance"`
}

// Back returns the corners of the extruded back face. A zero thickness
// gives the front face.
func (p Panel) Back() [4]geom.Vec3 {
	d := p.Normal.MulScalar(-p.Thickness)
	var out [4]geom.Vec3
	for i, c := range p.Corners {
		out[i] = c.Add(d)
	}
	return out
}

// Area returns the area of the front face.
func (p Panel) Area() float64 {
	return geom.PolygonArea(p.Corners[:])
}

func newPanel(runID string, rr *RegionResult, fp grid.Footprint, seq int, cfg Config) Panel {
	return Panel{
		RunID:       runID,
		RegionID:    rr.ID,
		RegionIndex: rr.Index,
		Index:       fp.Index,
		Sequence:    seq,
		Corners:     fp.Corners,
		Normal:      rr.Frame.Normal,
		Thickness:   cfg.Thickness,
		Trimmed:     fp.Trimmed,
		Appearance:  cfg.Appearance,
	}
}

// Panels rebuilds the panels of a finished run in creation order, as Run
// handed them to its materializer.
func Panels(res *Result) []Panel {
	var out []Panel
	for i := range res.Regions {
		rr := &res.Regions[i]
		for _, fp := range rr.Footprints {
			out = append(out, newPanel(res.RunID, rr, fp, len(out), res.Config))
		}
	}
	return out
}

// Materializer creates elements in the host scene.
type Materializer interface {
	Materialize(ctx context.Context, p Panel) error
}

// MaterializerFunc adapts a function to Materializer.
type MaterializerFunc func(ctx context.Context, p Panel) error

func (f MaterializerFunc) Materialize(ctx context.Context, p Panel) error { return f(ctx, p) }

// Committer finalizes a completed, non-preview run.
type Committer interface {
	Commit(ctx context.Context, res *Result) error
}

// CommitterFunc adapts a function to Committer.
type CommitterFunc func(ctx context.Context, res *Result) error

func (f CommitterFunc) Commit(ctx context.Context, res *Result) error { return f(ctx, res) }
