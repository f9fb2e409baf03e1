package sink

import (
	"cmp"
	"encoding/json"
	"slices"

	"github.com/matzehuels/cladding/pkg/core/geom"
	"github.com/matzehuels/cladding/pkg/core/layout"
)

// JSONOption configures [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	region  string
	corners bool
}

// WithJSONRegion exports only the region with the given id.
func WithJSONRegion(id string) JSONOption { return func(r *jsonRenderer) { r.region = id } }

// WithJSONCorners includes the world-space corners of every element.
func WithJSONCorners() JSONOption { return func(r *jsonRenderer) { r.corners = true } }

type jsonOutput struct {
	RunID       string              `json:"run_id"`
	Seed        uint64              `json:"seed"`
	Scale       float64             `json:"scale"`
	Pattern     string              `json:"pattern"`
	Anchor      string              `json:"anchor"`
	Created     int                 `json:"created"`
	Trimmed     int                 `json:"trimmed"`
	Regions     []jsonRegion        `json:"regions"`
	Pieces      []jsonPiece         `json:"pieces"`
	Diagnostics []layout.Diagnostic `json:"diagnostics,omitempty"`
}

type jsonRegion struct {
	ID       string        `json:"id"`
	Corner   string        `json:"corner,omitempty"`
	Skipped  bool          `json:"skipped,omitempty"`
	Error    string        `json:"error,omitempty"`
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	Rows     int           `json:"rows"`
	Elements []jsonElement `json:"elements,omitempty"`
}

type jsonElement struct {
	Index   int           `json:"index"`
	Row     int           `json:"row"`
	X       float64       `json:"x"`
	Y       float64       `json:"y"`
	Width   float64       `json:"width"`
	Height  float64       `json:"height"`
	Trimmed bool          `json:"trimmed,omitempty"`
	Corners *[4]geom.Vec3 `json:"corners,omitempty"`
}

// jsonPiece counts elements cut from one nominal size.
type jsonPiece struct {
	Length  float64 `json:"length"`
	Height  float64 `json:"height"`
	Full    int     `json:"full"`
	Trimmed int     `json:"trimmed"`
}

// RenderJSON exports the layout as a cut list: per region the sheet
// position of every element, plus a bill of pieces grouped by nominal
// size. Lengths are in scene units.
func RenderJSON(res *layout.Result, opts ...JSONOption) ([]byte, error) {
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		RunID:       res.RunID,
		Seed:        res.Seed,
		Scale:       res.Scale,
		Pattern:     string(res.Config.PatternStyle),
		Anchor:      string(res.Config.StartAnchor),
		Diagnostics: res.Diagnostics,
	}

	type size struct{ l, h float64 }
	pieces := map[size]*jsonPiece{}

	for i := range res.Regions {
		rr := &res.Regions[i]
		if r.region != "" && rr.ID != r.region {
			continue
		}
		jr := jsonRegion{ID: rr.ID, Corner: string(rr.Corner), Skipped: rr.Skipped, Error: rr.Error, Rows: rr.Rows}
		if !rr.Skipped {
			jr.Width, jr.Height = rr.LocalBounds.Width(), rr.LocalBounds.Height()
		}
		for _, fp := range rr.Footprints {
			el := jsonElement{
				Index: fp.Index, Row: fp.Row,
				X: fp.Sheet.Left, Y: fp.Sheet.Bottom,
				Width: fp.Width(), Height: fp.Height(),
				Trimmed: fp.Trimmed,
			}
			if r.corners {
				c := fp.Corners
				el.Corners = &c
			}
			jr.Elements = append(jr.Elements, el)

			k := size{fp.NominalLength, fp.NominalHeight}
			p, ok := pieces[k]
			if !ok {
				p = &jsonPiece{Length: k.l, Height: k.h}
				pieces[k] = p
			}
			if fp.Trimmed {
				p.Trimmed++
				out.Trimmed++
			} else {
				p.Full++
			}
			out.Created++
		}
		out.Regions = append(out.Regions, jr)
	}

	out.Pieces = make([]jsonPiece, 0, len(pieces))
	for _, p := range pieces {
		out.Pieces = append(out.Pieces, *p)
	}
	slices.SortFunc(out.Pieces, func(a, b jsonPiece) int {
		return cmp.Or(cmp.Compare(a.Length, b.Length), cmp.Compare(a.Height, b.Height))
	})

	return json.MarshalIndent(out, "", "  ")
}
