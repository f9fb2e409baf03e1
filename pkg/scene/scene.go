// Package scene reads and writes the region files the layout runs on.
//
// A scene lists planar regions with their boundary points and, optionally,
// their outward normals. JSON and TOML carry the same structure:
//
//	{
//	  "unit": "mm",
//	  "regions": [
//	    {"id": "floor", "points": [[0,0,0], [1000,0,0], [1000,1000,0], [0,1000,0]]},
//	    {"id": "wall", "points": [[0,0,0], [0,1000,0], [0,1000,1000], [0,0,1000]], "normal": [1,0,0]}
//	  ]
//	}
//
//	unit = "mm"
//
//	[[regions]]
//	id = "floor"
//	points = [[0,0,0], [1000,0,0], [1000,1000,0], [0,1000,0]]
//
// A missing normal is computed from the boundary winding (Newell's
// method), so counter-clockwise points seen from outside face outward.
// A missing id becomes "region-N".
package scene

import (
	"fmt"

	"github.com/matzehuels/cladding/pkg/core/geom"
	"github.com/matzehuels/cladding/pkg/core/region"
	"github.com/matzehuels/cladding/pkg/core/units"
	"github.com/matzehuels/cladding/pkg/errors"
)

// Scene is the serialized form of a set of regions.
type Scene struct {
	Unit    string       `json:"unit,omitempty" toml:"unit,omitempty"`
	Regions []RegionSpec `json:"regions" toml:"regions"`
}

// RegionSpec is one region as it appears in a file.
type RegionSpec struct {
	ID     string      `json:"id,omitempty" toml:"id,omitempty"`
	Points [][]float64 `json:"points" toml:"points"`
	Normal []float64   `json:"normal,omitempty" toml:"normal,omitempty"`
}

// GeometryUnit returns the unit of the scene's coordinates.
func (s *Scene) GeometryUnit() (units.Unit, error) {
	u, err := units.Parse(s.Unit)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidScene, err, "scene unit")
	}
	return u, nil
}

// Scale returns the factor converting lengths given in configUnit into
// scene coordinates.
func (s *Scene) Scale(configUnit units.Unit) (float64, error) {
	u, err := s.GeometryUnit()
	if err != nil {
		return 0, err
	}
	return units.Scale(configUnit, u), nil
}

// Regions converts the scene into layout regions. Structural problems
// (wrong point arity, duplicate ids) are INVALID_SCENE errors; geometric
// problems are left to region validation during the run.
func (s *Scene) Regions() ([]region.Region, error) {
	out := make([]region.Region, len(s.Regions))
	seen := make(map[string]bool, len(s.Regions))
	for i, spec := range s.Regions {
		id := spec.ID
		if id == "" {
			id = fmt.Sprintf("region-%d", i)
		}
		if seen[id] {
			return nil, errors.New(errors.ErrCodeInvalidScene, "duplicate region id %q", id)
		}
		seen[id] = true

		pts := make([]geom.Vec3, len(spec.Points))
		for j, p := range spec.Points {
			v, err := vec(p)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "region %q point %d", id, j)
			}
			pts[j] = v
		}

		var n geom.Vec3
		if spec.Normal != nil {
			v, err := vec(spec.Normal)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "region %q normal", id)
			}
			n = v
		} else {
			n, _ = geom.Unit(geom.Newell(pts))
		}
		out[i] = region.Region{ID: id, Boundary: pts, Normal: n}
	}
	return out, nil
}

// FromRegions builds a scene from regions, writing every normal
// explicitly.
func FromRegions(u units.Unit, regions []region.Region) *Scene {
	s := &Scene{Unit: string(u), Regions: make([]RegionSpec, len(regions))}
	for i, r := range regions {
		spec := RegionSpec{
			ID:     r.ID,
			Points: make([][]float64, len(r.Boundary)),
			Normal: []float64{r.Normal.X, r.Normal.Y, r.Normal.Z},
		}
		for j, p := range r.Boundary {
			spec.Points[j] = []float64{p.X, p.Y, p.Z}
		}
		s.Regions[i] = spec
	}
	return s
}

func vec(p []float64) (geom.Vec3, error) {
	if len(p) != 3 {
		return geom.Vec3{}, fmt.Errorf("want 3 coordinates, got %d", len(p))
	}
	return geom.Vec3{X: p[0], Y: p[1], Z: p[2]}, nil
}
