package materialize

import (
	"context"
	"sync"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/matzehuels/cladding/pkg/core/geom"
	"github.com/matzehuels/cladding/pkg/core/layout"
	"github.com/matzehuels/cladding/pkg/errors"
)

// DefaultCells is the marching cubes resolution along the longest side of
// a region's solid.
const DefaultCells = 200

// Solid collects panels per region and tessellates each region as one
// union of boxes. Joints narrower than a cell close up, so the result is
// the cladding's outer shell rather than individual elements.
type Solid struct {
	Cells int

	mu      sync.Mutex
	order   []string
	regions map[string][]layout.Panel
}

// Materialize implements layout.Materializer.
func (s *Solid) Materialize(_ context.Context, p layout.Panel) error {
	if p.Thickness <= 0 {
		return errors.New(errors.ErrCodeElementCreationFailure, "solid element %d needs a positive thickness", p.Index)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.regions == nil {
		s.regions = make(map[string][]layout.Panel)
	}
	key := p.RunID + "/" + p.RegionID
	if _, ok := s.regions[key]; !ok {
		s.order = append(s.order, key)
	}
	s.regions[key] = append(s.regions[key], p)
	return nil
}

// Triangles tessellates every collected region, in materialization order.
func (s *Solid) Triangles(ctx context.Context) ([]*sdf.Triangle3, error) {
	s.mu.Lock()
	order := append([]string(nil), s.order...)
	regions := make(map[string][]layout.Panel, len(s.regions))
	for k, v := range s.regions {
		regions[k] = v
	}
	s.mu.Unlock()

	cells := s.Cells
	if cells <= 0 {
		cells = DefaultCells
	}
	var out []*sdf.Triangle3
	for _, key := range order {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeCanceled, err, "tessellation interrupted")
		}
		tris, err := tessellate(regions[key], cells)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "tessellate %s", key)
		}
		out = append(out, tris...)
	}
	return out, nil
}

// basis is the frame shared by a region's panels: X and Y along the first
// panel's edges, Z along its normal.
type basis struct {
	origin, x, y, z geom.Vec3
}

func basisOf(p layout.Panel) (basis, bool) {
	x, okx := geom.Unit(p.Corners[1].Sub(p.Corners[0]))
	y, oky := geom.Unit(p.Corners[3].Sub(p.Corners[0]))
	z, okz := geom.Unit(p.Normal)
	return basis{origin: p.Corners[0], x: x, y: y, z: z}, okx && oky && okz
}

func (b basis) local(p geom.Vec3) v3.Vec {
	d := p.Sub(b.origin)
	return v3.Vec{X: d.Dot(b.x), Y: d.Dot(b.y), Z: d.Dot(b.z)}
}

func (b basis) world(v v3.Vec) geom.Vec3 {
	return b.origin.Add(b.x.MulScalar(v.X)).Add(b.y.MulScalar(v.Y)).Add(b.z.MulScalar(v.Z))
}

func tessellate(panels []layout.Panel, cells int) ([]*sdf.Triangle3, error) {
	if len(panels) == 0 {
		return nil, nil
	}
	b, ok := basisOf(panels[0])
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "degenerate panel %d", panels[0].Index)
	}

	boxes := make([]sdf.SDF3, 0, len(panels))
	for _, p := range panels {
		lo, hi := b.local(p.Corners[0]), b.local(p.Corners[2])
		size := v3.Vec{X: hi.X - lo.X, Y: hi.Y - lo.Y, Z: p.Thickness}
		box, err := sdf.Box3D(size, 0)
		if err != nil {
			return nil, err
		}
		center := v3.Vec{X: (lo.X + hi.X) / 2, Y: (lo.Y + hi.Y) / 2, Z: -p.Thickness / 2}
		boxes = append(boxes, sdf.Transform3D(box, sdf.Translate3d(center)))
	}

	tris := render.ToTriangles(sdf.Union3D(boxes...), render.NewMarchingCubesUniform(cells))
	out := make([]*sdf.Triangle3, 0, len(tris))
	for _, t := range tris {
		out = append(out, &sdf.Triangle3{b.world(t[0]), b.world(t[1]), b.world(t[2])})
	}
	return out, nil
}
