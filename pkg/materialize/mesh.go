package materialize

import (
	"context"
	"sync"

	"github.com/deadsy/sdfx/sdf"

	"github.com/matzehuels/cladding/pkg/core/geom"
	"github.com/matzehuels/cladding/pkg/core/layout"
)

// Prism returns the closed triangle mesh of a panel: the front face, the
// back face offset by the thickness and four sides. Faces wind
// counter-clockwise seen from outside. A panel without thickness gives
// only its two front triangles.
func Prism(p layout.Panel) []*sdf.Triangle3 {
	f := p.Corners
	if p.Thickness <= 0 {
		return []*sdf.Triangle3{tri(f[0], f[1], f[2]), tri(f[0], f[2], f[3])}
	}
	b := p.Back()
	out := []*sdf.Triangle3{
		tri(f[0], f[1], f[2]), tri(f[0], f[2], f[3]),
		tri(b[0], b[2], b[1]), tri(b[0], b[3], b[2]),
	}
	for i := range 4 {
		j := (i + 1) % 4
		out = append(out, tri(b[i], b[j], f[j]), tri(b[i], f[j], f[i]))
	}
	return out
}

func tri(a, b, c geom.Vec3) *sdf.Triangle3 {
	return &sdf.Triangle3{a, b, c}
}

// Mesh accumulates the prisms of every materialized panel.
type Mesh struct {
	mu   sync.Mutex
	tris []*sdf.Triangle3
}

// Materialize implements layout.Materializer.
func (m *Mesh) Materialize(_ context.Context, p layout.Panel) error {
	t := Prism(p)
	m.mu.Lock()
	m.tris = append(m.tris, t...)
	m.mu.Unlock()
	return nil
}

// Triangles returns the accumulated triangles.
func (m *Mesh) Triangles() []*sdf.Triangle3 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*sdf.Triangle3(nil), m.tris...)
}
