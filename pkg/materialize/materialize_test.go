package materialize

import (
	"context"
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"

	"github.com/matzehuels/cladding/pkg/core/geom"
	"github.com/matzehuels/cladding/pkg/core/layout"
	"github.com/matzehuels/cladding/pkg/errors"
)

func panel(run string, seq int, x0, x1, y0, y1, t float64) layout.Panel {
	return layout.Panel{
		RunID:     run,
		RegionID:  "floor",
		Index:     seq,
		Sequence:  seq,
		Corners:   [4]geom.Vec3{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}},
		Normal:    geom.AxisZ,
		Thickness: t,
	}
}

func TestCollector(t *testing.T) {
	ctx := context.Background()
	c := NewCollector()
	for i := range 3 {
		if err := c.Materialize(ctx, panel("a", i, 0, 1, 0, 1, 0)); err != nil {
			t.Fatal(err)
		}
	}
	_ = c.Materialize(ctx, panel("b", 0, 0, 1, 0, 1, 0))

	if err := c.Restyle(ctx, panel("a", 1, 0, 0, 0, 0, 0), 0.3); err != nil {
		t.Fatal(err)
	}
	els := c.Elements("a")
	if len(els) != 3 || els[1].Alpha != 0.3 || els[0].Alpha != 1 {
		t.Errorf("elements = %+v", els)
	}
	if err := c.Restyle(ctx, panel("a", 9, 0, 0, 0, 0, 0), 1); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Restyle(missing) = %v", err)
	}

	if err := c.Remove(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if got := c.Runs(); len(got) != 1 || got[0] != "b" {
		t.Errorf("runs = %v", got)
	}
	if len(c.Panels("a")) != 0 {
		t.Error("removed run still has panels")
	}
}

func meshVolume(tris []*sdf.Triangle3) float64 {
	var v float64
	for _, t := range tris {
		v += t[0].Dot(t[1].Cross(t[2])) / 6
	}
	return v
}

func TestPrism(t *testing.T) {
	tests := []struct {
		name   string
		p      layout.Panel
		tris   int
		volume float64
	}{
		{"flat", panel("a", 0, 0, 800, 0, 450, 0), 2, 0},
		{"extruded", panel("a", 0, 0, 800, 0, 450, 20), 12, 800 * 450 * 20},
		{"offset", panel("a", 0, 100, 200, 300, 350, 10), 12, 100 * 50 * 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tris := Prism(tt.p)
			if len(tris) != tt.tris {
				t.Fatalf("triangles = %d, want %d", len(tris), tt.tris)
			}
			if tt.p.Thickness > 0 {
				if v := meshVolume(tris); math.Abs(v-tt.volume) > 1e-6 {
					t.Errorf("volume = %v, want %v (outward winding)", v, tt.volume)
				}
			}
		})
	}
}

func TestMesh(t *testing.T) {
	var m Mesh
	_ = m.Materialize(context.Background(), panel("a", 0, 0, 1, 0, 1, 1))
	_ = m.Materialize(context.Background(), panel("a", 1, 2, 3, 0, 1, 1))
	if got := len(m.Triangles()); got != 24 {
		t.Errorf("triangles = %d, want 24", got)
	}
}

func TestSolid(t *testing.T) {
	s := &Solid{Cells: 40}
	ctx := context.Background()
	if err := s.Materialize(ctx, panel("a", 0, 0, 100, 0, 50, 20)); err != nil {
		t.Fatal(err)
	}
	if err := s.Materialize(ctx, panel("a", 0, 0, 100, 0, 50, 0)); !errors.Is(err, errors.ErrCodeElementCreationFailure) {
		t.Errorf("zero thickness = %v", err)
	}

	tris, err := s.Triangles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tris) == 0 {
		t.Fatal("no triangles")
	}
	for _, tr := range tris {
		for _, v := range tr {
			if v.X < -5 || v.X > 105 || v.Y < -5 || v.Y > 55 || v.Z < -25 || v.Z > 5 {
				t.Fatalf("vertex %v outside the panel box", v)
			}
		}
	}
}

func TestSolidCanceled(t *testing.T) {
	s := &Solid{}
	_ = s.Materialize(context.Background(), panel("a", 0, 0, 100, 0, 50, 20))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Triangles(ctx); !errors.Is(err, errors.ErrCodeCanceled) {
		t.Errorf("Triangles() = %v, want CANCELED", err)
	}
}
