package sink

import (
	"context"
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"

	"github.com/matzehuels/cladding/pkg/core/layout"
	"github.com/matzehuels/cladding/pkg/errors"
	"github.com/matzehuels/cladding/pkg/materialize"
)

// Mesh modes for [RenderSTL].
const (
	MeshPrism = "prism"
	MeshSolid = "solid"
)

// RenderSTL writes the elements of res to an STL file at path. Prism mode
// writes one exact closed box per element. Solid mode unions each
// region's elements and tessellates the result with cells marching cubes
// cells along its longest side.
func RenderSTL(ctx context.Context, res *layout.Result, path, mode string, cells int) (int, error) {
	var tris []*sdf.Triangle3
	switch mode {
	case MeshPrism, "":
		var m materialize.Mesh
		if err := forEachPanel(ctx, res, m.Materialize); err != nil {
			return 0, err
		}
		tris = m.Triangles()
	case MeshSolid:
		s := &materialize.Solid{Cells: cells}
		if err := forEachPanel(ctx, res, s.Materialize); err != nil {
			return 0, err
		}
		var err error
		if tris, err = s.Triangles(ctx); err != nil {
			return 0, err
		}
	default:
		return 0, errors.New(errors.ErrCodeInvalidInput, "unknown mesh mode %q (must be %s or %s)", mode, MeshPrism, MeshSolid)
	}
	if len(tris) == 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "layout has no elements to export")
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return 0, fmt.Errorf("write stl %s: %w", path, err)
	}
	return len(tris), nil
}

// forEachPanel replays the elements of a finished run as panels.
func forEachPanel(ctx context.Context, res *layout.Result, fn func(context.Context, layout.Panel) error) error {
	for _, p := range layout.Panels(res) {
		if err := fn(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
