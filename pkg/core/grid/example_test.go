package grid_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/cladding/pkg/core/geom"
	"github.com/matzehuels/cladding/pkg/core/grid"
	"github.com/matzehuels/cladding/pkg/core/region"
	"github.com/matzehuels/cladding/pkg/core/sequence"
)

func ExampleResolveAnchor() {
	bounds := geom.Rect{Left: 0, Right: 100, Bottom: 0, Top: 50}
	start := grid.ResolveAnchor(bounds, 80, 40, grid.Center)
	fmt.Println(start.X, start.Y)
	// Output: 10 5
}

func ExampleConsolidateRow() {
	next := func() float64 { return 900 }
	for _, p := range grid.ConsolidateRow(2000, 150, 3, next, 0) {
		fmt.Printf("%.0f at %.0f\n", p.Width, p.Offset)
	}
	// Output:
	// 900 at 0
	// 900 at 903
	// 194 at 1806
}

func ExampleGenerate() {
	lengths, _ := sequence.New([]float64{800, 900, 1000}, sequence.Sequential, nil)
	heights, _ := sequence.New([]float64{450, 300}, sequence.Sequential, nil)
	bounds := geom.Rect{Left: 0, Right: 1000, Bottom: 0, Top: 1000}

	out, err := grid.Generate(context.Background(), grid.Input{
		Frame:       region.Frame{X: geom.AxisX, Y: geom.AxisY, Normal: geom.AxisZ},
		Bounds:      bounds,
		Lengths:     lengths,
		Heights:     heights,
		JointLength: 3,
		JointWidth:  3,
		Pattern:     grid.RunningBond,
		Anchor:      grid.TopLeft,
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	first := out.Footprints[0].Local
	fmt.Printf("[%.0f,%.0f] x [%.0f,%.0f]\n", first.Left, first.Right, first.Bottom, first.Top)
	// Output: [0,800] x [550,1000]
}
