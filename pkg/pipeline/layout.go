package pipeline

import (
	"context"

	"github.com/matzehuels/cladding/pkg/core/layout"
	"github.com/matzehuels/cladding/pkg/core/units"
	"github.com/matzehuels/cladding/pkg/errors"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout runs the cladding layout over the scene in opts without
// consulting a cache. Configured lengths are converted into scene units
// first.
func GenerateLayout(ctx context.Context, opts Options) (*layout.Result, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	regions, err := opts.Scene.Regions()
	if err != nil {
		return nil, err
	}
	scale, err := sceneScale(opts)
	if err != nil {
		return nil, err
	}
	return layout.Run(ctx, regions, opts.Config, opts.layoutOptions(scale)...)
}

// sceneScale returns the factor converting config lengths into scene
// coordinates.
func sceneScale(opts Options) (float64, error) {
	cu, err := units.Parse(opts.Config.Unit)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeConfiguration, err, "config unit")
	}
	return opts.Scene.Scale(cu)
}
