package region

import (
	"github.com/matzehuels/cladding/pkg/core/geom"
	"github.com/matzehuels/cladding/pkg/errors"
)

// LocalBounds returns the bounding rectangle of boundary projected into f.
func LocalBounds(f Frame, boundary []geom.Vec3) geom.Rect {
	pts := make([]geom.Vec2, len(boundary))
	for i, p := range boundary {
		pts[i] = f.ToLocal(p)
	}
	return geom.BoundsOf(pts)
}

// ExtendBounds projects boundary into f and grows the resulting rectangle
// by margin on every side. A result narrower or shorter than
// [geom.MinExtent] is reported as DEGENERATE_BOUNDS.
func ExtendBounds(f Frame, boundary []geom.Vec3, margin float64) (geom.Rect, error) {
	ext := LocalBounds(f, boundary).Grow(margin)
	if ext.Degenerate() {
		return geom.Rect{}, errors.New(errors.ErrCodeDegenerateBounds,
			"bounds %.4g x %.4g below minimum extent", ext.Width(), ext.Height())
	}
	return ext, nil
}
