package region

import (
	"math"

	"github.com/matzehuels/cladding/pkg/core/geom"
)

// Corner labels how a region meets the other regions of a run.
type Corner string

const (
	Internal Corner = "internal"
	External Corner = "external"
)

// DefaultPerpendicularThreshold is the |dot| below which two normals count
// as perpendicular.
const DefaultPerpendicularThreshold = 0.1

// Classify labels a region internal when at least one sibling normal is
// nearly perpendicular to its own normal, external otherwise.
//
// The test only compares normal directions. Two perpendicular regions far
// apart in space are still reported as internal.
func Classify(normal geom.Vec3, siblings []geom.Vec3, threshold float64) Corner {
	if PerpendicularCount(normal, siblings, threshold) > 0 {
		return Internal
	}
	return External
}

// PerpendicularCount returns how many siblings are nearly perpendicular to
// normal. Zero-length siblings are ignored.
func PerpendicularCount(normal geom.Vec3, siblings []geom.Vec3, threshold float64) int {
	if threshold <= 0 {
		threshold = DefaultPerpendicularThreshold
	}
	n, ok := geom.Unit(normal)
	if !ok {
		return 0
	}
	count := 0
	for _, s := range siblings {
		u, ok := geom.Unit(s)
		if !ok {
			continue
		}
		if math.Abs(n.Dot(u)) < threshold {
			count++
		}
	}
	return count
}

// Perpendicular reports whether normals a and b are nearly perpendicular.
func Perpendicular(a, b geom.Vec3, threshold float64) bool {
	return PerpendicularCount(a, []geom.Vec3{b}, threshold) == 1
}
