// Package units converts configured lengths between measurement units and
// supplies the per-unit default element catalogs.
//
// Factors are expressed in inches, the working unit of most host modeling
// tools. [Scale] converts between any two units.
package units

import (
	"slices"
	"strings"

	"github.com/matzehuels/cladding/pkg/errors"
)

// Unit names a length unit.
type Unit string

const (
	Millimeter Unit = "mm"
	Centimeter Unit = "cm"
	Meter      Unit = "m"
	Foot       Unit = "feet"
	Inch       Unit = "inches"
)

// Default is the unit used when none is configured.
const Default = Millimeter

var inches = map[Unit]float64{
	Millimeter: 0.1 / 2.54,
	Centimeter: 1.0 / 2.54,
	Meter:      100.0 / 2.54,
	Foot:       12.0,
	Inch:       1.0,
}

var aliases = map[string]Unit{
	"millimeter": Millimeter, "millimeters": Millimeter,
	"centimeter": Centimeter, "centimeters": Centimeter,
	"meter": Meter, "meters": Meter,
	"ft": Foot, "foot": Foot,
	"in": Inch, "inch": Inch,
}

// Parse resolves a unit name. The empty string maps to [Default].
func Parse(s string) (Unit, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Default, nil
	}
	if _, ok := inches[Unit(s)]; ok {
		return Unit(s), nil
	}
	if u, ok := aliases[s]; ok {
		return u, nil
	}
	return "", errors.New(errors.ErrCodeConfiguration, "unknown unit %q", s)
}

// All returns every supported unit in display order.
func All() []Unit {
	return []Unit{Millimeter, Centimeter, Meter, Foot, Inch}
}

// Inches returns how many inches one u is.
func (u Unit) Inches() float64 {
	if f, ok := inches[u]; ok {
		return f
	}
	return inches[Default]
}

// Scale returns the factor converting a length in from into a length in to.
func Scale(from, to Unit) float64 {
	return from.Inches() / to.Inches()
}

// Defaults is the built-in catalog for one unit.
type Defaults struct {
	Lengths      []float64
	Heights      []float64
	Thickness    float64
	Joint        float64
	Cavity       float64
	MinPiece     float64
	MinRegionLen float64 // square root of the minimum accepted region area
}

// DefaultsFor returns the built-in catalog for u. Metric units share the
// millimeter catalog scaled; imperial units use the inch catalog.
func DefaultsFor(u Unit) Defaults {
	switch u {
	case Foot, Inch:
		d := Defaults{
			Lengths:      []float64{32, 36, 40, 44, 48},
			Heights:      []float64{18, 12, 6},
			Thickness:    0.75,
			Joint:        0.125,
			Cavity:       2,
			MinPiece:     6,
			MinRegionLen: 4,
		}
		if u == Foot {
			return d.scaled(1.0 / 12)
		}
		return d
	}
	d := Defaults{
		Lengths:      []float64{800, 900, 1000, 1100, 1200},
		Heights:      []float64{450, 300, 150},
		Thickness:    20,
		Joint:        3,
		Cavity:       50,
		MinPiece:     150,
		MinRegionLen: 100,
	}
	return d.scaled(Scale(Millimeter, u))
}

func (d Defaults) scaled(k float64) Defaults {
	if k == 1 {
		return d
	}
	mul := func(vs []float64) []float64 {
		out := slices.Clone(vs)
		for i := range out {
			out[i] *= k
		}
		return out
	}
	d.Lengths = mul(d.Lengths)
	d.Heights = mul(d.Heights)
	d.Thickness *= k
	d.Joint *= k
	d.Cavity *= k
	d.MinPiece *= k
	d.MinRegionLen *= k
	return d
}
