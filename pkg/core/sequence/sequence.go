// Package sequence yields element lengths and heights from a catalog,
// either cycling through it in order or drawing from it at random.
//
// Random draws come from an explicit *rand.Rand so that a caller seeding
// the generator from a base value and a region ordinal gets the same layout
// on every run.
package sequence

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/cladding/pkg/errors"
)

// Mode selects how values are picked from the catalog.
type Mode string

const (
	Sequential Mode = "sequential"
	Random     Mode = "random"
)

// DefaultSeed is the base seed used when regions are synchronized and no
// seed is configured.
const DefaultSeed uint64 = 12345

// seedStride separates the seeds of consecutive regions.
const seedStride = 100

// Sequencer yields successive values from a catalog.
type Sequencer struct {
	values []float64
	mode   Mode
	rng    *rand.Rand
	index  int
}

// New returns a sequencer over values. Every value must be finite and
// positive, otherwise a CONFIGURATION_ERROR is returned and the caller is
// expected to fall back to a default catalog. rng is required for Random.
func New(values []float64, mode Mode, rng *rand.Rand) (*Sequencer, error) {
	if len(values) == 0 {
		return nil, errors.New(errors.ErrCodeConfiguration, "empty value list")
	}
	for i, v := range values {
		if !(v > 0) || math.IsInf(v, 0) {
			return nil, errors.New(errors.ErrCodeConfiguration, "value %d is %v, must be positive", i, v)
		}
	}
	switch mode {
	case Sequential:
	case Random:
		if rng == nil {
			return nil, errors.New(errors.ErrCodeConfiguration, "random mode needs a generator")
		}
	default:
		return nil, errors.New(errors.ErrCodeConfiguration, "unknown sequence mode %q", mode)
	}
	return &Sequencer{
		values: append([]float64(nil), values...),
		mode:   mode,
		rng:    rng,
	}, nil
}

// ModeFor maps a randomize flag to a Mode.
func ModeFor(randomize bool) Mode {
	if randomize {
		return Random
	}
	return Sequential
}

// Next returns the next value.
func (s *Sequencer) Next() float64 {
	if s.mode == Random {
		return s.values[s.rng.IntN(len(s.values))]
	}
	v := s.values[s.index%len(s.values)]
	s.index++
	return v
}

// Average returns the arithmetic mean of the catalog.
func (s *Sequencer) Average() float64 {
	var sum float64
	for _, v := range s.values {
		sum += v
	}
	return sum / float64(len(s.values))
}

// Rotate moves the sequential cursor so the next value is values[start].
// Out of range and negative starts wrap around.
func (s *Sequencer) Rotate(start int) {
	n := len(s.values)
	s.index = ((start % n) + n) % n
}

// SeedFor returns the seed of the region at ordinal.
func SeedFor(base uint64, ordinal int) uint64 {
	return base + seedStride*uint64(ordinal)
}

// NewRand returns a PCG generator for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}
