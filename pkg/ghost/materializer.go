package ghost

import (
	"context"

	"github.com/matzehuels/cladding/pkg/core/layout"
)

// Alpha is the opacity of the ghost appearance.
const Alpha = 0.3

// Restyler changes the opacity of an element that already exists.
type Restyler interface {
	Restyle(ctx context.Context, p layout.Panel, alpha float64) error
}

// Materializer creates every panel through Next, shows it as a ghost and
// schedules the switch to its final appearance at the panel's sequence
// number.
type Materializer struct {
	Next      layout.Materializer
	Restyler  Restyler
	Scheduler *Scheduler
}

// Materialize implements layout.Materializer.
func (m *Materializer) Materialize(ctx context.Context, p layout.Panel) error {
	if err := m.Next.Materialize(ctx, p); err != nil {
		return err
	}
	if err := m.Restyler.Restyle(ctx, p, Alpha); err != nil {
		return err
	}
	m.Scheduler.Schedule(p.Sequence, func(ctx context.Context) {
		// The element may have been removed with its preview; nothing
		// else is waiting on the result.
		_ = m.Restyler.Restyle(ctx, p, 1)
	})
	return nil
}
