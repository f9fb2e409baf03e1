// Package materialize provides in-process element sinks for layout runs.
//
// [Collector] keeps the panels of every run with their current opacity and
// backs the preview service and the render sinks. [Mesh] turns panels into
// exact triangle prisms. [Solid] unions each region's panels into a signed
// distance field and tessellates it with marching cubes.
package materialize

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/cladding/pkg/core/layout"
	"github.com/matzehuels/cladding/pkg/errors"
)

// Element is a collected panel with its current opacity.
type Element struct {
	Panel layout.Panel `json:"panel"`
	Alpha float64      `json:"alpha"`
}

// Collector records panels by run. It implements layout.Materializer,
// ghost.Restyler and preview.Remover.
type Collector struct {
	mu   sync.RWMutex
	runs map[string][]Element
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{runs: make(map[string][]Element)}
}

// Materialize stores p fully opaque.
func (c *Collector) Materialize(_ context.Context, p layout.Panel) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs[p.RunID] = append(c.runs[p.RunID], Element{Panel: p, Alpha: 1})
	return nil
}

// Restyle sets the opacity of a stored panel.
func (c *Collector) Restyle(_ context.Context, p layout.Panel, alpha float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	els := c.runs[p.RunID]
	i := slices.IndexFunc(els, func(e Element) bool { return e.Panel.Sequence == p.Sequence })
	if i < 0 {
		return errors.New(errors.ErrCodeNotFound, "element %d of run %s", p.Sequence, p.RunID)
	}
	els[i].Alpha = alpha
	return nil
}

// Remove drops every panel of a run.
func (c *Collector) Remove(_ context.Context, runID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.runs, runID)
	return nil
}

// Elements returns a copy of a run's elements in creation order.
func (c *Collector) Elements(runID string) []Element {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.runs[runID])
}

// Panels returns a run's panels in creation order.
func (c *Collector) Panels(runID string) []layout.Panel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	els := c.runs[runID]
	out := make([]layout.Panel, len(els))
	for i, e := range els {
		out[i] = e.Panel
	}
	return out
}

// Runs returns the ids of the runs with stored panels, sorted.
func (c *Collector) Runs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.runs))
	for id := range c.runs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
