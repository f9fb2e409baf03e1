package preview

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cladding/pkg/core/layout"
	"github.com/matzehuels/cladding/pkg/core/region"
	"github.com/matzehuels/cladding/pkg/ghost"
)

// Service produces previews. Each call removes the session's previous
// preview before laying out the new one.
type Service struct {
	Store Store

	// Materializer creates preview elements. When it also implements
	// ghost.Restyler, elements are ghosted and restyled one by one.
	Materializer layout.Materializer

	// Remover deletes the elements of a replaced preview. Optional.
	Remover Remover

	TTL    time.Duration
	Logger *log.Logger
}

// Run lays out regions as a preview for sessionID. The ghost schedule
// outlives ctx and ends when the preview is replaced or deleted. A failed
// layout leaves the session without a preview.
func (s *Service) Run(ctx context.Context, sessionID string, regions []region.Region, cfg layout.Config, opts ...layout.Option) (*Preview, error) {
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}

	if err := s.remove(ctx, sessionID, logger); err != nil {
		return nil, err
	}

	m := s.Materializer
	var sched *ghost.Scheduler
	if r, ok := m.(ghost.Restyler); ok {
		delay := time.Duration(cfg.GhostDelayMillis) * time.Millisecond
		sched = ghost.NewScheduler(context.WithoutCancel(ctx), delay, logger)
		m = &ghost.Materializer{Next: m, Restyler: r, Scheduler: sched}
	}

	opts = append(opts, layout.AsPreview(), layout.WithLogger(logger))
	if m != nil {
		opts = append(opts, layout.WithMaterializer(m))
	}
	res, err := layout.Run(ctx, regions, cfg, opts...)
	if err != nil {
		if sched != nil {
			sched.Cancel()
		}
		if s.Remover != nil && res != nil {
			_ = s.Remover.Remove(context.WithoutCancel(ctx), res.RunID)
		}
		return nil, err
	}

	p := New(sessionID, res, s.TTL, sched)
	old, err := s.Store.Replace(ctx, p)
	if err != nil {
		p.Cancel()
		return nil, err
	}
	// An overlapping run for the same session stored its preview while
	// this one was laying out.
	if old != nil && old.ID != p.ID {
		s.removeElements(ctx, old, logger)
	}
	logger.Debug("preview stored", "session", sessionID, "preview", p.ID, "elements", res.Created)
	return p, nil
}

// Discard removes the session's preview and its elements.
func (s *Service) Discard(ctx context.Context, sessionID string) error {
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}
	return s.remove(ctx, sessionID, logger)
}

// Cleanup drops expired previews and removes their elements.
func (s *Service) Cleanup(ctx context.Context) error {
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}
	expired, err := s.Store.Cleanup(ctx)
	for _, p := range expired {
		s.removeElements(ctx, p, logger)
	}
	if len(expired) > 0 {
		logger.Debug("previews expired", "count", len(expired))
	}
	return err
}

func (s *Service) remove(ctx context.Context, sessionID string, logger *log.Logger) error {
	old, err := s.Store.Delete(ctx, sessionID)
	if err != nil {
		return err
	}
	s.removeElements(ctx, old, logger)
	return nil
}

func (s *Service) removeElements(ctx context.Context, p *Preview, logger *log.Logger) {
	if p == nil || p.Result == nil || s.Remover == nil {
		return
	}
	if err := s.Remover.Remove(ctx, p.Result.RunID); err != nil {
		logger.Warn("remove preview elements", "session", p.SessionID, "run", p.Result.RunID, "error", err)
	}
}
