// Package server exposes the layout pipeline over HTTP.
//
// Routes:
//
//	GET    /healthz
//	POST   /v1/layouts                     lay out a scene, optionally commit it
//	GET    /v1/layouts                     list committed layouts
//	GET    /v1/layouts/{runID}             fetch a committed layout
//	GET    /v1/layouts/{runID}/{format}    render a committed layout
//	DELETE /v1/layouts/{runID}
//	PUT    /v1/previews/{sessionID}        replace the session's preview
//	GET    /v1/previews/{sessionID}
//	GET    /v1/previews/{sessionID}/elements
//	DELETE /v1/previews/{sessionID}
//
// Errors are JSON objects carrying the [errors.Code] of the failure.
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cladding/pkg/materialize"
	"github.com/matzehuels/cladding/pkg/pipeline"
	"github.com/matzehuels/cladding/pkg/preview"
	"github.com/matzehuels/cladding/pkg/store"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	DefaultAddr           = ":8080"
	DefaultRateLimit      = 10.0 // requests per second per client
	DefaultBurst          = 20
	DefaultRequestTimeout = 60 * time.Second
	DefaultMaxBodyBytes   = 8 << 20
	shutdownTimeout       = 10 * time.Second
	cleanupInterval       = time.Minute
)

// Config configures the HTTP server.
type Config struct {
	Addr           string        `toml:"addr"`
	RateLimit      float64       `toml:"rate_limit"`
	Burst          int           `toml:"burst"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	MaxBodyBytes   int64         `toml:"max_body_bytes"`
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.RateLimit <= 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.Burst <= 0 {
		c.Burst = DefaultBurst
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
}

// Server serves layouts and previews.
type Server struct {
	cfg      Config
	runner   *pipeline.Runner
	layouts  store.Store
	previews *preview.Service
	elements *materialize.Collector
	limiter  *clientLimiter
	logger   *log.Logger
}

// New creates a server. A nil runner gets an uncached one and a nil
// store keeps committed layouts in memory. Preview elements are collected
// in memory and ghosted.
func New(cfg Config, runner *pipeline.Runner, layouts store.Store, logger *log.Logger) *Server {
	cfg.setDefaults()
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	if layouts == nil {
		layouts = store.NewMemoryStore()
	}
	elements := materialize.NewCollector()
	return &Server{
		cfg:     cfg,
		runner:  runner,
		layouts: layouts,
		previews: &preview.Service{
			Store:        preview.NewMemoryStore(),
			Materializer: elements,
			Remover:      elements,
			Logger:       logger,
		},
		elements: elements,
		limiter:  newClientLimiter(cfg.RateLimit, cfg.Burst),
		logger:   logger,
	}
}

// Handler returns the routed handler with its middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
		r.Use(middleware.RequestSize(s.cfg.MaxBodyBytes))

		r.Route("/layouts", func(r chi.Router) {
			r.Post("/", s.handleCreateLayout)
			r.Get("/", s.handleListLayouts)
			r.Get("/{runID}", s.handleGetLayout)
			r.Get("/{runID}/{format}", s.handleRenderLayout)
			r.Delete("/{runID}", s.handleDeleteLayout)
		})
		r.Route("/previews/{sessionID}", func(r chi.Router) {
			r.Put("/", s.handlePutPreview)
			r.Get("/", s.handleGetPreview)
			r.Get("/elements", s.handlePreviewElements)
			r.Delete("/", s.handleDeletePreview)
		})
	})
	return r
}

// Run serves until ctx is done, then shuts down gracefully and closes the
// preview store.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go s.cleanup(ctx)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.previews.Store.Close()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.previews.Store.Close()
	if werr := <-errc; werr != nil && !stderrors.Is(werr, http.ErrServerClosed) && err == nil {
		err = werr
	}
	return err
}

// cleanup periodically drops expired previews and idle limiters.
func (s *Server) cleanup(ctx context.Context) {
	t := time.NewTicker(cleanupInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.previews.Cleanup(ctx); err != nil {
				s.logger.Warn("preview cleanup", "err", err)
			}
			s.limiter.prune(10 * cleanupInterval)
		}
	}
}
