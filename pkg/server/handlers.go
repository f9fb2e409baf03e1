package server

import (
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/cladding/pkg/buildinfo"
	"github.com/matzehuels/cladding/pkg/core/layout"
	"github.com/matzehuels/cladding/pkg/core/units"
	"github.com/matzehuels/cladding/pkg/errors"
	"github.com/matzehuels/cladding/pkg/materialize"
	"github.com/matzehuels/cladding/pkg/pipeline"
	"github.com/matzehuels/cladding/pkg/render"
	"github.com/matzehuels/cladding/pkg/scene"
	"github.com/matzehuels/cladding/pkg/store"
)

// =============================================================================
// Request and Response Types
// =============================================================================

// sceneRequest is the common body of layout and preview requests. Config
// is merged over the defaults of its unit, so omitted keys keep their
// default values.
type sceneRequest struct {
	Scene  *scene.Scene    `json:"scene"`
	Config json.RawMessage `json:"config,omitempty"`
	Seed   *uint64         `json:"seed,omitempty"`
}

type layoutRequest struct {
	sceneRequest
	Formats []string `json:"formats,omitempty"`
	Width   int      `json:"width,omitempty"`
	Region  string   `json:"region,omitempty"`
	Labels  bool     `json:"labels,omitempty"`
	Commit  bool     `json:"commit,omitempty"`
}

type layoutResponse struct {
	RunID     string            `json:"run_id"`
	Committed bool              `json:"committed"`
	Cached    bool              `json:"cached"`
	Layout    *layout.Result    `json:"layout"`
	Artifacts map[string]string `json:"artifacts,omitempty"`
}

type elementsResponse struct {
	PreviewID string                `json:"preview_id"`
	RunID     string                `json:"run_id"`
	Pending   int                   `json:"pending"`
	Elements  []materialize.Element `json:"elements"`
}

// config resolves the request configuration. Its unit defaults to the
// scene unit.
func (req *sceneRequest) config() (layout.Config, error) {
	var head struct {
		Unit string `json:"unit"`
	}
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &head); err != nil {
			return layout.Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode config")
		}
	}
	unit, err := req.Scene.GeometryUnit()
	if err != nil {
		return layout.Config{}, err
	}
	if head.Unit != "" {
		if unit, err = units.Parse(head.Unit); err != nil {
			return layout.Config{}, errors.Wrap(errors.ErrCodeConfiguration, err, "config unit")
		}
	}

	cfg := layout.DefaultConfig(unit)
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			return layout.Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode config")
		}
	}
	cfg.Unit = string(unit)
	return cfg, nil
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request")
	}
	return nil
}

func (req *sceneRequest) validate() error {
	if req.Scene == nil || len(req.Scene.Regions) == 0 {
		return errors.New(errors.ErrCodeInvalidScene, "scene with at least one region is required")
	}
	return nil
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleCreateLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}
	cfg, err := req.config()
	if err != nil {
		writeError(w, err)
		return
	}

	opts := pipeline.Options{
		Scene:   req.Scene,
		Config:  cfg,
		Formats: req.Formats,
		Width:   req.Width,
		Region:  req.Region,
		Labels:  req.Labels,
		Logger:  s.logger,
	}
	if req.Seed != nil {
		opts.Seed, opts.Seeded = *req.Seed, true
	}
	if req.Commit {
		opts.Committer = s.layouts
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if req.Commit {
		status = http.StatusCreated
	}
	writeJSON(w, status, layoutResponse{
		RunID:     result.Layout.RunID,
		Committed: req.Commit,
		Cached:    result.CacheInfo.LayoutHit,
		Layout:    result.Layout,
		Artifacts: encodeArtifacts(result.Artifacts),
	})
}

func (s *Server) handleListLayouts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	sums, err := s.layouts.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if sums == nil {
		sums = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"layouts": sums})
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	res, err := s.layouts.Get(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRenderLayout(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}
	res, err := s.layouts.Get(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	opts := pipeline.Options{
		Formats: []string{format},
		Region:  q.Get("region"),
		Labels:  q.Get("labels") == "true",
		Logger:  s.logger,
	}
	if v := q.Get("width"); v != "" {
		if opts.Width, err = strconv.Atoi(v); err != nil {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid width %q", v))
			return
		}
	}
	artifacts, err := s.runner.Render(r.Context(), res, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	_, _ = w.Write(artifacts[format])
}

func (s *Server) handleDeleteLayout(w http.ResponseWriter, r *http.Request) {
	if err := s.layouts.Delete(r.Context(), chi.URLParam(r, "runID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePutPreview(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := errors.ValidateIdentifier("session id", sessionID); err != nil {
		writeError(w, err)
		return
	}
	var req sceneRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}
	cfg, err := req.config()
	if err != nil {
		writeError(w, err)
		return
	}
	regions, err := req.Scene.Regions()
	if err != nil {
		writeError(w, err)
		return
	}
	scale, err := req.Scene.Scale(units.Unit(cfg.Unit))
	if err != nil {
		writeError(w, err)
		return
	}

	opts := []layout.Option{layout.WithScale(scale)}
	if req.Seed != nil {
		opts = append(opts, layout.WithSeed(*req.Seed))
	}
	p, err := s.previews.Run(r.Context(), sessionID, regions, cfg, opts...)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleGetPreview(w http.ResponseWriter, r *http.Request) {
	p, err := s.previews.Store.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePreviewElements(w http.ResponseWriter, r *http.Request) {
	p, err := s.previews.Store.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	resp := elementsResponse{
		PreviewID: p.ID,
		RunID:     p.Result.RunID,
		Elements:  s.elements.Elements(p.Result.RunID),
	}
	if sched := p.Schedule(); sched != nil {
		resp.Pending = sched.Pending()
	}
	if resp.Elements == nil {
		resp.Elements = []materialize.Element{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeletePreview(w http.ResponseWriter, r *http.Request) {
	if err := s.previews.Discard(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Helpers
// =============================================================================

// encodeArtifacts returns text formats as-is and binary formats base64
// encoded.
func encodeArtifacts(artifacts map[string][]byte) map[string]string {
	out := make(map[string]string, len(artifacts))
	for format, data := range artifacts {
		if format == render.FormatPNG {
			out[format] = base64.StdEncoding.EncodeToString(data)
			continue
		}
		out[format] = string(data)
	}
	return out
}

func contentType(format string) string {
	switch format {
	case render.FormatSVG:
		return "image/svg+xml"
	case render.FormatPNG:
		return "image/png"
	default:
		return "application/json"
	}
}
