package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug records to a
// logger. The CLI installs it in verbose mode.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks writing to logger, or to the default logger
// when logger is nil.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{Logger: logger.WithPrefix("hooks")}
}

// Install registers h for all hook categories.
func (h *LogHooks) Install() {
	SetLayoutHooks(h)
	SetCacheHooks(h)
	SetServerHooks(h)
}

func (h *LogHooks) OnRunStart(_ context.Context, runID string, regions int) {
	h.Logger.Debug("run started", "run", runID, "regions", regions)
}

func (h *LogHooks) OnRegionComplete(_ context.Context, regionID string, created, trimmed int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("region skipped", "region", regionID, "err", err)
		return
	}
	h.Logger.Debug("region done", "region", regionID, "created", created, "trimmed", trimmed, "duration", d)
}

func (h *LogHooks) OnRunComplete(_ context.Context, runID string, created, trimmed int, d time.Duration, err error) {
	h.Logger.Debug("run complete", "run", runID, "created", created, "trimmed", trimmed, "duration", d, "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.Logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.Logger.Debug("response", "method", method, "route", route, "status", status, "duration", d)
}

func (h *LogHooks) OnRateLimited(_ context.Context, remoteAddr string) {
	h.Logger.Warn("rate limited", "remote", remoteAddr)
}
