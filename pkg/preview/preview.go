// Package preview keeps the live layout preview of each editing session.
//
// A session has at most one preview. Producing a new preview removes the
// previous one first: its ghost schedule is canceled and its elements are
// handed to a [Remover]. Previews expire after a TTL; [Service.Cleanup]
// sweeps them and removes their elements.
//
// Backends:
//   - [MemoryStore]: in-process, for the API server and tests
//   - [FileStore]: JSON files, for the CLI
package preview

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/cladding/pkg/core/layout"
	"github.com/matzehuels/cladding/pkg/errors"
	"github.com/matzehuels/cladding/pkg/ghost"
)

// DefaultTTL is how long a preview lives without being replaced.
const DefaultTTL = 30 * time.Minute

// Preview is one session's current layout preview.
type Preview struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	Result    *layout.Result `json:"result"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`

	schedule *ghost.Scheduler
}

// New creates a preview of res for sessionID. schedule may be nil.
func New(sessionID string, res *layout.Result, ttl time.Duration, schedule *ghost.Scheduler) *Preview {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	return &Preview{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Result:    res,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		schedule:  schedule,
	}
}

// IsExpired reports whether the preview has outlived its TTL.
func (p *Preview) IsExpired() bool {
	return time.Now().After(p.ExpiresAt)
}

// Schedule returns the ghost schedule restyling the preview, or nil.
func (p *Preview) Schedule() *ghost.Scheduler { return p.schedule }

// Cancel stops the preview's ghost schedule. It is safe on a nil preview
// and on a preview without a schedule.
func (p *Preview) Cancel() {
	if p == nil || p.schedule == nil {
		return
	}
	p.schedule.Cancel()
}

// Remover deletes the elements a preview created.
type Remover interface {
	Remove(ctx context.Context, runID string) error
}

// Store is the interface for preview backends.
type Store interface {
	// Get returns the live preview of a session, or a SESSION_NOT_FOUND
	// error when there is none or it has expired. Expired previews stay
	// stored until Cleanup.
	Get(ctx context.Context, sessionID string) (*Preview, error)

	// Replace stores p as its session's preview and returns the preview it
	// replaced, if any, after canceling that preview's schedule.
	Replace(ctx context.Context, p *Preview) (*Preview, error)

	// Delete removes a session's preview and cancels its schedule. Deleting
	// a missing preview is not an error.
	Delete(ctx context.Context, sessionID string) (*Preview, error)

	// Cleanup removes expired previews, cancels their schedules and
	// returns them.
	Cleanup(ctx context.Context) ([]*Preview, error)

	Close() error
}

func notFound(sessionID string) error {
	return errors.New(errors.ErrCodeSessionNotFound, "no preview for session %q", sessionID)
}
