// Package store keeps committed layouts.
//
// A [Store] is a [layout.Committer]: passing it to layout.WithCommitter
// saves every finished non-preview run. Backends:
//   - [MemoryStore]: process-local, for tests and the single-user CLI
//   - [MongoStore]: shared document store for API deployments
package store

import (
	"context"
	"time"

	"github.com/matzehuels/cladding/pkg/core/layout"
	"github.com/matzehuels/cladding/pkg/errors"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 50

// Summary describes a committed run without its footprints.
type Summary struct {
	RunID     string    `json:"run_id" bson:"_id"`
	Regions   []string  `json:"regions" bson:"regions"`
	Created   int       `json:"created" bson:"created"`
	Trimmed   int       `json:"trimmed" bson:"trimmed"`
	Failed    int       `json:"failed" bson:"failed"`
	Skipped   int       `json:"skipped" bson:"skipped"`
	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
}

// Store is the interface for committed layout backends.
type Store interface {
	layout.Committer

	// Get returns a committed run, or a NOT_FOUND error.
	Get(ctx context.Context, runID string) (*layout.Result, error)

	// List returns up to limit summaries, newest first.
	List(ctx context.Context, limit int) ([]Summary, error)

	// Delete removes a committed run. Deleting a missing run is not an
	// error.
	Delete(ctx context.Context, runID string) error

	Close() error
}

// Summarize returns the summary of res.
func Summarize(res *layout.Result) Summary {
	ids := make([]string, len(res.Regions))
	for i, rr := range res.Regions {
		ids[i] = rr.ID
	}
	return Summary{
		RunID:     res.RunID,
		Regions:   ids,
		Created:   res.Created,
		Trimmed:   res.Trimmed,
		Failed:    res.Failed,
		Skipped:   res.Skipped,
		CreatedAt: res.CreatedAt,
	}
}

func validate(res *layout.Result) error {
	if res == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil layout")
	}
	if res.Preview {
		return errors.New(errors.ErrCodeInvalidInput, "run %s is a preview and cannot be committed", res.RunID)
	}
	return errors.ValidateIdentifier("run id", res.RunID)
}

func notFound(runID string) error {
	return errors.New(errors.ErrCodeNotFound, "no committed layout %q", runID)
}

func limitOf(n int) int {
	if n <= 0 {
		return DefaultListLimit
	}
	return n
}
