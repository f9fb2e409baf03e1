package store

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/cladding/pkg/core/layout"
)

// MemoryStore keeps committed runs as JSON documents in a map, so callers
// never share mutable results with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
	sums map[string]Summary
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte), sums: make(map[string]Summary)}
}

// Commit saves res, replacing an earlier commit of the same run.
func (s *MemoryStore) Commit(_ context.Context, res *layout.Result) error {
	if err := validate(res); err != nil {
		return err
	}
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[res.RunID] = data
	s.sums[res.RunID] = Summarize(res)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, runID string) (*layout.Result, error) {
	s.mu.RLock()
	data, ok := s.docs[runID]
	s.mu.RUnlock()
	if !ok {
		return nil, notFound(runID)
	}
	var res layout.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]Summary, error) {
	s.mu.RLock()
	out := make([]Summary, 0, len(s.sums))
	for _, sum := range s.sums {
		out = append(out, sum)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Summary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.RunID, b.RunID)
	})
	if n := limitOf(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, runID)
	delete(s.sums, runID)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
