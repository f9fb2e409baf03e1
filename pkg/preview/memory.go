package preview

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps previews in a map.
type MemoryStore struct {
	mu       sync.Mutex
	previews map[string]*Preview
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{previews: make(map[string]*Preview)}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*Preview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.previews[sessionID]
	if !ok {
		return nil, notFound(sessionID)
	}
	if p.IsExpired() {
		return nil, notFound(sessionID)
	}
	return p, nil
}

func (s *MemoryStore) Replace(_ context.Context, p *Preview) (*Preview, error) {
	s.mu.Lock()
	old := s.previews[p.SessionID]
	s.previews[p.SessionID] = p
	s.mu.Unlock()

	if old != nil && old != p {
		old.Cancel()
	}
	return old, nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) (*Preview, error) {
	s.mu.Lock()
	old := s.previews[sessionID]
	delete(s.previews, sessionID)
	s.mu.Unlock()

	old.Cancel()
	return old, nil
}

func (s *MemoryStore) Cleanup(context.Context) ([]*Preview, error) {
	s.mu.Lock()
	var expired []*Preview
	now := time.Now()
	for id, p := range s.previews {
		if now.After(p.ExpiresAt) {
			expired = append(expired, p)
			delete(s.previews, id)
		}
	}
	s.mu.Unlock()

	for _, p := range expired {
		p.Cancel()
	}
	return expired, nil
}

// Len returns the number of stored previews.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.previews)
}

// Close cancels every schedule and empties the store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	all := s.previews
	s.previews = make(map[string]*Preview)
	s.mu.Unlock()

	for _, p := range all {
		p.Cancel()
	}
	return nil
}

var _ Store = (*MemoryStore)(nil)
