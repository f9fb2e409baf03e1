package preview

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/matzehuels/cladding/pkg/errors"
)

// FileStore keeps one JSON file per session. Ghost schedules cannot be
// persisted; the store tracks the ones started by this process so that
// Replace and Delete can still cancel them.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
	live    map[string]*Preview
}

// NewFileStore creates a file store. If baseDir is empty, previews go to
// ~/.config/cladding/previews/.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "cladding", "previews")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create preview dir: %w", err)
	}
	return &FileStore{baseDir: baseDir, live: make(map[string]*Preview)}, nil
}

func (s *FileStore) path(sessionID string) string {
	return filepath.Join(s.baseDir, sessionID+".json")
}

func (s *FileStore) read(sessionID string) (*Preview, error) {
	data, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read preview file: %w", err)
	}
	var p Preview
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse preview %s", sessionID)
	}
	if live := s.live[sessionID]; live != nil && live.ID == p.ID {
		p.schedule = live.schedule
	}
	return &p, nil
}

func (s *FileStore) Get(_ context.Context, sessionID string) (*Preview, error) {
	if err := errors.ValidateIdentifier("session", sessionID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	p, err := s.read(sessionID)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, notFound(sessionID)
	}
	if p.IsExpired() {
		return nil, notFound(sessionID)
	}
	return p, nil
}

func (s *FileStore) Replace(_ context.Context, p *Preview) (*Preview, error) {
	if err := errors.ValidateIdentifier("session", p.SessionID); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal preview: %w", err)
	}

	s.mu.Lock()
	old, err := s.read(p.SessionID)
	if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
		s.mu.Unlock()
		return nil, err
	}
	if err := os.WriteFile(s.path(p.SessionID), data, 0600); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("write preview file: %w", err)
	}
	s.live[p.SessionID] = p
	s.mu.Unlock()

	if old != nil && old.ID != p.ID {
		old.Cancel()
	}
	return old, nil
}

func (s *FileStore) Delete(_ context.Context, sessionID string) (*Preview, error) {
	if err := errors.ValidateIdentifier("session", sessionID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	old, _ := s.read(sessionID)
	delete(s.live, sessionID)
	err := os.Remove(s.path(sessionID))
	s.mu.Unlock()

	old.Cancel()
	if err != nil && !os.IsNotExist(err) {
		return old, fmt.Errorf("remove preview file: %w", err)
	}
	return old, nil
}

func (s *FileStore) Cleanup(context.Context) ([]*Preview, error) {
	s.mu.Lock()
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("read preview dir: %w", err)
	}

	var expired []*Preview
	now := time.Now()
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		id := entry.Name()[:len(entry.Name())-len(".json")]
		p, err := s.read(id)
		if err != nil || p == nil || !now.After(p.ExpiresAt) {
			continue
		}
		os.Remove(s.path(id))
		delete(s.live, id)
		expired = append(expired, p)
	}
	s.mu.Unlock()

	for _, p := range expired {
		p.Cancel()
	}
	return expired, nil
}

// Close cancels the schedules this process started. Files are kept.
func (s *FileStore) Close() error {
	s.mu.Lock()
	live := s.live
	s.live = make(map[string]*Preview)
	s.mu.Unlock()
	for _, p := range live {
		p.Cancel()
	}
	return nil
}

// Path returns the base directory for preview files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
