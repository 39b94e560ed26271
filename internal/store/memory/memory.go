package memory

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/rainbow/internal/domain"
)

// Store keeps highlights and the allow-list in process memory.
// It is used when no Redis is configured and in tests.
type Store struct {
	mu         sync.RWMutex
	highlights []domain.Highlight
	sites      []string
}

// New creates an empty memory store
func New() *Store {
	return &Store{}
}

// Highlights returns a copy of the highlight list
func (s *Store) Highlights(_ context.Context) ([]domain.Highlight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Highlight, len(s.highlights))
	copy(out, s.highlights)
	return out, nil
}

// SaveHighlights replaces the highlight list
func (s *Store) SaveHighlights(_ context.Context, hs []domain.Highlight) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.highlights = make([]domain.Highlight, len(hs))
	copy(s.highlights, hs)
	return nil
}

// AllowedSites returns a copy of the allow-list
func (s *Store) AllowedSites(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.sites))
	copy(out, s.sites)
	return out, nil
}

// SaveAllowedSites replaces the allow-list
func (s *Store) SaveAllowedSites(_ context.Context, sites []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sites = make([]string, len(sites))
	copy(s.sites, sites)
	return nil
}

// Ping always succeeds
func (s *Store) Ping(_ context.Context) error { return nil }
