package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/rainbow/internal/domain"
)

// Store handles Redis operations for highlights and the allow-list.
// Both values are stored as whole JSON documents without TTL.
type Store struct {
	client redis.UniversalClient
	prefix string
}

// NewStore creates a new Redis store. prefix namespaces the keys, so several
// deployments can share a database; it may be empty.
func NewStore(client redis.UniversalClient, prefix string) *Store {
	return &Store{
		client: client,
		prefix: prefix,
	}
}

// Highlights retrieves the full highlight list
func (s *Store) Highlights(ctx context.Context) ([]domain.Highlight, error) {
	var hs []domain.Highlight
	if err := s.getJSON(ctx, HighlightsKey(s.prefix), &hs); err != nil {
		return nil, fmt.Errorf("failed to get highlights: %w", err)
	}
	if hs == nil {
		hs = []domain.Highlight{}
	}
	return hs, nil
}

// SaveHighlights replaces the full highlight list
func (s *Store) SaveHighlights(ctx context.Context, hs []domain.Highlight) error {
	if hs == nil {
		hs = []domain.Highlight{}
	}
	if err := s.setJSON(ctx, HighlightsKey(s.prefix), hs); err != nil {
		return fmt.Errorf("failed to save highlights: %w", err)
	}
	return nil
}

// AllowedSites retrieves the allow-list
func (s *Store) AllowedSites(ctx context.Context) ([]string, error) {
	var sites []string
	if err := s.getJSON(ctx, AllowedSitesKey(s.prefix), &sites); err != nil {
		return nil, fmt.Errorf("failed to get allowed sites: %w", err)
	}
	if sites == nil {
		sites = []string{}
	}
	return sites, nil
}

// SaveAllowedSites replaces the allow-list
func (s *Store) SaveAllowedSites(ctx context.Context, sites []string) error {
	if sites == nil {
		sites = []string{}
	}
	if err := s.setJSON(ctx, AllowedSitesKey(s.prefix), sites); err != nil {
		return fmt.Errorf("failed to save allowed sites: %w", err)
	}
	return nil
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// getJSON decodes key into v. A missing key leaves v untouched.
func (s *Store) getJSON(ctx context.Context, key string, v any) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return s.client.Set(ctx, key, data, 0).Err()
}
