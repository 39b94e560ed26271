// Package store defines the key-value persistence contract. The store holds
// two top-level values: the site allow-list and the ordered list of every
// highlight. Reads return the full value, writes replace it.
package store

import (
	"context"

	"github.com/MrSnakeDoc/rainbow/internal/domain"
)

type Store interface {
	Highlights(ctx context.Context) ([]domain.Highlight, error)
	SaveHighlights(ctx context.Context, hs []domain.Highlight) error

	AllowedSites(ctx context.Context) ([]string, error)
	SaveAllowedSites(ctx context.Context, sites []string) error

	Ping(ctx context.Context) error
}
