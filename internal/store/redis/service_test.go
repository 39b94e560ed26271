package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/rainbow/internal/domain"
)

// newTestStore connects to the Redis named by RAINBOW_TEST_REDIS_ADDR.
// Note: these tests require a reachable Redis and are skipped otherwise.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	addr := os.Getenv("RAINBOW_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("RAINBOW_TEST_REDIS_ADDR not set, skipping redis store test")
	}

	client := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("failed to close redis client: %v", err)
		}
	})

	prefix := fmt.Sprintf("test:%d:", time.Now().UnixNano())
	s := NewStore(client, prefix)
	t.Cleanup(func() {
		client.Del(context.Background(), HighlightsKey(prefix), AllowedSitesKey(prefix))
	})
	return s
}

func TestStoreHighlightsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.Highlights(ctx)
	if err != nil {
		t.Fatalf("Highlights() on empty store error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Highlights() on empty store = %d items, want 0", len(got))
	}

	want := []domain.Highlight{
		{ID: 1, Text: "first", Color: "red", ColorHex: "#ffadad", URL: "https://e.com/", Timestamp: 1},
		{ID: 2, Text: "second", Color: "blue", ColorHex: "#9bf6ff", URL: "https://e.com/", Timestamp: 2},
	}
	if err := s.SaveHighlights(ctx, want); err != nil {
		t.Fatalf("SaveHighlights() error = %v", err)
	}

	got, err = s.Highlights(ctx)
	if err != nil {
		t.Fatalf("Highlights() error = %v", err)
	}
	if len(got) != 2 || got[0].Text != "first" || got[1].Text != "second" {
		t.Errorf("Highlights() = %+v, want order preserved", got)
	}
}

func TestStoreAllowedSites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveAllowedSites(ctx, []string{"a.example.com", "b.example.com"}); err != nil {
		t.Fatalf("SaveAllowedSites() error = %v", err)
	}
	sites, err := s.AllowedSites(ctx)
	if err != nil {
		t.Fatalf("AllowedSites() error = %v", err)
	}
	if len(sites) != 2 {
		t.Errorf("AllowedSites() = %v, want 2 entries", sites)
	}
	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestKeys(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"", "rainbow:highlights"},
		{"staging:", "staging:rainbow:highlights"},
	}

	for _, tt := range tests {
		if got := HighlightsKey(tt.prefix); got != tt.want {
			t.Errorf("HighlightsKey(%q) = %q, want %q", tt.prefix, got, tt.want)
		}
	}
	if got := AllowedSitesKey(""); got != "rainbow:allowed_sites" {
		t.Errorf("AllowedSitesKey() = %q", got)
	}
}
