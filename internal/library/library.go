package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/MrSnakeDoc/rainbow/internal/anchor"
	"github.com/MrSnakeDoc/rainbow/internal/domain"
	"github.com/MrSnakeDoc/rainbow/internal/logger"
	"github.com/MrSnakeDoc/rainbow/internal/page"
	"github.com/MrSnakeDoc/rainbow/internal/store"
)

var (
	ErrNotFound         = errors.New("highlight not found")
	ErrSiteNotAllowed   = errors.New("site is not on the allow-list")
	ErrUnknownTreatment = errors.New("unknown treatment")
	ErrNothingSelected  = errors.New("selection is empty")
)

// Filter narrows List results.
type Filter struct {
	Color string // treatment id, "all" or "other"
	URL   string // exact page address, empty for every page
}

// Library owns the highlight list and the allow-list, and runs the
// anchoring engine against pages.
//
// Every mutation is a read-modify-write of a whole list. mu serializes
// writers inside this process only; across processes the last writer wins.
type Library struct {
	store     store.Store
	log       logger.Logger
	extractor *anchor.Extractor
	relocator *anchor.Relocator

	mu sync.Mutex
}

// New creates a library backed by st. now defaults to time.Now.
func New(st store.Store, log logger.Logger, now func() time.Time) *Library {
	l := &Library{
		store:     st,
		log:       log,
		relocator: anchor.NewRelocator(log.Named("relocator")),
	}
	l.extractor = anchor.NewExtractor(l, log.Named("extractor"), now)
	return l
}

// Record appends h to the stored list. It satisfies anchor.Recorder.
func (l *Library) Record(ctx context.Context, h domain.Highlight) error {
	return l.Append(ctx, h)
}

// Append adds h at the end of the list
func (l *Library) Append(ctx context.Context, h domain.Highlight) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	hs, err := l.store.Highlights(ctx)
	if err != nil {
		return err
	}
	hs = append(hs, h)
	if err := l.store.SaveHighlights(ctx, hs); err != nil {
		return err
	}

	l.log.Info("highlight saved",
		logger.Int64("id", h.ID),
		logger.String("color", h.Color),
		logger.String("url", h.URL))
	return nil
}

// List returns matching highlights, newest first
func (l *Library) List(ctx context.Context, f Filter) ([]domain.Highlight, error) {
	hs, err := l.store.Highlights(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Highlight, 0, len(hs))
	for _, h := range hs {
		if !h.MatchesFilter(f.Color) {
			continue
		}
		if f.URL != "" && h.URL != f.URL {
			continue
		}
		out = append(out, h)
	}
	domain.SortNewestFirst(out)
	return out, nil
}

// Get returns one highlight by id
func (l *Library) Get(ctx context.Context, id int64) (domain.Highlight, error) {
	hs, err := l.store.Highlights(ctx)
	if err != nil {
		return domain.Highlight{}, err
	}
	for _, h := range hs {
		if h.ID == id {
			return h, nil
		}
	}
	return domain.Highlight{}, fmt.Errorf("%w: %d", ErrNotFound, id)
}

// UpdateNote replaces the note of one highlight. The treatment is never
// touched.
func (l *Library) UpdateNote(ctx context.Context, id int64, note string) (domain.Highlight, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	hs, err := l.store.Highlights(ctx)
	if err != nil {
		return domain.Highlight{}, err
	}
	i := indexOf(hs, id)
	if i < 0 {
		return domain.Highlight{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	hs[i].Note = note
	if err := l.store.SaveHighlights(ctx, hs); err != nil {
		return domain.Highlight{}, err
	}

	l.log.Debug("highlight note updated", logger.Int64("id", id))
	return hs[i], nil
}

// Delete removes one highlight by id. Markers already rendered in a
// document are left alone.
func (l *Library) Delete(ctx context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	hs, err := l.store.Highlights(ctx)
	if err != nil {
		return err
	}
	i := indexOf(hs, id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	hs = append(hs[:i], hs[i+1:]...)
	if err := l.store.SaveHighlights(ctx, hs); err != nil {
		return err
	}

	l.log.Info("highlight deleted", logger.Int64("id", id))
	return nil
}

// Clear removes every highlight
func (l *Library) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.SaveHighlights(ctx, nil); err != nil {
		return err
	}
	l.log.Warn("all highlights cleared")
	return nil
}

func indexOf(hs []domain.Highlight, id int64) int {
	for i, h := range hs {
		if h.ID == id {
			return i
		}
	}
	return -1
}

// ─────────────────────────────────────────────────────────────────
// Allow-list
// ─────────────────────────────────────────────────────────────────

// SiteAllowed reports whether host is on the allow-list. Entries are either
// exact hostnames or glob patterns such as "*.example.com".
func (l *Library) SiteAllowed(ctx context.Context, host string) (bool, error) {
	sites, err := l.store.AllowedSites(ctx)
	if err != nil {
		return false, err
	}
	return siteMatches(sites, host), nil
}

func siteMatches(sites []string, host string) bool {
	host = normalizeHost(host)
	if host == "" {
		return false
	}
	for _, pattern := range sites {
		pattern = normalizeHost(pattern)
		if pattern == host {
			return true
		}
		if ok, err := doublestar.Match(pattern, host); err == nil && ok {
			return true
		}
	}
	return false
}

// SetSiteAllowed adds host to or removes it from the allow-list
func (l *Library) SetSiteAllowed(ctx context.Context, host string, allowed bool) error {
	host = normalizeHost(host)
	if host == "" {
		return errors.New("empty site")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	sites, err := l.store.AllowedSites(ctx)
	if err != nil {
		return err
	}

	present := false
	kept := sites[:0]
	for _, s := range sites {
		if normalizeHost(s) == host {
			present = true
			if !allowed {
				continue
			}
		}
		kept = append(kept, s)
	}
	if allowed && !present {
		kept = append(kept, host)
	}
	if present == allowed {
		return nil
	}
	if err := l.store.SaveAllowedSites(ctx, kept); err != nil {
		return err
	}

	l.log.Info("site permission changed",
		logger.String("site", host),
		logger.Bool("allowed", allowed))
	return nil
}

// MergeSites adds every site missing from the allow-list and returns how
// many were added. Existing entries are never removed.
func (l *Library) MergeSites(ctx context.Context, sites []string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, err := l.store.AllowedSites(ctx)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(current))
	for _, s := range current {
		seen[normalizeHost(s)] = true
	}

	added := 0
	for _, s := range sites {
		s = normalizeHost(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		current = append(current, s)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	if err := l.store.SaveAllowedSites(ctx, current); err != nil {
		return 0, err
	}
	return added, nil
}

func normalizeHost(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ─────────────────────────────────────────────────────────────────
// Anchoring
// ─────────────────────────────────────────────────────────────────

// Restore re-applies every stored highlight of p's address to p. Nothing is
// traversed when the site is not allowed.
func (l *Library) Restore(ctx context.Context, p *page.Page) (anchor.Report, error) {
	ok, err := l.SiteAllowed(ctx, p.Hostname())
	if err != nil {
		return anchor.Report{}, err
	}
	if !ok {
		return anchor.Report{}, fmt.Errorf("%w: %s", ErrSiteNotAllowed, p.Hostname())
	}

	hs, err := l.store.Highlights(ctx)
	if err != nil {
		return anchor.Report{}, err
	}

	start := time.Now()
	rep := l.relocator.Relocate(hs, p.Body(), p.Address())
	l.log.Info("highlights restored",
		logger.String("url", p.Address()),
		logger.Int("applied", rep.Applied),
		logger.Int("pending", rep.Pending),
		logger.Duration("elapsed", time.Since(start)))
	return rep, nil
}

// Highlight marks the range r of p with the treatment color and stores the
// resulting record.
func (l *Library) Highlight(ctx context.Context, p *page.Page, r anchor.Range, color, note string) (anchor.Extraction, error) {
	ok, err := l.SiteAllowed(ctx, p.Hostname())
	if err != nil {
		return anchor.Extraction{}, err
	}
	if !ok {
		return anchor.Extraction{}, fmt.Errorf("%w: %s", ErrSiteNotAllowed, p.Hostname())
	}

	t, found := domain.LookupTreatment(color)
	if !found {
		return anchor.Extraction{}, fmt.Errorf("%w: %q", ErrUnknownTreatment, color)
	}

	sel := anchor.NewSelection(r)
	ex, ok := l.extractor.Extract(ctx, sel, t, note, anchor.PageInfo{
		Address: p.Address(),
		Title:   p.Title(),
	})
	if !ok {
		return anchor.Extraction{}, ErrNothingSelected
	}
	return ex, nil
}
