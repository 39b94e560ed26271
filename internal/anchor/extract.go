package anchor

import (
	"context"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/MrSnakeDoc/rainbow/internal/domain"
	"github.com/MrSnakeDoc/rainbow/internal/logger"
)

// Recorder persists a newly created highlight.
type Recorder interface {
	Record(ctx context.Context, h domain.Highlight) error
}

// Selection is the interaction state of one user gesture.
type Selection struct {
	rng *Range
}

func NewSelection(r Range) *Selection {
	return &Selection{rng: &r}
}

// Range returns the live range, if any.
func (s *Selection) Range() (Range, bool) {
	if s == nil || s.rng == nil {
		return Range{}, false
	}
	return *s.rng, true
}

// Clear drops the live range.
func (s *Selection) Clear() {
	if s != nil {
		s.rng = nil
	}
}

// PageInfo identifies the document a selection was made on.
type PageInfo struct {
	Address string
	Title   string
}

// Extraction is the outcome of one extraction.
type Extraction struct {
	Highlight domain.Highlight
	Tally     Tally
}

// Extractor turns a selection into marked spans plus one persisted record.
type Extractor struct {
	rec Recorder
	log logger.Logger
	now func() time.Time

	mu   sync.Mutex
	last int64
}

// NewExtractor builds an extractor. now defaults to time.Now.
func NewExtractor(rec Recorder, log logger.Logger, now func() time.Time) *Extractor {
	if now == nil {
		now = time.Now
	}
	return &Extractor{rec: rec, log: log, now: now}
}

type span struct {
	leaf       *html.Node
	start, end int
}

// Extract marks every text leaf the selection touches and records the
// selected text. It returns false when there is nothing to highlight. Wrap
// failures on individual leaves and persistence errors do not stop the
// record from being produced. The selection is cleared in every case.
func (e *Extractor) Extract(ctx context.Context, sel *Selection, t domain.Treatment, note string, page PageInfo) (Extraction, bool) {
	defer sel.Clear()

	r, ok := sel.Range()
	if !ok {
		return Extraction{}, false
	}
	text := r.String()
	if text == "" {
		return Extraction{}, false
	}

	// Spans are computed up front: wrapping a leaf rewrites its data, which
	// would shift the range offsets for the start and end containers.
	var spans []span
	for leaf := range r.Leaves() {
		s, end := r.SubSpan(leaf)
		if s < end {
			spans = append(spans, span{leaf: leaf, start: s, end: end})
		}
	}

	var ex Extraction
	for _, sp := range spans {
		res := Mark(sp.leaf, sp.start, sp.end, t, note)
		ex.Tally.Add(res)
		if res.Outcome != Marked {
			e.log.Debug("selection wrap skipped", logger.Error(res.Err))
		}
	}

	ex.Highlight = domain.NewHighlight(text, t, note, page.Address, page.Title, e.stamp())

	if e.rec != nil {
		if err := e.rec.Record(ctx, ex.Highlight); err != nil {
			e.log.Warn("failed to persist highlight",
				logger.Int64("id", ex.Highlight.ID),
				logger.Error(err))
		}
	}

	return ex, true
}

// stamp returns the creation instant, nudged forward by a millisecond when
// it would collide with the previous one so ids stay unique.
func (e *Extractor) stamp() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()

	at := e.now()
	if ms := at.UnixMilli(); ms <= e.last {
		at = time.UnixMilli(e.last + 1)
	}
	e.last = at.UnixMilli()
	return at
}
