package anchor

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/MrSnakeDoc/rainbow/internal/domain"
	"github.com/MrSnakeDoc/rainbow/internal/logger"
)

// Report summarizes one relocation pass.
type Report struct {
	Considered int `json:"considered"` // records scoped to the page
	Applied    int `json:"applied"`
	Skipped    int `json:"skipped"` // wrap attempts that failed
	Pending    int `json:"pending"` // records left unanchored
}

// Relocator re-applies stored highlights to a freshly loaded document by
// searching text leaves for each record's anchor text.
type Relocator struct {
	log logger.Logger
}

func NewRelocator(log logger.Logger) *Relocator {
	return &Relocator{log: log}
}

// Relocate walks the text leaves under root once, in document order, and
// wraps the first unmarked occurrence of each pending text. Records sharing
// a text bind to occurrences in creation order. Only records whose URL
// equals address are considered.
func (r *Relocator) Relocate(records []domain.Highlight, root *html.Node, address string) Report {
	var scoped []domain.Highlight
	for _, h := range records {
		if h.URL == address {
			scoped = append(scoped, h)
		}
	}
	rep := Report{Considered: len(scoped)}
	if len(scoped) == 0 || root == nil {
		rep.Pending = len(scoped)
		return rep
	}

	pool := NewPool(scoped)
	for n := firstLeaf(root); n != nil && !pool.Empty(); {
		if resume := r.scan(n, pool, &rep); resume != nil {
			n = resume
			continue
		}
		n = NextLeaf(n, root)
	}
	rep.Pending = len(scoped) - rep.Applied

	r.log.Debug("relocation pass finished",
		logger.String("url", address),
		logger.Int("considered", rep.Considered),
		logger.Int("applied", rep.Applied),
		logger.Int("skipped", rep.Skipped),
		logger.Int("pending", rep.Pending))

	return rep
}

// scan wraps the first match of any active key in leaf. After a wrap the
// walk resumes from the node now holding the leaf's position: the text split
// off in front of the marker, or the marked leaf itself. Every remainder
// split off behind the marker is then reached by NextLeaf in document order.
// scan returns nil when nothing was wrapped.
func (r *Relocator) scan(leaf *html.Node, pool *Pool, rep *Report) *html.Node {
	if InsideMarker(leaf) {
		return nil
	}
	for _, key := range pool.Keys() {
		if !pool.Active(key) {
			continue
		}
		for cursor := 0; cursor < len(leaf.Data); {
			i := strings.Index(leaf.Data[cursor:], key)
			if i < 0 {
				break
			}
			i += cursor

			h, _ := pool.Peek(key)
			res := Mark(leaf, i, i+len(key), h.Treatment(), h.Note)
			if res.Outcome != Marked {
				rep.Skipped++
				r.log.Debug("relocation wrap skipped",
					logger.Int64("id", h.ID),
					logger.Error(res.Err))
				cursor = i + 1
				continue
			}

			pool.Pop(key)
			rep.Applied++
			if res.Before != nil {
				return res.Before
			}
			return leaf
		}
	}
	return nil
}
