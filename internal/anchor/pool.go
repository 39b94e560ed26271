package anchor

import "github.com/MrSnakeDoc/rainbow/internal/domain"

// Pool is the per-pass worklist of records still waiting to be re-applied,
// keyed by anchor text. Each key owns a FIFO queue in creation order; a key
// leaves the active set once its queue is drained.
type Pool struct {
	keys   []string
	queues map[string][]domain.Highlight
	active map[string]bool
	size   int
}

// NewPool groups records by text. Key order is the order in which each text
// first appears in records. Records with empty text are dropped.
func NewPool(records []domain.Highlight) *Pool {
	p := &Pool{
		queues: make(map[string][]domain.Highlight),
		active: make(map[string]bool),
	}
	for _, h := range records {
		if h.Text == "" {
			continue
		}
		if _, ok := p.queues[h.Text]; !ok {
			p.keys = append(p.keys, h.Text)
			p.active[h.Text] = true
		}
		p.queues[h.Text] = append(p.queues[h.Text], h)
		p.size++
	}
	return p
}

// Keys returns a snapshot of the active keys in pool order.
func (p *Pool) Keys() []string {
	keys := make([]string, 0, len(p.active))
	for _, k := range p.keys {
		if p.active[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

// Active reports whether key still has queued records.
func (p *Pool) Active(key string) bool {
	return p.active[key]
}

// Peek returns the oldest queued record for key.
func (p *Pool) Peek(key string) (domain.Highlight, bool) {
	q := p.queues[key]
	if len(q) == 0 {
		return domain.Highlight{}, false
	}
	return q[0], true
}

// Pop removes and returns the oldest queued record for key.
func (p *Pool) Pop(key string) (domain.Highlight, bool) {
	q := p.queues[key]
	if len(q) == 0 {
		return domain.Highlight{}, false
	}
	h := q[0]
	p.queues[key] = q[1:]
	p.size--
	if len(q) == 1 {
		delete(p.active, key)
	}
	return h, true
}

// Len is the number of records still queued.
func (p *Pool) Len() int { return p.size }

// Empty reports whether every record has been consumed.
func (p *Pool) Empty() bool { return p.size == 0 }
