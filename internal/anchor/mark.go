package anchor

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/MrSnakeDoc/rainbow/internal/domain"
)

// MarkerClass tags marker elements so traversals can recognize them.
const MarkerClass = "rh-highlighted-text"

var (
	ErrNotText      = errors.New("node is not a text leaf")
	ErrDetached     = errors.New("text leaf is detached from the tree")
	ErrOffsets      = errors.New("span offsets out of range")
	ErrRuneBoundary = errors.New("span offset splits a character")
)

// Outcome of one best-effort wrap.
type Outcome int

const (
	Skipped Outcome = iota
	Marked
)

func (o Outcome) String() string {
	if o == Marked {
		return "marked"
	}
	return "skipped"
}

// Result describes a single wrap attempt. On Skipped the tree is unchanged
// and Err says why.
type Result struct {
	Outcome Outcome
	Err     error

	// Marker is the wrapper element on success.
	Marker *html.Node
	// Before is the text node split off in front of the marked span, nil if
	// the span started at offset 0.
	Before *html.Node
	// After is the text node split off behind the marked span.
	After *html.Node
}

func skipped(err error) Result {
	return Result{Outcome: Skipped, Err: err}
}

// Tally aggregates wrap outcomes over a batch.
type Tally struct {
	Marked  int `json:"marked"`
	Skipped int `json:"skipped"`
}

func (t *Tally) Add(r Result) {
	if r.Outcome == Marked {
		t.Marked++
		return
	}
	t.Skipped++
}

// Mark wraps leaf.Data[start:end] in a marker element carrying the
// treatment and note. Text outside the span stays as sibling text nodes.
// Every precondition is checked before the first mutation, so a leaf is
// either fully wrapped or left as it was.
func Mark(leaf *html.Node, start, end int, t domain.Treatment, note string) Result {
	if leaf == nil || leaf.Type != html.TextNode {
		return skipped(ErrNotText)
	}
	if leaf.Parent == nil {
		return skipped(ErrDetached)
	}
	data := leaf.Data
	if start < 0 || end > len(data) || start >= end {
		return skipped(fmt.Errorf("%w: [%d,%d) of %d", ErrOffsets, start, end, len(data)))
	}
	if !utf8.RuneStart(data[start]) || (end < len(data) && !utf8.RuneStart(data[end])) {
		return skipped(fmt.Errorf("%w: [%d,%d)", ErrRuneBoundary, start, end))
	}

	parent := leaf.Parent
	res := Result{Outcome: Marked, Marker: newMarker(t, note)}

	if start > 0 {
		res.Before = &html.Node{Type: html.TextNode, Data: data[:start]}
		parent.InsertBefore(res.Before, leaf)
	}
	if end < len(data) {
		res.After = &html.Node{Type: html.TextNode, Data: data[end:]}
		parent.InsertBefore(res.After, leaf.NextSibling)
	}

	parent.InsertBefore(res.Marker, leaf)
	parent.RemoveChild(leaf)
	leaf.Data = data[start:end]
	res.Marker.AppendChild(leaf)

	return res
}

func newMarker(t domain.Treatment, note string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     atom.Span.String(),
		DataAtom: atom.Span,
		Attr: []html.Attribute{
			{Key: "class", Val: MarkerClass},
			{Key: "title", Val: note},
			{Key: "style", Val: t.CSS()},
		},
	}
}
