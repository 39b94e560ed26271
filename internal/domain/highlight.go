package domain

import (
	"net/url"
	"sort"
	"time"
)

// Highlight is one user-created marking, persisted across page loads.
//
// The JSON shape matches the storage layout of the browser extension so
// existing exports can be loaded as-is.
type Highlight struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the creation time in Unix milliseconds.
	// It MUST be equal to Timestamp.
	ID int64 `json:"id"`

	// Text is the exact selected plain text, the relocation anchor.
	// Never empty.
	Text string `json:"text"`

	// ─────────────────────────────
	// Visual treatment (immutable)
	// ─────────────────────────────

	// Color is the treatment id, e.g. "yellow" or "underline".
	Color string `json:"color"`

	// ColorHex is the background color, or "style" for decoration treatments.
	ColorHex string `json:"colorHex"`

	// Style is the CSS declaration for decoration treatments.
	Style *string `json:"style"`

	// ─────────────────────────────
	// Annotation (mutable)
	// ─────────────────────────────

	Note string `json:"note"`

	// ─────────────────────────────
	// Provenance
	// ─────────────────────────────

	// URL is the canonical address of the page the highlight belongs to.
	URL string `json:"url"`

	// Title is informational only.
	Title string `json:"title"`

	// Timestamp is the creation time in Unix milliseconds and the list sort key.
	Timestamp int64 `json:"timestamp"`
}

// NewHighlight builds a record for text selected at the given instant.
func NewHighlight(text string, t Treatment, note, pageURL, title string, at time.Time) Highlight {
	ms := at.UnixMilli()
	h := Highlight{
		ID:        ms,
		Text:      text,
		Color:     t.ID,
		ColorHex:  t.ColorHex,
		Note:      note,
		URL:       pageURL,
		Title:     title,
		Timestamp: ms,
	}
	if t.Decoration != "" {
		h.ColorHex = DecorationHex
		style := t.Decoration
		h.Style = &style
	}
	return h
}

// Treatment resolves the visual treatment of the record. Unknown palette ids
// fall back to the stored hex or style so older records still render.
func (h Highlight) Treatment() Treatment {
	if t, ok := LookupTreatment(h.Color); ok {
		return t
	}
	t := Treatment{ID: h.Color}
	switch {
	case h.ColorHex != "" && h.ColorHex != DecorationHex:
		t.ColorHex = h.ColorHex
	case h.Style != nil:
		t.Decoration = *h.Style
	}
	return t
}

// CreatedAt returns the creation instant.
func (h Highlight) CreatedAt() time.Time {
	return time.UnixMilli(h.Timestamp)
}

// Hostname returns the host part of the record URL, empty if unparsable.
func (h Highlight) Hostname() string {
	u, err := url.Parse(h.URL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// SortNewestFirst orders highlights by descending timestamp, in place.
func SortNewestFirst(hs []Highlight) {
	sort.SliceStable(hs, func(i, j int) bool {
		return hs[i].Timestamp > hs[j].Timestamp
	})
}
