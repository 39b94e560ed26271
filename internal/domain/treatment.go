package domain

import "strings"

// DecorationHex is stored in Highlight.ColorHex for text-decoration treatments.
const DecorationHex = "style"

// Filter values understood by MatchesFilter besides a treatment id.
const (
	FilterAll   = "all"
	FilterOther = "other"
)

// Treatment is a visual style applied to a marked span. Exactly one of
// ColorHex and Decoration is set.
type Treatment struct {
	ID         string
	Label      string
	ColorHex   string // background color, e.g. "#fdffb6"
	Decoration string // CSS declaration, e.g. "text-decoration: underline !important;"
}

// IsBackground reports whether the treatment paints a background color.
func (t Treatment) IsBackground() bool {
	return t.ColorHex != ""
}

// CSS returns the inline style for a marker. Every declaration carries
// !important so host page rules cannot override it.
func (t Treatment) CSS() string {
	if t.IsBackground() {
		return "background-color: " + t.ColorHex + " !important; color: #000 !important;"
	}
	return t.Decoration
}

// Palette is the fixed set of treatments offered to the user, in menu order.
var Palette = []Treatment{
	{ID: "red", Label: "Red", ColorHex: "#ffadad"},
	{ID: "orange", Label: "Orange", ColorHex: "#ffd6a5"},
	{ID: "yellow", Label: "Yellow", ColorHex: "#fdffb6"},
	{ID: "green", Label: "Green", ColorHex: "#caffbf"},
	{ID: "blue", Label: "Blue", ColorHex: "#9bf6ff"},
	{ID: "indigo", Label: "Indigo", ColorHex: "#a0c4ff"},
	{ID: "purple", Label: "Purple", ColorHex: "#bdb2ff"},
	{ID: "strikethrough", Label: "Strikethrough", Decoration: "text-decoration: line-through !important;"},
	{ID: "underline", Label: "Underline", Decoration: "text-decoration: underline !important;"},
}

// LookupTreatment finds a palette entry by id (case-insensitive).
func LookupTreatment(id string) (Treatment, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, t := range Palette {
		if t.ID == id {
			return t, true
		}
	}
	return Treatment{}, false
}

// MatchesFilter reports whether h belongs to the list filter: "all" (or
// empty), "other" for everything that is not a palette background color,
// or a treatment id.
func (h Highlight) MatchesFilter(filter string) bool {
	switch filter {
	case "", FilterAll:
		return true
	case FilterOther:
		t, ok := LookupTreatment(h.Color)
		return !ok || !t.IsBackground()
	default:
		return h.Color == filter
	}
}
