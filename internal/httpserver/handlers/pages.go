package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/MrSnakeDoc/rainbow/internal/anchor"
	"github.com/MrSnakeDoc/rainbow/internal/domain"
	"github.com/MrSnakeDoc/rainbow/internal/httpserver/deps"
	"github.com/MrSnakeDoc/rainbow/internal/logger"
	"github.com/MrSnakeDoc/rainbow/internal/page"
)

type restoreRequest struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}

type restoreResponse struct {
	HTML   string        `json:"html"`
	Report anchor.Report `json:"report"`
}

// boundaryRequest addresses a point in the posted document: a child-index
// path from <body> and an offset. For text leaves the offset counts UTF-16
// code units, as browsers report them; for elements it is a child index.
type boundaryRequest struct {
	Path   []int `json:"path"`
	Offset int   `json:"offset"`
}

type selectionRequest struct {
	Start boundaryRequest `json:"start"`
	End   boundaryRequest `json:"end"`
}

type highlightRequest struct {
	URL       string           `json:"url"`
	HTML      string           `json:"html"`
	Selection selectionRequest `json:"selection"`
	Color     string           `json:"color"`
	Note      string           `json:"note"`
}

type highlightResponse struct {
	HTML      string           `json:"html"`
	Highlight domain.Highlight `json:"highlight"`
	Report    anchor.Tally     `json:"report"`
}

// RestorePage re-applies the stored highlights of a page and returns the
// marked document.
func RestorePage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req restoreRequest
		if err := decode(w, r, d.MaxBodyBytes, &req); err != nil {
			writeDecodeError(w, err)
			return
		}

		p, err := page.ParseString(req.HTML, req.URL)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}

		rep, err := d.Library.Restore(r.Context(), p)
		if err != nil {
			if statusFor(err) == http.StatusInternalServerError {
				d.Logger.Error("restore failed", logger.String("url", req.URL), logger.Error(err))
			}
			writeError(w, statusFor(err), err)
			return
		}

		out, err := p.HTML()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, restoreResponse{HTML: out, Report: rep})
	}
}

// HighlightPage marks a selection in the posted document, stores the new
// highlight and returns the marked document.
func HighlightPage(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req highlightRequest
		if err := decode(w, r, d.MaxBodyBytes, &req); err != nil {
			writeDecodeError(w, err)
			return
		}

		p, err := page.ParseString(req.HTML, req.URL)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}

		rng, err := resolveRange(p, req.Selection)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}

		ex, err := d.Library.Highlight(r.Context(), p, rng, req.Color, req.Note)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}

		out, err := p.HTML()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusCreated, highlightResponse{HTML: out, Highlight: ex.Highlight, Report: ex.Tally})
	}
}

func resolveRange(p *page.Page, sel selectionRequest) (anchor.Range, error) {
	start, err := resolveBoundary(p, sel.Start)
	if err != nil {
		return anchor.Range{}, fmt.Errorf("selection start: %w", err)
	}
	end, err := resolveBoundary(p, sel.End)
	if err != nil {
		return anchor.Range{}, fmt.Errorf("selection end: %w", err)
	}
	return anchor.Range{Start: start, End: end}, nil
}

func resolveBoundary(p *page.Page, b boundaryRequest) (anchor.Boundary, error) {
	n, err := p.Locate(b.Path)
	if err != nil {
		return anchor.Boundary{}, err
	}
	if b.Offset < 0 {
		return anchor.Boundary{}, fmt.Errorf("%w: negative offset", page.ErrBadPath)
	}

	if n.Type == html.TextNode {
		return anchor.Boundary{Node: n, Offset: page.UTF16ToByte(n.Data, b.Offset)}, nil
	}

	children := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		children++
	}
	if b.Offset > children {
		return anchor.Boundary{}, fmt.Errorf("%w: offset %d past %d children of <%s>",
			page.ErrBadPath, b.Offset, children, strings.ToLower(n.Data))
	}
	return anchor.Boundary{Node: n, Offset: b.Offset}, nil
}
