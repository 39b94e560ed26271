package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/rainbow/internal/domain"
	"github.com/MrSnakeDoc/rainbow/internal/httpserver/deps"
	"github.com/MrSnakeDoc/rainbow/internal/library"
	"github.com/MrSnakeDoc/rainbow/internal/logger"
)

type highlightsResponse struct {
	Count      int                `json:"count"`
	Highlights []domain.Highlight `json:"highlights"`
}

type noteRequest struct {
	Note *string `json:"note"`
}

// ListHighlights returns stored highlights, newest first.
// Query: ?color=<id|all|other>&url=<page address>
func ListHighlights(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		hs, err := d.Library.List(r.Context(), library.Filter{
			Color: q.Get("color"),
			URL:   q.Get("url"),
		})
		if err != nil {
			d.Logger.Error("failed to list highlights", logger.Error(err))
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, highlightsResponse{Count: len(hs), Highlights: hs})
	}
}

// UpdateNote replaces the note of one highlight.
func UpdateNote(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := highlightID(w, r)
		if !ok {
			return
		}

		var req noteRequest
		if err := decode(w, r, d.MaxBodyBytes, &req); err != nil {
			writeDecodeError(w, err)
			return
		}
		if req.Note == nil {
			writeError(w, http.StatusBadRequest, errors.New("missing note"))
			return
		}

		h, err := d.Library.UpdateNote(r.Context(), id, *req.Note)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, h)
	}
}

// DeleteHighlight removes one highlight.
func DeleteHighlight(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := highlightID(w, r)
		if !ok {
			return
		}
		if err := d.Library.Delete(r.Context(), id); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ClearHighlights removes every highlight.
func ClearHighlights(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Library.Clear(r.Context()); err != nil {
			d.Logger.Error("failed to clear highlights", logger.Error(err))
			writeError(w, statusFor(err), err)
			return
		}
		d.Logger.Warn("highlights cleared via endpoint",
			logger.String("remote_ip", r.RemoteAddr))
		w.WriteHeader(http.StatusNoContent)
	}
}

func highlightID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid highlight id"))
		return 0, false
	}
	return id, true
}
