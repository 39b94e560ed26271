package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/rainbow/internal/httpserver/deps"
	"github.com/MrSnakeDoc/rainbow/internal/sources/sites"
)

type siteResponse struct {
	Host    string `json:"host"`
	Allowed bool   `json:"allowed"`
}

type siteRequest struct {
	Allowed *bool `json:"allowed"`
}

// GetSite reports whether a host may be highlighted.
func GetSite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		host := sites.Normalize(chi.URLParam(r, "host"))
		ok, err := d.Library.SiteAllowed(r.Context(), host)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, siteResponse{Host: host, Allowed: ok})
	}
}

// PutSite adds a host to or removes it from the allow-list.
func PutSite(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		host := sites.Normalize(chi.URLParam(r, "host"))
		if host == "" {
			writeError(w, http.StatusBadRequest, errors.New("missing host"))
			return
		}

		var req siteRequest
		if err := decode(w, r, d.MaxBodyBytes, &req); err != nil {
			writeDecodeError(w, err)
			return
		}
		if req.Allowed == nil {
			writeError(w, http.StatusBadRequest, errors.New("missing allowed"))
			return
		}

		if err := d.Library.SetSiteAllowed(r.Context(), host, *req.Allowed); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, siteResponse{Host: host, Allowed: *req.Allowed})
	}
}
