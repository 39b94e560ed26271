package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/rainbow/internal/httpserver/deps"
	"github.com/MrSnakeDoc/rainbow/internal/library"
)

type componentStatus struct {
	OK         bool   `json:"ok"`
	Mode       string `json:"mode,omitempty"`
	Highlights *int   `json:"highlights,omitempty"`
	File       string `json:"file,omitempty"`
	Impact     string `json:"impact,omitempty"`
	Error      string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		components := map[string]componentStatus{
			"store": checkStore(ctx, d),
			"sites": sitesStatus(d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     determineStatus(components),
			Components: components,
		})
	}
}

func determineStatus(components map[string]componentStatus) string {
	if store, exists := components["store"]; exists && !store.OK {
		return "critical" // nothing can be saved or restored
	}
	if sites, exists := components["sites"]; exists && !sites.OK {
		return "degraded"
	}
	return "ok"
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{
			OK:     false,
			Impact: "highlights-unavailable",
			Error:  "store not initialized",
		}
	}

	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   d.StoreMode,
			Impact: "highlights-unavailable",
			Error:  err.Error(),
		}
	}

	status := componentStatus{OK: true, Mode: d.StoreMode}
	if hs, err := d.Library.List(ctx, library.Filter{}); err == nil {
		n := len(hs)
		status.Highlights = &n
	}
	return status
}

func sitesStatus(d deps.Deps) componentStatus {
	if d.SitesFile == "" {
		return componentStatus{OK: true, Mode: "manual"}
	}
	return componentStatus{OK: true, Mode: "seeded", File: d.SitesFile}
}
