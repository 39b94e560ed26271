package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/rainbow/internal/httpserver/deps"
	"github.com/MrSnakeDoc/rainbow/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/rainbow/internal/httpserver/mw"
)

func init() { Register("api", registerAPI) }

func registerAPI(r chi.Router, d deps.Deps) {
	writes := mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.WriteBurst,
		RefillPerIPPerMin: d.WriteRefillPerMin,
		MaxEntries:        10000,
		TrustProxy:        d.TrustProxy,
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(mw.CORS(d.CORSOrigins))
		r.Use(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))

		r.Get("/highlights", handlers.ListHighlights(d))
		r.With(writes).Patch("/highlights/{id}", handlers.UpdateNote(d))
		r.With(writes).Delete("/highlights/{id}", handlers.DeleteHighlight(d))
		r.With(writes).Delete("/highlights", handlers.ClearHighlights(d))

		r.Get("/sites/{host}", handlers.GetSite(d))
		r.With(writes).Put("/sites/{host}", handlers.PutSite(d))

		r.Post("/pages/restore", handlers.RestorePage(d))
		r.With(writes).Post("/pages/highlight", handlers.HighlightPage(d))
	})
}
