package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/rainbow/internal/httpserver/deps"
	"github.com/MrSnakeDoc/rainbow/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/rainbow/internal/httpserver/mw"
)

func init() { Register("ops", registerOps) }

// registerOps mounts the liveness probe publicly and keeps everything that
// reveals or changes server state behind the CIDR allow-list.
func registerOps(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))

	internal := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	internal.Get("/readyz", handlers.Readyz(d))
	internal.Get("/infra", handlers.Infra(d))
	internal.With(mw.EnforceHost(d.AllowedHosts, d.Logger)).Post("/reload", handlers.Reload(d))
}
