package mw

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS answers cross-origin requests from the listed origins, typically the
// browser extension ("chrome-extension://<id>", "moz-extension://<id>").
// "*" allows any origin. An empty list sends no CORS headers at all, since
// go-chi/cors treats an empty origin list as "allow everything".
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
		},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:         600,
	})
}
