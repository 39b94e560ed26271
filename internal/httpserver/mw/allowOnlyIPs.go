package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/rainbow/internal/logger"
	"github.com/MrSnakeDoc/rainbow/internal/utils"
)

// AllowOnlyCIDRS rejects clients outside the allowed IPs/CIDRs with 403. An
// empty list does not filter. trustProxy resolves the client from proxy
// headers (cloudflared, reverse proxies).
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(allowed)
	if m.IsEmpty() {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !m.Allow(ip) {
				log.Debug("client rejected",
					logger.String("ip", ip),
					logger.String("path", r.URL.Path),
					logger.Bool("trust_proxy", trustProxy))
				reject(w, http.StatusForbidden, "client not allowed")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
