package deps

import (
	"time"

	"github.com/MrSnakeDoc/rainbow/internal/library"
	"github.com/MrSnakeDoc/rainbow/internal/logger"
	"github.com/MrSnakeDoc/rainbow/internal/store"
)

type Deps struct {
	Logger            logger.Logger
	StartTime         time.Time
	Version           string
	Commit            string
	BuildDate         string
	GoVersion         string
	TimeNow           func() time.Time // for testing, defaults to time.Now
	AllowedHosts      []string         // Host headers allowed to access the server
	AllowedCIDRS      []string         // IPs allowed to access the admin endpoints
	TrustProxy        bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	CORSOrigins       []string         // browser origins allowed to call /api
	WriteBurst        int              // rate limit burst for mutating requests
	WriteRefillPerMin int              // rate limit refill for mutating requests
	MaxBodyBytes      int64            // max request body for posted pages
	Library           *library.Library // highlights, allow-list and anchoring
	Store             store.Store      // backing store, pinged by /infra
	StoreMode         string           // "redis" | "memory"
	SitesFile         string           // sites seed file (empty when disabled)
	ReloadTrigger     chan struct{}    // Channel to trigger a manual sites reload (nil when disabled)
}
