// Package version holds build metadata, set with -ldflags at release time:
//
//	go build -ldflags "-X github.com/MrSnakeDoc/rainbow/internal/version.Version=v0.3.0" ./cmd/rainbow
package version

import (
	"fmt"
	"runtime"
	"time"
)

var (
	Version   = "dev"                           // ex: v0.3.0
	Commit    = "none"                          // ex: abcd123
	BuildDate = time.Now().Format(time.RFC3339) // ex: 2026-10-19T18:42:00Z
	GoVersion = runtime.Version()
)

// String is the one-line build banner.
func String() string {
	return fmt.Sprintf("rainbow %s (commit=%s, built=%s, go=%s)", Version, Commit, BuildDate, GoVersion)
}
