package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store modes
const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline (default: 15s)
	MaxBodyBytes    int64         // max size of a posted page (default: 8 MiB)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	Store string // "redis" | "memory"

	SitesFile      string        // optional YAML seed of allowed sites (empty = disabled)
	ReloadInterval time.Duration // interval to re-merge the sites file (default: 1h)
	WatchSitesFile bool          // reload on file change events as well

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisKeyPrefix        string        // prefix prepended to every key (ex: "team-a:")
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IP (e.g. "1.2.3.4, 5.6.7.8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	CORSOrigins  []string // origins allowed to call the API from a browser (ex: "chrome-extension://abc")

	WriteBurst        int // burst of write requests per client IP
	WriteRefillPerMin int // write tokens regained per minute per client IP
}

// Load reads the configuration from the environment. A .env file in the
// working directory (or the one named by RH_ENV_FILE) is applied first;
// variables already set in the environment win.
func Load() *Config {
	loadDotEnv(getenv("RH_ENV_FILE", ".env"))

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("RH_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("RH_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("RH_REQUEST_TIMEOUT", 15*time.Second),
		MaxBodyBytes:    int64(getenvInt("RH_MAX_BODY_BYTES", 8<<20)),

		// Logging
		LogLevel:  getenv("RH_LOG_LEVEL", "info"),
		PrettyLog: mustBool("RH_PRETTY_LOG", true),

		// Storage
		Store: strings.ToLower(getenv("RH_STORE", StoreRedis)),

		// Sites seed
		SitesFile:      getenv("RH_SITES_FILE", ""),
		ReloadInterval: mustDuration("RH_RELOAD_INTERVAL", time.Hour),
		WatchSitesFile: mustBool("RH_WATCH_SITES_FILE", true),

		// Redis settings
		RedisAddr:             getenv("RH_REDIS_ADDR", "localhost:6379"),
		RedisUser:             getenv("RH_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("RH_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("RH_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("RH_REDIS_DB", 0),
		RedisKeyPrefix:        getenv("RH_REDIS_KEY_PREFIX", ""),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("RH_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("RH_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("RH_TRUST_PROXY", false),
		CORSOrigins:  splitAndTrim(getenv("RH_CORS_ORIGINS", "")),

		WriteBurst:        getenvInt("RH_WRITE_BURST", 20),
		WriteRefillPerMin: getenvInt("RH_WRITE_REFILL_PER_MIN", 120),
	}

	switch cfg.Store {
	case StoreRedis, StoreMemory:
	default:
		panic(fmt.Sprintf("❌ FATAL: RH_STORE must be %q or %q, got %q", StoreRedis, StoreMemory, cfg.Store))
	}

	// Validate Redis password configuration
	if cfg.Store == StoreRedis && cfg.RedisPasswordRequired {
		cfg.RedisPassword = requireEnv("RH_REDIS_PASSWORD")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// loadDotEnv applies path if it exists. godotenv never overrides variables
// that are already set.
func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		panic(fmt.Sprintf("❌ FATAL: cannot read %s: %v", path, err))
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
