package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/rainbow/internal/config"
	"github.com/MrSnakeDoc/rainbow/internal/httpserver"
	"github.com/MrSnakeDoc/rainbow/internal/httpserver/deps"
	"github.com/MrSnakeDoc/rainbow/internal/library"
	"github.com/MrSnakeDoc/rainbow/internal/logger"
	"github.com/MrSnakeDoc/rainbow/internal/redis"
	"github.com/MrSnakeDoc/rainbow/internal/scheduler"
	"github.com/MrSnakeDoc/rainbow/internal/store"
	"github.com/MrSnakeDoc/rainbow/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/rainbow/internal/store/redis"
	"github.com/MrSnakeDoc/rainbow/internal/utils"
	"github.com/MrSnakeDoc/rainbow/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	reloader    *scheduler.SitesReloader
}

// New wires the store, the library and the HTTP server from cfg. Redis is
// connected here so a misconfigured store fails before anything listens.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	st, redisClient, err := openStore(ctx, cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	lib := library.New(st, loggerClient.Named("library"), nil)

	// Sites reloader (if a seed file is configured)
	var reloader *scheduler.SitesReloader
	var reloadTrigger chan struct{}
	if cfg.SitesFile != "" {
		loggerClient.Info("sites file configured, initializing sites reloader",
			logger.String("file", cfg.SitesFile))
		reloadTrigger = make(chan struct{}, 1)
		reloader = scheduler.NewSitesReloader(
			cfg.SitesFile,
			lib,
			loggerClient,
			cfg.ReloadInterval,
			cfg.WatchSitesFile,
			reloadTrigger,
		)
	} else {
		loggerClient.Info("sites file not configured, allow-list is managed through the API only")
	}

	if len(cfg.AllowedHosts) > 0 || len(cfg.AllowedCIDRS) > 0 || len(cfg.CORSOrigins) > 0 {
		loggerClient.Info("access restrictions enabled",
			logger.Strings("hosts", cfg.AllowedHosts),
			logger.Strings("cidrs", cfg.AllowedCIDRS),
			logger.Strings("cors_origins", cfg.CORSOrigins))
	}

	d := deps.Deps{
		Logger:            loggerClient,
		StartTime:         time.Now(),
		Version:           version.Version,
		Commit:            version.Commit,
		BuildDate:         version.BuildDate,
		GoVersion:         version.GoVersion,
		TimeNow:           time.Now,
		AllowedHosts:      cfg.AllowedHosts,
		AllowedCIDRS:      cfg.AllowedCIDRS,
		TrustProxy:        cfg.TrustProxy,
		CORSOrigins:       cfg.CORSOrigins,
		WriteBurst:        cfg.WriteBurst,
		WriteRefillPerMin: cfg.WriteRefillPerMin,
		MaxBodyBytes:      cfg.MaxBodyBytes,
		Library:           lib,
		Store:             st,
		StoreMode:         cfg.Store,
		SitesFile:         cfg.SitesFile,
		ReloadTrigger:     reloadTrigger,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		redisClient: redisClient,
		reloader:    reloader,
	}, nil
}

// openStore returns the configured store. The Redis client is nil in
// memory mode.
func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (store.Store, *goredis.Client, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using in-memory store, highlights are lost on exit")
		return memory.New(), nil, nil
	}

	client, err := redis.Connect(ctx, redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		DB:             cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return redisstore.NewStore(client, cfg.RedisKeyPrefix), client, nil
}

// OpenLibrary wires a library against the configured store without any
// server. release closes the store connection.
func OpenLibrary(ctx context.Context, cfg *config.Config, log logger.Logger) (lib *library.Library, release func(), err error) {
	st, client, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	release = func() {
		if client != nil {
			utils.Close(client)
		}
	}
	return library.New(st, log.Named("library"), nil), release, nil
}

// Run serves HTTP until SIGINT/SIGTERM, then shuts down gracefully.
func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Rainbow v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start sites reloader (if enabled)
	if a.reloader != nil {
		if err := a.reloader.Start(ctx); err != nil {
			a.Close()
			return fmt.Errorf("failed to start sites reloader: %w", err)
		}
		a.logger.Info("sites reloader started",
			logger.Duration("interval", a.cfg.ReloadInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		a.stopReloader()
		a.Close()
		return err
	}

	a.stopReloader()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.Close()
	a.logger.Info("✅ Rainbow stopped cleanly")
	return nil
}

// stopReloader stops the sites reloader once. Safe to call when none runs.
func (a *App) stopReloader() {
	if a.reloader == nil {
		return
	}
	a.reloader.Stop()
	a.reloader = nil
	a.logger.Info("sites reloader stopped")
}

// Close releases the store connection.
func (a *App) Close() {
	if a.redisClient == nil {
		return
	}
	if err := utils.CloseLogged(a.redisClient, a.logger, "redis"); err == nil {
		a.logger.Info("✅ Redis closed cleanly")
	}
	a.redisClient = nil
}
