package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/rainbow/internal/logger"
	"github.com/MrSnakeDoc/rainbow/internal/sources/sites"
)

// watchDebounce coalesces the burst of events editors emit on save.
const watchDebounce = 100 * time.Millisecond

// SiteMerger adds sites to the allow-list without removing any.
type SiteMerger interface {
	MergeSites(ctx context.Context, sites []string) (int, error)
}

// SitesReloader merges the sites seed file into the allow-list on start,
// on every tick, on manual trigger and, when watching, on file changes.
type SitesReloader struct {
	loader        *sites.Loader
	merger        SiteMerger
	logger        logger.Logger
	interval      time.Duration
	watch         bool
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewSitesReloader creates a new sites reloader
func NewSitesReloader(
	sitesFile string,
	merger SiteMerger,
	log logger.Logger,
	interval time.Duration,
	watch bool,
	manualTrigger chan struct{},
) *SitesReloader {
	return &SitesReloader{
		loader:        sites.NewLoader(sitesFile),
		merger:        merger,
		logger:        log.Named("sites").With(logger.String("file", sitesFile)),
		interval:      interval,
		watch:         watch,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the file once and then keeps it merged in the background
func (sr *SitesReloader) Start(ctx context.Context) error {
	// Load immediately on start
	if err := sr.Reload(ctx); err != nil {
		return fmt.Errorf("initial reload failed: %w", err)
	}

	var changes <-chan struct{}
	if sr.watch {
		ch, err := sr.watchFile(ctx)
		if err != nil {
			sr.logger.Warn("file watch disabled", logger.Error(err))
		} else {
			changes = ch
		}
	}

	ticker := time.NewTicker(sr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sr.reloadLogged(ctx)
			case <-sr.manualTrigger:
				sr.logger.Info("manual reload triggered")
				sr.reloadLogged(ctx)
			case <-changes:
				sr.logger.Info("sites file changed")
				sr.reloadLogged(ctx)
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (sr *SitesReloader) Stop() {
	close(sr.stopCh)
}

// Reload merges the file into the allow-list
func (sr *SitesReloader) Reload(ctx context.Context) error {
	hosts, err := sr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load sites: %w", err)
	}

	added, err := sr.merger.MergeSites(ctx, hosts)
	if err != nil {
		return fmt.Errorf("failed to merge sites: %w", err)
	}

	sr.logger.Info("sites file merged",
		logger.Int("listed", len(hosts)),
		logger.Int("added", added))
	return nil
}

func (sr *SitesReloader) reloadLogged(ctx context.Context) {
	if err := sr.Reload(ctx); err != nil {
		sr.logger.Error("failed to reload sites", logger.Error(err))
	}
}

// watchFile watches the directory holding the sites file, since editors
// often replace the file instead of writing it in place. The returned
// channel receives one value per debounced burst of changes.
func (sr *SitesReloader) watchFile(ctx context.Context) (<-chan struct{}, error) {
	path, err := filepath.Abs(sr.loader.Path())
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer func() { _ = watcher.Close() }()

		var debounce *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
					continue
				}
				if debounce == nil {
					debounce = time.NewTimer(watchDebounce)
				} else {
					debounce.Reset(watchDebounce)
				}
				fire = debounce.C
			case <-fire:
				fire = nil
				select {
				case out <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				sr.logger.Warn("watcher error", logger.Error(err))
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	sr.logger.Debug("watching sites file", logger.String("abs_path", path))
	return out, nil
}
