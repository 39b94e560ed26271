package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/rainbow/internal/config"
	"github.com/MrSnakeDoc/rainbow/internal/logger"
)

func TestRunStopsReloaderWhenServerFails(t *testing.T) {
	sitesFile := filepath.Join(t.TempDir(), "sites.yaml")
	require.NoError(t, os.WriteFile(sitesFile, []byte("sites:\n  - notes.example.com\n"), 0o600))

	cfg := &config.Config{
		ListenPort:      "127.0.0.1:-1",
		ShutdownTimeout: time.Second,
		Store:           config.StoreMemory,
		SitesFile:       sitesFile,
		ReloadInterval:  time.Hour,
	}

	a, err := New(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	require.NotNil(t, a.reloader)

	err = a.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http server error")
	assert.Nil(t, a.reloader, "reloader must be stopped when the server fails")

	// A second stop is a no-op rather than a double close.
	a.stopReloader()
}

func TestOpenLibraryMemory(t *testing.T) {
	cfg := &config.Config{Store: config.StoreMemory}

	lib, release, err := OpenLibrary(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	defer release()

	require.NoError(t, lib.SetSiteAllowed(context.Background(), "notes.example.com", true))
	ok, err := lib.SiteAllowed(context.Background(), "notes.example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}
