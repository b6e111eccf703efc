// Package dbtest opens throwaway SQLite stores for tests.
package dbtest

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bioauth/config"
	"bioauth/database"
)

// Config returns a database config pointing into t.TempDir().
func Config(t *testing.T) config.DatabaseConfig {
	t.Helper()
	return config.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		Timeout:      2 * time.Second,
		MaxOpenConns: 1,
	}
}

// NewStore opens a migrated store that is closed when the test ends.
func NewStore(t *testing.T) *database.Store {
	t.Helper()
	return NewStoreWithConfig(t, Config(t))
}

func NewStoreWithConfig(t *testing.T, cfg config.DatabaseConfig) *database.Store {
	t.Helper()
	store, err := database.Open(context.Background(), cfg, DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
