package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/catalog-backend/internal/config"
)

func sqliteEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("DB_DRIVER", config.DriverSQLite)
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "catalog.db"))
	t.Setenv("DB_LOG_LEVEL", "silent")
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("STORAGE_DRIVER", "local")
	t.Setenv("STORAGE_LOCAL_DIR", filepath.Join(dir, "uploads"))
	t.Setenv("RABBITMQ_URL", "")
	return dir
}

func TestOpenStore_CloseReleasesConnection(t *testing.T) {
	sqliteEnv(t)
	cfg, err := config.Load()
	require.NoError(t, err)

	ctx := context.Background()
	repo, closeStore, err := openStore(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, repo.Ping(ctx))

	closeStore()
	assert.Error(t, repo.Ping(ctx))
}

func TestRun_ReturnsConfigErrors(t *testing.T) {
	sqliteEnv(t)
	t.Setenv("DB_DRIVER", "oracle")

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestRun_ReturnsStartupErrorsAfterStoreOpens(t *testing.T) {
	dir := sqliteEnv(t)
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	t.Setenv("STORAGE_LOCAL_DIR", filepath.Join(blocker, "uploads"))

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize asset storage")
	assert.FileExists(t, filepath.Join(dir, "catalog.db"))
}
