package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netolib/library-service/internal/config"
)

func Test_Default_IsValid(t *testing.T) {
	// act
	cfg := config.Default()

	// assert
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, config.StorageMemory, cfg.Storage.Backend)
	assert.Equal(t, config.AdapterPGXPool, cfg.Postgres.Adapter)
	assert.Equal(t, 24*time.Hour, cfg.Notifier.Interval.Std())
}

func Test_Load_WithoutFileReturnsDefaults(t *testing.T) {
	// act
	cfg, err := config.Load("")

	// assert
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func Test_Load_MissingFile(t *testing.T) {
	// act
	_, err := config.Load("/does/not/exist.yaml")

	// assert
	assert.Error(t, err)
}

func Test_Load_YAMLOverridesDefaults(t *testing.T) {
	// arrange
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
http:
  addr: ":9090"
storage:
  backend: postgres
postgres:
  adapter: sqlx
notifier:
  enabled: true
  interval: 1h
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	// act
	cfg, err := config.Load(path)

	// assert
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, config.StoragePostgres, cfg.Storage.Backend)
	assert.Equal(t, config.AdapterSQLX, cfg.Postgres.Adapter)
	assert.True(t, cfg.Notifier.Enabled)
	assert.Equal(t, time.Hour, cfg.Notifier.Interval.Std())

	// untouched values keep their defaults
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout.Std())
}

func Test_Load_EnvOverridesFile(t *testing.T) {
	// arrange
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  addr: \":9090\"\n"), 0o600))

	t.Setenv("LIBRARY_HTTP_ADDR", ":7070")
	t.Setenv("LIBRARY_POSTGRES_DSN", "postgres://elsewhere/library")

	// act
	cfg, err := config.Load(path)

	// assert
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.Equal(t, "postgres://elsewhere/library", cfg.Postgres.DSN)
}

func Test_Load_RejectsUnknownBackend(t *testing.T) {
	// arrange
	t.Setenv("LIBRARY_STORAGE_BACKEND", "cassandra")

	// act
	_, err := config.Load("")

	// assert
	assert.ErrorContains(t, err, "unknown storage backend")
}

func Test_Load_RejectsUnknownAdapter(t *testing.T) {
	// arrange
	t.Setenv("LIBRARY_POSTGRES_ADAPTER", "odbc")

	// act
	_, err := config.Load("")

	// assert
	assert.ErrorContains(t, err, "unknown postgres adapter")
}
