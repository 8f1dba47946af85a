package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DB_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 1, cfg.WorkerConcurrency)
	assert.Equal(t, 24*time.Hour, cfg.MappingCacheTTL)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_driver: mysql
db_dsn: app:apppass@tcp(127.0.0.1:3306)/nonebot
redis_addr: 127.0.0.1:6379
mapping_cache_ttl: 1h
worker_concurrency: 4
`), 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("WORKER_CONCURRENCY", "2")
	t.Setenv("MAPPING_CACHE_TTL", "bogus")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "app:apppass@tcp(127.0.0.1:3306)/nonebot", cfg.DBDSN)
	assert.Equal(t, "127.0.0.1:6379", cfg.RedisAddr)
	assert.Equal(t, time.Hour, cfg.MappingCacheTTL)
	assert.Equal(t, 2, cfg.WorkerConcurrency)
}

func TestLoad_BadFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}
