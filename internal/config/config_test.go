package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("MYSQL_DSN", "")
	t.Setenv("PAGE_SIZE_DEFAULT", "")
	t.Setenv("PAGE_SIZE_MAX", "")
	t.Setenv("CACHE_TTL", "")

	cfg := New()

	assert.Equal(t, "root:root@tcp(localhost:3306)/muzz?parseTime=true&charset=utf8mb4&loc=UTC", cfg.DB.DSN)
	assert.Equal(t, 10, cfg.Paging.DefaultSize)
	assert.Equal(t, 50, cfg.Paging.MaxSize)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
}

func TestNew_Overrides(t *testing.T) {
	t.Setenv("MYSQL_DSN", "u:p@tcp(db:3306)/x")
	t.Setenv("PAGE_SIZE_DEFAULT", "20")
	t.Setenv("PAGE_SIZE_MAX", "5")
	t.Setenv("CACHE_TTL", "15m")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("LOG_SOURCE", "yes")

	cfg := New()

	assert.Equal(t, "u:p@tcp(db:3306)/x", cfg.DB.DSN)
	assert.Equal(t, 20, cfg.Paging.DefaultSize)
	// max never drops below the default
	assert.Equal(t, 20, cfg.Paging.MaxSize)
	assert.Equal(t, 15*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.True(t, cfg.Log.Source)
}

func TestNew_LoadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GRPC_PORT=6000\nREDIS_ADDR=cache:6379\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// GRPC_PORT starts unset so the file provides it; Setenv restores it afterwards
	t.Setenv("GRPC_PORT", "")
	require.NoError(t, os.Unsetenv("GRPC_PORT"))
	t.Setenv("REDIS_ADDR", "env:6379")

	cfg := New()

	assert.Equal(t, "6000", cfg.GRPC.Port)
	// the process environment wins over the file
	assert.Equal(t, "env:6379", cfg.Redis.Addr)
}
