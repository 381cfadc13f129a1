package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "none", cfg.Sync.Driver)
	assert.Equal(t, "pass123", cfg.Auth.SharedPassword)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 1500*time.Millisecond, cfg.Bot.Delay)
	assert.Equal(t, 3000, cfg.HTTP.Port)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
database:
  host: db.internal
  port: 6543
  user: crave
  database: orders
storage:
  driver: postgres
sync:
  driver: rabbitmq
rabbitmq:
  host: mq.internal
  user: crave
bot:
  delay: 10ms
`)
	t.Setenv("CC_DATABASE_PASSWORD", "s3cret")
	t.Setenv("CC_HTTP_PORT", "8080")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "mq.internal", cfg.RabbitMQ.Host)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 10*time.Millisecond, cfg.Bot.Delay)
}

func TestValidate(t *testing.T) {
	t.Setenv("CC_STORAGE_DRIVER", "floppy")
	_, err := Load("")
	assert.ErrorContains(t, err, "storage.driver")

	t.Setenv("CC_STORAGE_DRIVER", "memory")
	t.Setenv("CC_SYNC_DRIVER", "carrier-pigeon")
	_, err = Load("")
	assert.ErrorContains(t, err, "sync.driver")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestFindConfigLooksInWorkingDirectory(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, err = FindConfig()
	assert.ErrorIs(t, err, fs.ErrNotExist)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "deploy"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "deploy", "config.example.yaml"), []byte("app: {}\n"), 0o600))
	_, err = FindConfig()
	assert.ErrorIs(t, err, fs.ErrNotExist)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("app: {}\n"), 0o600))
	found, err := FindConfig()
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", found)
}
