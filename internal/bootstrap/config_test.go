package bootstrap

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UdayGopi/Dental-Clinic/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, config.AuthModeAPI, cfg.Auth.Mode)
	assert.Equal(t, config.SessionStoreMemory, cfg.Session.Store)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 10*time.Second, cfg.Auth.RequestTimeout)
	assert.Equal(t, cfg.Auth.BackendURL, cfg.API.BackendURL)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AUTH_MODE", "mock")
	t.Setenv("DEV_AUTH_ROLE", " Staff ")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("REDIS_URI", "redis://cache:6379/2")
	t.Setenv("REGISTER_ADMIN_CODE", "letmein")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, config.AuthModeMock, cfg.Auth.Mode)
	assert.Equal(t, "staff", cfg.Auth.DevAuth.Role)
	assert.Equal(t, config.SessionStoreRedis, cfg.Session.Store)
	assert.Equal(t, "redis://cache:6379/2", cfg.Redis.URI)
	assert.Equal(t, "letmein", cfg.Auth.RegisterAdminCode)
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	// Register restoration, then clear so godotenv may set it.
	t.Setenv("HTTP_ADDR", "")
	require.NoError(t, os.Unsetenv("HTTP_ADDR"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HTTP_ADDR=:9999\n"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.HTTP.Addr)
}

func TestLoadConfig_InvalidValue(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AUTH_MODE", "oauth")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestConfigureLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := ConfigureLogger(config.ObservabilityConfig{LogLevel: "warn", LogFormat: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)

	buf.Reset()
	ConfigureLogger(config.ObservabilityConfig{LogLevel: "debug", LogFormat: "text"}, &buf).Debug("plain")
	assert.True(t, strings.Contains(buf.String(), "msg=plain"))
}
