package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-photos-proxy/internal/config"
	"github.com/jrsteele09/go-photos-proxy/internal/errors"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	c, err := config.Load("")
	require.NoError(t, err)

	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, 25, c.GetMediaDefaultPageSize())
	require.Equal(t, 100, c.GetMediaMaxPageSize())
	require.Equal(t, config.StoreBackendMemory, c.GetStoreBackend())
	require.Equal(t, 14*24*time.Hour, c.GetSessionTTL())
	require.True(t, c.GetSearchFallbackOnEmpty())
	require.Equal(t, 1, c.GetSearchFallbackScanPages())
	require.False(t, c.GetSessionSecure())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("http://localhost:5173"))
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(path, []byte(strings.Join([]string{
		"port: \"9000\"",
		"env: PROD",
		"store_backend: redis",
		"redis_addr: redis:6379",
		"session_ttl: 2h",
		"search_fallback_on_empty: false",
	}, "\n")), 0o600)
	require.NoError(t, err)

	t.Setenv("REDIS_ADDR", "override:6380")
	t.Setenv("MEDIA_DEFAULT_PAGE_SIZE", "50")

	c, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, ":9000", c.GetPort())
	require.Equal(t, config.StoreBackendRedis, c.GetStoreBackend())
	require.Equal(t, "override:6380", c.GetRedisAddr())
	require.Equal(t, 2*time.Hour, c.GetSessionTTL())
	require.Equal(t, 50, c.GetMediaDefaultPageSize())
	require.False(t, c.GetSearchFallbackOnEmpty())
	require.True(t, c.GetSessionSecure(), "non-DEV environments default to secure cookies")
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("MEDIA_RATE_BURST", "lots")
	_, err := config.Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "MEDIA_RATE_BURST")
}

func TestValidate(t *testing.T) {
	t.Run("missing required", func(t *testing.T) {
		c, err := config.Load("")
		require.NoError(t, err)
		err = c.Validate()
		require.Error(t, err)
		require.True(t, errors.Is(err, errors.ErrMissingConfig))
		require.Contains(t, err.Error(), "GOOGLE_CLIENT_ID")
		require.Contains(t, err.Error(), "SESSION_SECRET")
	})

	t.Run("complete", func(t *testing.T) {
		t.Setenv("GOOGLE_CLIENT_ID", "client")
		t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
		t.Setenv("GOOGLE_REDIRECT_URI", "http://localhost:8080/auth/google/callback")
		t.Setenv("SESSION_SECRET", testSecret)
		c, err := config.Load("")
		require.NoError(t, err)
		require.NoError(t, c.Validate())
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("GOOGLE_CLIENT_ID", "client")
		t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
		t.Setenv("GOOGLE_REDIRECT_URI", "http://localhost:8080/auth/google/callback")
		t.Setenv("SESSION_SECRET", testSecret)
		t.Setenv("STORE_BACKEND", "mongo")
		c, err := config.Load("")
		require.NoError(t, err)
		require.ErrorContains(t, c.Validate(), "STORE_BACKEND")
	})
}
