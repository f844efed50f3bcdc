package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "SHELF_API_BASE_URL", "LOG_LEVEL", "LOG_FORMAT", "SESSION_CACHE_SIZE", "API_TIMEOUT", "DEVAPI_PORT"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 256, cfg.SessionCacheSize)
	assert.Equal(t, 10*time.Second, cfg.APITimeout)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SHELF_API_BASE_URL", "http://api.internal:8000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SESSION_CACHE_SIZE", "8")
	t.Setenv("API_TIMEOUT", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "http://api.internal:8000", cfg.APIBaseURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 8, cfg.SessionCacheSize)
	assert.Equal(t, 2*time.Second, cfg.APITimeout)
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
	}{
		{"non numeric port", "PORT", "eighty"},
		{"port out of range", "PORT", "70000"},
		{"bad base url", "SHELF_API_BASE_URL", "not a url"},
		{"unknown log level", "LOG_LEVEL", "verbose"},
		{"zero cache", "SESSION_CACHE_SIZE", "0"},
		{"bad timeout", "API_TIMEOUT", "soon"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
