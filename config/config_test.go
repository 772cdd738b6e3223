package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testOrigin   = "https://app.example.com"
	testOverride = "https://api.example.com/v2/"
)

// missingFile returns a config path that does not exist
func missingFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.yaml")
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadWithDefaults(t *testing.T) {
	t.Setenv("APP_ORIGIN", testOrigin)

	cfg, err := LoadFile(missingFile(t))
	require.NoError(t, err)

	assert.Equal(t, "kyb-app", cfg.App.Name)
	assert.Equal(t, EnvDevelopment, cfg.App.Env)
	assert.Equal(t, testOrigin, cfg.App.Origin)

	assert.Empty(t, cfg.API.URL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 1, cfg.API.Retry.Limit)
	assert.Equal(t, 300*time.Millisecond, cfg.API.Retry.Delay)
	assert.Equal(t, []int{500, 408, 404, 403, 401}, cfg.API.Retry.StatusCodes)
	assert.Equal(t, []string{"GET"}, cfg.API.Retry.Methods)
	assert.False(t, cfg.API.Tracing)

	assert.False(t, IsSentryConfigured(&cfg.Sentry))
	assert.Equal(t, EnvDevelopment, cfg.Sentry.Environment)
	assert.InDelta(t, 1.0, cfg.Sentry.SampleRate, 0.0001)

	assert.Equal(t, "stdout", cfg.Tracing.Endpoint)
	assert.Equal(t, "http", cfg.Tracing.Protocol)
	assert.InDelta(t, 1.0, cfg.Tracing.SampleRate, 0.0001)

	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("API_URL", testOverride)
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("API_RETRY_LIMIT", "2")
	t.Setenv("API_RETRY_STATUSCODES", "502, 503")
	t.Setenv("API_RETRY_METHODS", "get,head")
	t.Setenv("REPORTING_IGNOREDMESSAGES", "Session expired,Not found")
	t.Setenv("SENTRY_DSN", "https://public@sentry.example.com/1")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("API_TRACING", "true")
	t.Setenv("TRACING_ENDPOINT", "localhost:4317")
	t.Setenv("TRACING_PROTOCOL", "GRPC")

	cfg, err := LoadFile(missingFile(t))
	require.NoError(t, err)

	assert.Equal(t, testOverride, cfg.API.URL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2, cfg.API.Retry.Limit)
	assert.Equal(t, []int{502, 503}, cfg.API.Retry.StatusCodes)
	assert.Equal(t, []string{"GET", "HEAD"}, cfg.API.Retry.Methods)
	assert.Equal(t, []string{"Session expired", "Not found"}, cfg.Reporting.IgnoredMessages)
	assert.True(t, IsSentryConfigured(&cfg.Sentry))
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.API.Tracing)
	assert.Equal(t, "localhost:4317", cfg.Tracing.Endpoint)
	assert.Equal(t, "grpc", cfg.Tracing.Protocol)
}

func TestLoadIgnoresUnknownEnvironmentKeys(t *testing.T) {
	t.Setenv("APP_ORIGIN", testOrigin)
	t.Setenv("API_TIMEOUT_MS", "1")
	t.Setenv("LOG_LEVEL_OVERRIDE", "x")
	t.Setenv("API_RETRY", "3")
	t.Setenv("SENTRY_RELEASE", "1.2.3")

	cfg, err := LoadFile(missingFile(t))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 1, cfg.API.Retry.Limit)
	assert.Equal(t, "1.2.3", cfg.Sentry.Release)
}

func TestLoadYAMLFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
app:
  origin: https://app.example.com
  env: staging
api:
  timeout: 10s
  retry:
    statuscodes: [500]
`)
	writeFile(t, dir, "config.staging.yaml", `
api:
  timeout: 12s
`)

	t.Run("environment file overrides base file", func(t *testing.T) {
		cfg, err := LoadFile(path)
		require.NoError(t, err)

		assert.Equal(t, EnvStaging, cfg.App.Env)
		assert.Equal(t, 12*time.Second, cfg.API.Timeout)
		assert.Equal(t, []int{500}, cfg.API.Retry.StatusCodes)
	})

	t.Run("environment variables override files", func(t *testing.T) {
		t.Setenv("API_TIMEOUT", "1s")

		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, time.Second, cfg.API.Timeout)
	})
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "api: [unterminated")

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load")
}

func TestLoadRequiresOriginOrOverride(t *testing.T) {
	_, err := LoadFile(missingFile(t))
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "missing", cfgErr.Category)
	assert.Contains(t, err.Error(), "API_URL or APP_ORIGIN")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		field string
	}{
		{name: "bad environment", env: map[string]string{"APP_ENV": "qa"}, field: "app.env"},
		{name: "bad override url", env: map[string]string{"API_URL": "not a url"}, field: "api.url"},
		{name: "zero timeout", env: map[string]string{"API_TIMEOUT": "0s"}, field: "api.timeout"},
		{name: "status code out of range", env: map[string]string{"API_RETRY_STATUSCODES": "700"}, field: "api.retry.statuscodes[0]"},
		{name: "unknown method", env: map[string]string{"API_RETRY_METHODS": "FETCH"}, field: "api.retry.methods[0]"},
		{name: "sample rate above one", env: map[string]string{"SENTRY_SAMPLERATE": "1.5"}, field: "sentry.samplerate"},
		{name: "unknown tracing protocol", env: map[string]string{"TRACING_PROTOCOL": "udp"}, field: "tracing.protocol"},
		{name: "unknown log level", env: map[string]string{"LOG_LEVEL": "verbose"}, field: "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ORIGIN", testOrigin)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadFile(missingFile(t))
			require.Error(t, err)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, "invalid", cfgErr.Category)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestConfigErrorFormatting(t *testing.T) {
	err := NewInvalidFieldError("app.env", "invalid value qa", []string{EnvDevelopment, EnvStaging})
	assert.Equal(t, "config_invalid: app.env invalid value qa must be one of: development, staging", err.Error())

	missing := NewMissingFieldError("app.name", "APP_NAME", "app.name")
	assert.Equal(t, "config_missing: app.name required set APP_NAME env var or add app.name to config.yaml", missing.Error())
}

func TestIsNotConfigured(t *testing.T) {
	assert.True(t, IsNotConfigured(NewNotConfiguredError("sentry", "SENTRY_DSN", "sentry.dsn")))
	assert.True(t, IsNotConfigured(ErrNotConfigured))
	assert.False(t, IsNotConfigured(NewInvalidFieldError("api.url", "bad", nil)))
	assert.False(t, IsNotConfigured(nil))
}

