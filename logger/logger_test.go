package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestNewWithWriterLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn", nil)

	log.Info().Msg("dropped")
	log.Debug().Msg("dropped")
	log.Warn().Msg("kept warn")
	log.Error().Err(errors.New("boom")).Msg("kept error")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "warn", entries[0]["level"])
	assert.Equal(t, "kept warn", entries[0]["message"])
	assert.Equal(t, "error", entries[1]["level"])
	assert.Equal(t, "boom", entries[1]["error"])
}

func TestNewWithWriterInvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "not-a-level", nil)

	assert.Equal(t, zerolog.InfoLevel, log.zlog.GetLevel())
	log.Debug().Msg("dropped")
	assert.Empty(t, buf.String())
}

func TestLogEventFieldsAreFiltered(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug", nil)

	log.Info().
		Str("method", "GET").
		Str("authorization", "Bearer abc").
		Strs("token", []string{"abc"}).
		Int("status", 404).
		Int64("call_count", 2).
		Dur("elapsed", 3*time.Millisecond).
		Interface("headers", map[string]string{"Authorization": "Bearer abc", "Accept": "*/*"}).
		Msg("REST client request")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "Bearer ***", entry["authorization"])
	assert.Equal(t, []any{DefaultMaskValue}, entry["token"])
	assert.Equal(t, float64(404), entry["status"])
	headers := entry["headers"].(map[string]any)
	assert.Equal(t, "Bearer ***", headers["Authorization"])
	assert.Equal(t, "*/*", headers["Accept"])
}

func TestWithFieldsFiltersSensitiveData(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info", nil).WithFields(map[string]any{
		"component": "apiclient",
		"api_key":   "k",
	})

	log.Info().Msg("hello")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "apiclient", entries[0]["component"])
	assert.Equal(t, DefaultMaskValue, entries[0]["api_key"])
}

func TestWithContext(t *testing.T) {
	base := NewWithWriter(&bytes.Buffer{}, "info", nil)

	t.Run("non context returns original logger", func(t *testing.T) {
		assert.Same(t, base, base.WithContext("nope"))
	})

	t.Run("context without logger returns original logger", func(t *testing.T) {
		assert.Same(t, base, base.WithContext(context.Background()))
	})

	t.Run("context logger is used", func(t *testing.T) {
		var buf bytes.Buffer
		zl := zerolog.New(&buf)
		ctx := zl.WithContext(context.Background())

		base.WithContext(ctx).Info().Msg("from ctx")
		assert.Contains(t, buf.String(), "from ctx")
	})
}

func TestNop(t *testing.T) {
	log := Nop()
	assert.NotPanics(t, func() {
		log.Error().Str("k", "v").Msg("discarded")
	})
}
