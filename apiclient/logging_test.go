package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kybkit/kybclient/logger"
	testconsts "github.com/kybkit/kybclient/testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestLeveledLogger(t *testing.T) {
	var buf bytes.Buffer
	l := leveledLogger{log: logger.NewWithWriter(&buf, testconsts.TestLoggerLevelDebug, nil)}

	l.Debug("performing request", "method", "GET", "url", "https://x/api/v1/widgets")
	l.Info("info msg", "retries", 2)
	l.Warn("warn msg", "error", errors.New("boom"))
	l.Error("error msg", "odd")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 4)

	assert.Equal(t, "debug", lines[0]["level"])
	assert.Equal(t, "performing request", lines[0]["message"])
	assert.Equal(t, "GET", lines[0]["method"])
	assert.Equal(t, "https://x/api/v1/widgets", lines[0]["url"])

	assert.Equal(t, "info", lines[1]["level"])
	assert.EqualValues(t, 2, lines[1]["retries"])

	assert.Equal(t, "warn", lines[2]["level"])
	assert.Equal(t, "boom", lines[2]["error"])

	assert.Equal(t, "error", lines[3]["level"])
	assert.NotContains(t, lines[3], "odd", "dangling key is dropped")
}

func TestWithKeysAndValuesSkipsNonStringKeys(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, testconsts.TestLoggerLevelDebug, nil)

	withKeysAndValues(log.Info(), []any{42, "value", "kept", true}).Msg("m")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, true, lines[0]["kept"])
	assert.NotContains(t, lines[0], "42")
}

func TestTruncate(t *testing.T) {
	c := &client{config: &Config{MaxPayloadLogBytes: 3}}
	assert.Equal(t, []byte("abc"), c.truncate([]byte("abcdef")))
	assert.Equal(t, []byte("ab"), c.truncate([]byte("ab")))

	c.config.MaxPayloadLogBytes = 0
	assert.Equal(t, []byte("abcdef"), c.truncate([]byte("abcdef")))
}
