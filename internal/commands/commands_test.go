package commands

import (
	"bytes"
	"context"
	nethttp "net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kybkit/kybclient/apiclient"
	testconsts "github.com/kybkit/kybclient/testing"
	"github.com/kybkit/kybclient/testing/fixtures"
)

// execute runs kybctl with args against a config file that does not exist,
// so only defaults and the environment apply.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCommand("test")
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "config.yaml")}, args...))
	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRequestCommand(t *testing.T) {
	t.Run("prints status and body", func(t *testing.T) {
		srv := fixtures.NewAPIServer(t, fixtures.Reply{Status: nethttp.StatusOK, Body: `{"id":7}`})
		t.Setenv("API_URL", srv.BaseURL())

		stdout, _, err := execute(t, "request", "get", "widgets/7", "--token", testconsts.TestToken, "-H", "X-Trace: abc")

		require.NoError(t, err)
		assert.Equal(t, "200 OK\n{\"id\":7}\n", stdout)
		a := srv.Attempts()[0]
		assert.Equal(t, nethttp.MethodGet, a.Method)
		assert.Equal(t, "/api/v1/widgets/7", a.Path)
		assert.Equal(t, "Bearer "+testconsts.TestToken, a.Header.Get(apiclient.HeaderAuthorization))
		assert.Equal(t, "abc", a.Header.Get("X-Trace"))
	})

	t.Run("sends data and reads the token from the environment", func(t *testing.T) {
		srv := fixtures.NewAPIServer(t, fixtures.Reply{Status: nethttp.StatusCreated, Body: `{}`})
		t.Setenv("API_URL", srv.BaseURL())
		t.Setenv(TokenEnv, "env-token")

		_, _, err := execute(t, "request", "POST", "companies", "-d", `{"name":"ACME"}`)

		require.NoError(t, err)
		a := srv.Attempts()[0]
		assert.JSONEq(t, `{"name":"ACME"}`, string(a.Body))
		assert.Equal(t, "application/json", a.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer env-token", a.Header.Get(apiclient.HeaderAuthorization))
	})

	t.Run("failed call after retry returns an error and logs a report", func(t *testing.T) {
		srv := fixtures.NewAPIServer(t, fixtures.Repeat(fixtures.JSONError(nethttp.StatusNotFound, testconsts.TestUnhandledMessage), 2)...)
		t.Setenv("API_URL", srv.BaseURL())
		t.Setenv("API_RETRY_DELAY", "1ms")

		stdout, stderr, err := execute(t, "request", "GET", "/widgets")

		require.Error(t, err)
		assert.True(t, apiclient.IsHTTPStatusError(err, nethttp.StatusNotFound))
		assert.Equal(t, 2, srv.Hits())
		assert.Contains(t, stdout, "404 Not Found")
		assert.Contains(t, stderr, "StatusCode: 404, URL:"+srv.BaseURL()+"widgets")
	})

	t.Run("ignored message is not reported", func(t *testing.T) {
		srv := fixtures.NewAPIServer(t, fixtures.JSONError(nethttp.StatusBadRequest, testconsts.TestHandledMessage))
		t.Setenv("API_URL", srv.BaseURL())
		t.Setenv("REPORTING_IGNOREDMESSAGES", testconsts.TestHandledMessage)

		_, stderr, err := execute(t, "request", "POST", "session")

		require.Error(t, err)
		assert.NotContains(t, stderr, "StatusCode: 400")
	})

	t.Run("invalid header", func(t *testing.T) {
		t.Setenv("API_URL", testconsts.TestBaseURL)

		_, _, err := execute(t, "request", "GET", "widgets", "-H", "no-colon")

		assert.ErrorContains(t, err, "invalid header")
	})

	t.Run("missing base URL", func(t *testing.T) {
		_, _, err := execute(t, "request", "GET", "widgets")
		assert.ErrorContains(t, err, "API_URL or APP_ORIGIN")
	})

	t.Run("wrong argument count", func(t *testing.T) {
		_, _, err := execute(t, "request", "GET")
		assert.Error(t, err)
	})
}

func TestConfigCommand(t *testing.T) {
	t.Setenv("APP_ORIGIN", testconsts.TestOrigin)
	t.Setenv("API_RETRY_LIMIT", "2")

	stdout, _, err := execute(t, "config")

	require.NoError(t, err)
	assert.Contains(t, stdout, "base url:      "+testconsts.TestBaseURL)
	assert.Contains(t, stdout, "timeout:       30s")
	assert.Contains(t, stdout, "retry limit:   2")
	assert.Contains(t, stdout, "retry methods: GET")
	assert.Contains(t, stdout, "retry codes:   500,408,404,403,401")
	assert.Contains(t, stdout, "sentry:        false")
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, stdout, "kybctl version test")
}

func TestParseHeaders(t *testing.T) {
	headers, err := parseHeaders([]string{"X-A: 1", "X-B:two words "})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"X-A": "1", "X-B": "two words"}, headers)

	headers, err = parseHeaders(nil)
	require.NoError(t, err)
	assert.Nil(t, headers)

	_, err = parseHeaders([]string{": value"})
	assert.Error(t, err)
}
