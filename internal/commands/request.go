package commands

import (
	"fmt"
	nethttp "net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kybkit/kybclient/apiclient"
	"github.com/kybkit/kybclient/auth"
	"github.com/kybkit/kybclient/config"
	"github.com/kybkit/kybclient/logger"
	"github.com/kybkit/kybclient/observability"
	"github.com/kybkit/kybclient/reporting"
)

// TokenEnv is read when --token is not given
const TokenEnv = "KYB_TOKEN"

const sentryFlushTimeout = 2 * time.Second

// RequestOptions holds options for the request command
type RequestOptions struct {
	Data    string
	Token   string
	Headers []string
}

// NewRequestCommand creates the request command
func NewRequestCommand(global *GlobalOptions) *cobra.Command {
	opts := &RequestOptions{}

	cmd := &cobra.Command{
		Use:   "request METHOD PATH",
		Short: "Send one request and print the response",
		Long: `Sends a request through the configured API client and prints the status
line and body. PATH is resolved against the base URL unless it is absolute.
The command exits non-zero when the call fails, after retries.`,
		Example: `  # Fetch widgets as an anonymous caller
  kybctl request GET widgets

  # Create a company with a token
  kybctl request POST companies -d '{"name":"ACME"}' -t "$TOKEN"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd, global, opts, strings.ToUpper(args[0]), args[1])
		},
	}

	cmd.Flags().StringVarP(&opts.Data, "data", "d", "", "JSON request body")
	cmd.Flags().StringVarP(&opts.Token, "token", "t", "", "Bearer token (defaults to $"+TokenEnv+")")
	cmd.Flags().StringArrayVarP(&opts.Headers, "header", "H", nil, "Extra header as 'Name: value' (repeatable)")

	return cmd
}

func runRequest(cmd *cobra.Command, global *GlobalOptions, opts *RequestOptions, method, path string) error {
	cfg, err := loadConfig(global)
	if err != nil {
		return err
	}
	log := newLogger(cmd.ErrOrStderr(), &cfg.Log)

	headers, err := parseHeaders(opts.Headers)
	if err != nil {
		return err
	}

	tracing, err := observability.NewProvider(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := observability.Shutdown(tracing, 0); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown failed")
		}
	}()

	sink, flush, err := newSink(cfg, log)
	if err != nil {
		return err
	}
	defer flush()

	token := opts.Token
	if token == "" {
		token = os.Getenv(TokenEnv)
	}

	deps := apiclient.Dependencies{Tokens: auth.Static(token), Sink: sink}
	if cfg.API.Tracing {
		deps.TracerProvider = tracing.TracerProvider()
	}
	client, err := apiclient.New(cfg, log, deps)
	if err != nil {
		return err
	}

	req := &apiclient.Request{URL: path, Headers: headers}
	if opts.Data != "" {
		req.Body = []byte(opts.Data)
	}

	resp, callErr := client.Do(cmd.Context(), method, req)
	if resp != nil {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d %s\n", resp.StatusCode, nethttp.StatusText(resp.StatusCode))
		if len(resp.Body) > 0 {
			fmt.Fprintln(out, string(resp.Body))
		}
	}
	return callErr
}

// newSink returns the sentry sink when a DSN is configured and a log sink
// otherwise, plus a function that flushes pending events before exit.
func newSink(cfg *config.Config, log logger.Logger) (reporting.Sink, func(), error) {
	hub, err := reporting.NewSentryHub(&cfg.Sentry, cfg.App.Name)
	if config.IsNotConfigured(err) {
		return reporting.NewLogSink(log), func() {}, nil
	}
	if err != nil {
		return nil, nil, err
	}
	sink := reporting.NewSentrySink(hub)
	return sink, func() {
		if !sink.Flush(sentryFlushTimeout) {
			log.Warn().Msg("sentry flush timed out")
		}
	}, nil
}

func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q, expected 'Name: value'", h)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}

