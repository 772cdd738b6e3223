package reporting

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kybkit/kybclient/config"
)

// Extra keys attached to sentry events.
const (
	ExtraErrorMessage = "ErrorMessage"
	ExtraRequestID    = "reqId"
	ExtraBodyRaw      = "bodyRaw"
)

// SentrySink reports errors to sentry. Each report is captured on a clone of
// the hub so concurrent reports never share scope state.
type SentrySink struct {
	hub *sentry.Hub
}

// NewSentrySink wraps hub. A nil hub uses sentry.CurrentHub().
func NewSentrySink(hub *sentry.Hub) *SentrySink {
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	return &SentrySink{hub: hub}
}

// Report implements Sink.
func (s *SentrySink) Report(_ context.Context, err error, report Report) {
	hub := s.hub.Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetFingerprint(report.Fingerprint)
		scope.SetUser(sentry.User{ID: report.UserID})
		scope.SetExtra(ExtraErrorMessage, report.Extras.Summary)
		scope.SetExtra(ExtraRequestID, report.Extras.CorrelationID)
		scope.SetExtra(ExtraBodyRaw, report.Extras.RawBody)
	})
	hub.CaptureException(err)
}

// Flush waits up to timeout for queued events to be delivered.
func (s *SentrySink) Flush(timeout time.Duration) bool {
	return s.hub.Flush(timeout)
}

// NewSentryHub builds a hub from cfg. It returns a not-configured error when
// no DSN is set so callers can fall back to another sink.
func NewSentryHub(cfg *config.SentryConfig, serverName string) (*sentry.Hub, error) {
	if !config.IsSentryConfigured(cfg) {
		return nil, config.NewNotConfiguredError("sentry", "SENTRY_DSN", "sentry.dsn")
	}
	return newHub(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		SampleRate:  cfg.SampleRate,
		Debug:       cfg.Debug,
		ServerName:  serverName,
	})
}

func newHub(opts sentry.ClientOptions) (*sentry.Hub, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, err
	}
	return sentry.NewHub(client, sentry.NewScope()), nil
}
