package reporting

import (
	"context"

	"github.com/kybkit/kybclient/logger"
)

// Extras carries free-form context attached to a report.
type Extras struct {
	// Summary reads "StatusCode: <status>, URL:<url>".
	Summary string
	// CorrelationID is the request id returned by the server, if any.
	CorrelationID string
	// RawBody is the response body text as received.
	RawBody string
}

// Report is the structured context sent with a reported error.
type Report struct {
	Method string
	URL    string
	Status string
	// Fingerprint groups related reports: method, URL, status, identity.
	Fingerprint []string
	// UserID is the caller's token or "anonymous".
	UserID string
	Extras Extras
}

// Sink receives error reports. Report must not block the caller for longer
// than it takes to hand the report off.
type Sink interface {
	Report(ctx context.Context, err error, report Report)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, err error, report Report)

// Report calls f.
func (f SinkFunc) Report(ctx context.Context, err error, report Report) { f(ctx, err, report) }

type nopSink struct{}

func (nopSink) Report(context.Context, error, Report) {}

// Nop returns a sink that drops every report.
func Nop() Sink { return nopSink{} }

type multiSink []Sink

func (m multiSink) Report(ctx context.Context, err error, report Report) {
	for _, s := range m {
		s.Report(ctx, err, report)
	}
}

// Multi fans a report out to every non-nil sink in order.
func Multi(sinks ...Sink) Sink {
	out := make(multiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// LogSink writes reports to a logger at error level.
type LogSink struct {
	log logger.Logger
}

// NewLogSink returns a sink logging through log.
func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{log: log}
}

// Report implements Sink. The identity is logged under a masked key.
func (s *LogSink) Report(_ context.Context, err error, report Report) {
	s.log.Error().
		Err(err).
		Str("method", report.Method).
		Str("url", report.URL).
		Str("status", report.Status).
		Str("user_token", report.UserID).
		Str("request_id", report.Extras.CorrelationID).
		Str("body", report.Extras.RawBody).
		Msg(report.Extras.Summary)
}
