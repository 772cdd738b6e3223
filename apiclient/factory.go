package apiclient

import (
	"fmt"

	"go.opentelemetry.io/otel"
	oteltrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/kybkit/kybclient/auth"
	"github.com/kybkit/kybclient/config"
	"github.com/kybkit/kybclient/logger"
	"github.com/kybkit/kybclient/reporting"
)

// Dependencies are the external collaborators of a client built from configuration.
// Nil fields get defaults: anonymous tokens, a classifier over
// reporting.ignoredmessages, a sentry sink when a DSN is configured (a log
// sink otherwise) and the global tracer provider when tracing is enabled.
type Dependencies struct {
	Tokens         auth.TokenProvider
	Classifier     reporting.Classifier
	Sink           reporting.Sink
	TracerProvider oteltrace.TracerProvider
}

// New builds a client from cfg.
func New(cfg *config.Config, log logger.Logger, deps Dependencies) (Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("apiclient: nil config")
	}
	if log == nil {
		log = logger.Nop()
	}

	baseURL, err := ResolveBaseURL(cfg.API.URL, cfg.App.Origin)
	if err != nil {
		return nil, err
	}

	classifier := deps.Classifier
	if classifier == nil {
		classifier = reporting.NewMessageClassifier(cfg.Reporting.IgnoredMessages...)
	}

	sink := deps.Sink
	if sink == nil {
		sink, err = defaultSink(cfg, log)
		if err != nil {
			return nil, err
		}
	}

	b := NewBuilder(log).
		WithBaseURL(baseURL).
		WithTimeout(cfg.API.Timeout).
		WithRetryPolicy(policyFromConfig(&cfg.API.Retry)).
		WithTokenProvider(deps.Tokens).
		WithErrorReporting(classifier, sink)

	if cfg.API.RateLimit.RPS > 0 {
		b = b.WithRateLimit(rate.Limit(cfg.API.RateLimit.RPS), cfg.API.RateLimit.Burst)
	}

	if tp := deps.TracerProvider; tp != nil {
		b = b.WithTracerProvider(tp)
	} else if cfg.API.Tracing {
		b = b.WithTracerProvider(otel.GetTracerProvider())
	}

	log.Info().
		Str("base_url", baseURL).
		Dur("timeout", cfg.API.Timeout).
		Int("retry_limit", cfg.API.Retry.Limit).
		Msg("API client configured")

	return b.Build(), nil
}

func policyFromConfig(rc *config.RetryConfig) RetryPolicy {
	policy := RetryPolicy{
		Limit:       rc.Limit,
		StatusCodes: rc.StatusCodes,
		Methods:     rc.Methods,
		Delay:       rc.Delay,
	}
	if policy.Delay <= 0 {
		policy.Delay = DefaultRetryDelay
	}
	return policy
}

func defaultSink(cfg *config.Config, log logger.Logger) (reporting.Sink, error) {
	hub, err := reporting.NewSentryHub(&cfg.Sentry, cfg.App.Name)
	if config.IsNotConfigured(err) {
		log.Debug().Msg("sentry not configured, reporting API errors to the log")
		return reporting.NewLogSink(log), nil
	}
	if err != nil {
		return nil, fmt.Errorf("apiclient: sentry: %w", err)
	}
	return reporting.NewSentrySink(hub), nil
}
