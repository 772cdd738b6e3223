package config

import (
	"time"
)

// Config represents the overall client configuration structure.
// It is loaded once at process start and treated as immutable afterwards.
type Config struct {
	App       AppConfig       `koanf:"app" json:"app" yaml:"app"`
	API       APIConfig       `koanf:"api" json:"api" yaml:"api"`
	Reporting ReportingConfig `koanf:"reporting" json:"reporting" yaml:"reporting"`
	Sentry    SentryConfig    `koanf:"sentry" json:"sentry" yaml:"sentry"`
	Tracing   TracingConfig   `koanf:"tracing" json:"tracing" yaml:"tracing"`
	Log       LogConfig       `koanf:"log" json:"log" yaml:"log"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name string `koanf:"name" json:"name" yaml:"name" validate:"required"`
	Env  string `koanf:"env" json:"env" yaml:"env" validate:"oneof=development staging production"`
	// Origin is the scheme and host the application is served from,
	// e.g. https://app.example.com. Used when no API URL override is set.
	Origin string `koanf:"origin" json:"origin" yaml:"origin" validate:"omitempty,url"`
}

// APIConfig holds the API client settings.
type APIConfig struct {
	// URL overrides the base URL derived from the application origin.
	URL       string          `koanf:"url" json:"url" yaml:"url" validate:"omitempty,url"`
	Timeout   time.Duration   `koanf:"timeout" json:"timeout" yaml:"timeout" validate:"gt=0"`
	Retry     RetryConfig     `koanf:"retry" json:"retry" yaml:"retry"`
	RateLimit RateLimitConfig `koanf:"ratelimit" json:"ratelimit" yaml:"ratelimit"`
	Tracing   bool            `koanf:"tracing" json:"tracing" yaml:"tracing"`
}

// RetryConfig holds the automatic retry policy.
type RetryConfig struct {
	// Limit is the number of retries after the first attempt.
	Limit       int           `koanf:"limit" json:"limit" yaml:"limit" validate:"gte=0,lte=10"`
	Delay       time.Duration `koanf:"delay" json:"delay" yaml:"delay" validate:"gte=0"`
	StatusCodes []int         `koanf:"statuscodes" json:"statuscodes" yaml:"statuscodes" validate:"dive,gte=100,lte=599"`
	Methods     []string      `koanf:"methods" json:"methods" yaml:"methods" validate:"dive,oneof=GET HEAD OPTIONS TRACE PUT DELETE POST PATCH"`
}

// RateLimitConfig holds optional client-side rate limiting settings.
// A zero RPS disables limiting.
type RateLimitConfig struct {
	RPS   float64 `koanf:"rps" json:"rps" yaml:"rps" validate:"gte=0"`
	Burst int     `koanf:"burst" json:"burst" yaml:"burst" validate:"gte=0"`
}

// ReportingConfig holds error reporting classification settings.
type ReportingConfig struct {
	// IgnoredMessages lists error messages that are already handled elsewhere
	// and must not be reported.
	IgnoredMessages []string `koanf:"ignoredmessages" json:"ignoredmessages" yaml:"ignoredmessages"`
}

// SentryConfig holds error sink settings. An empty DSN disables the sink.
type SentryConfig struct {
	DSN         string  `koanf:"dsn" json:"-" yaml:"dsn" validate:"omitempty,url"`
	Environment string  `koanf:"environment" json:"environment" yaml:"environment"`
	Release     string  `koanf:"release" json:"release" yaml:"release"`
	SampleRate  float64 `koanf:"samplerate" json:"samplerate" yaml:"samplerate" validate:"gte=0,lte=1"`
	Debug       bool    `koanf:"debug" json:"debug" yaml:"debug"`
}

// TracingConfig holds span export settings, used when api.tracing is enabled.
type TracingConfig struct {
	// Endpoint is an OTLP collector address, or "stdout" to print spans.
	Endpoint   string  `koanf:"endpoint" json:"endpoint" yaml:"endpoint" validate:"required"`
	Protocol   string  `koanf:"protocol" json:"protocol" yaml:"protocol" validate:"oneof=http grpc"`
	Insecure   bool    `koanf:"insecure" json:"insecure" yaml:"insecure"`
	SampleRate float64 `koanf:"samplerate" json:"samplerate" yaml:"samplerate" validate:"gte=0,lte=1"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty"`
}

// IsSentryConfigured reports whether a sentry DSN was provided.
func IsSentryConfigured(cfg *SentryConfig) bool {
	return cfg != nil && cfg.DSN != ""
}
