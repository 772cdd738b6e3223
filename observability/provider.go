// Package observability sets up the OpenTelemetry tracer provider whose
// spans the API client emits when tracing is enabled.
package observability

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/kybkit/kybclient/config"
)

const (
	// EndpointStdout is a special endpoint value that prints spans (for local development).
	EndpointStdout = "stdout"

	// ProtocolHTTP specifies OTLP over HTTP/protobuf.
	ProtocolHTTP = "http"

	// ProtocolGRPC specifies OTLP over gRPC.
	ProtocolGRPC = "grpc"
)

// Provider manages the lifecycle of the tracer provider.
type Provider interface {
	// TracerProvider returns the configured trace provider.
	TracerProvider() trace.TracerProvider

	// Shutdown flushes pending spans and stops the exporter.
	Shutdown(ctx context.Context) error

	// ForceFlush immediately exports any pending spans.
	ForceFlush(ctx context.Context) error
}

// Option customizes NewProvider.
type Option func(*options)

type options struct {
	stdout io.Writer
}

// WithStdoutWriter redirects the stdout exporter, which writes to os.Stderr by default.
func WithStdoutWriter(w io.Writer) Option {
	return func(o *options) { o.stdout = w }
}

// provider implements Provider with the OpenTelemetry SDK.
type provider struct {
	tracerProvider *sdktrace.TracerProvider
	mu             sync.Mutex
}

// NewProvider creates a tracer provider from cfg. When api.tracing is off a
// no-op provider is returned. Otherwise the provider and the W3C trace
// context propagator are installed globally.
func NewProvider(cfg *config.Config, opts ...Option) (Provider, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if !cfg.API.Tracing {
		return newNoopProvider(), nil
	}

	o := options{stdout: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	exporter, err := createTraceExporter(&cfg.Tracing, o.stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	// A CLI run is short; the batcher still flushes on Shutdown.
	p := &provider{
		tracerProvider: sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithBatcher(exporter),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.Tracing.SampleRate))),
		),
	}

	otel.SetTracerProvider(p.tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return p, nil
}

// createResource creates an OpenTelemetry resource with service information.
func createResource(cfg *config.Config) (*resource.Resource, error) {
	version := cfg.Sentry.Release
	if version == "" {
		version = "unknown"
	}
	customRes, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.App.Name),
			semconv.ServiceVersion(version),
			semconv.DeploymentEnvironmentName(cfg.App.Env),
		),
	)
	if err != nil {
		return nil, err
	}
	return resource.Merge(resource.Default(), customRes)
}

// createTraceExporter creates a span exporter based on the configured endpoint.
func createTraceExporter(cfg *config.TracingConfig, stdout io.Writer) (sdktrace.SpanExporter, error) {
	if cfg.Endpoint == EndpointStdout {
		return stdouttrace.New(
			stdouttrace.WithWriter(stdout),
			stdouttrace.WithPrettyPrint(),
		)
	}

	if err := validateEndpointFormat(cfg.Endpoint, cfg.Protocol); err != nil {
		return nil, err
	}

	switch cfg.Protocol {
	case ProtocolHTTP:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(context.Background(), opts...)
	case ProtocolGRPC:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
		}
		return otlptracegrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("trace protocol '%s': %w", cfg.Protocol, ErrInvalidProtocol)
	}
}

func validateEndpointFormat(endpoint, protocol string) error {
	hasScheme := strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://")
	switch {
	case protocol == ProtocolGRPC && hasScheme:
		return fmt.Errorf("grpc endpoint %q must be host:port: %w", endpoint, ErrInvalidEndpointFormat)
	case protocol == ProtocolHTTP && !hasScheme:
		return fmt.Errorf("http endpoint %q must include a scheme: %w", endpoint, ErrInvalidEndpointFormat)
	}
	return nil
}

// TracerProvider returns the configured trace provider.
func (p *provider) TracerProvider() trace.TracerProvider {
	return p.tracerProvider
}

// Shutdown gracefully shuts down the provider.
func (p *provider) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.tracerProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown trace provider: %w", err)
	}
	return nil
}

// ForceFlush immediately flushes any pending telemetry data.
func (p *provider) ForceFlush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.tracerProvider.ForceFlush(ctx); err != nil {
		return fmt.Errorf("failed to flush trace provider: %w", err)
	}
	return nil
}
