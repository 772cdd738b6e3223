package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// noopProvider implements Provider with no-op operations.
// Used when tracing is disabled.
type noopProvider struct {
	tracerProvider trace.TracerProvider
}

func newNoopProvider() *noopProvider {
	return &noopProvider{tracerProvider: noop.NewTracerProvider()}
}

// TracerProvider returns a no-op tracer provider.
func (n *noopProvider) TracerProvider() trace.TracerProvider {
	return n.tracerProvider
}

// Shutdown is a no-op for the no-op provider.
func (n *noopProvider) Shutdown(_ context.Context) error {
	return nil
}

// ForceFlush is a no-op for the no-op provider.
func (n *noopProvider) ForceFlush(_ context.Context) error {
	return nil
}
