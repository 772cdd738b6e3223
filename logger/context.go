package logger

import (
	"context"
	"sync/atomic"
)

// contextKey is the type for context keys to avoid collisions
type contextKey string

const (
	// httpCounterKey is the context key for tracking outbound HTTP calls per unit of work
	httpCounterKey contextKey = "http_call_counter"
	// httpElapsedKey is the context key for tracking total outbound HTTP elapsed time
	httpElapsedKey contextKey = "http_elapsed_nanos"
)

// WithHTTPCounter creates a new context with an HTTP call counter and elapsed time tracker
func WithHTTPCounter(ctx context.Context) context.Context {
	counter := int64(0)
	elapsed := int64(0)
	ctx = context.WithValue(ctx, httpCounterKey, &counter)
	ctx = context.WithValue(ctx, httpElapsedKey, &elapsed)
	return ctx
}

// IncrementHTTPCounter increments the HTTP call counter in the context
func IncrementHTTPCounter(ctx context.Context) {
	if counter, ok := ctx.Value(httpCounterKey).(*int64); ok && counter != nil {
		atomic.AddInt64(counter, 1)
	}
}

// GetHTTPCounter returns the current HTTP call count from the context
func GetHTTPCounter(ctx context.Context) int64 {
	if counter, ok := ctx.Value(httpCounterKey).(*int64); ok && counter != nil {
		return atomic.LoadInt64(counter)
	}
	return 0
}

// AddHTTPElapsed adds elapsed nanoseconds to the HTTP elapsed time in the context
func AddHTTPElapsed(ctx context.Context, nanos int64) {
	if elapsed, ok := ctx.Value(httpElapsedKey).(*int64); ok && elapsed != nil {
		atomic.AddInt64(elapsed, nanos)
	}
}

// GetHTTPElapsed returns the current HTTP elapsed time in nanoseconds from the context
func GetHTTPElapsed(ctx context.Context) int64 {
	if elapsed, ok := ctx.Value(httpElapsedKey).(*int64); ok && elapsed != nil {
		return atomic.LoadInt64(elapsed)
	}
	return 0
}
