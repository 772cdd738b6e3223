package apiclient

import (
	"context"
	crand "crypto/rand"
	"math/big"
	nethttp "net/http"
	"slices"
	"strings"
	"time"
)

const (
	// DefaultRetryLimit is the number of retries after the first attempt
	DefaultRetryLimit = 1

	// DefaultRetryDelay is the backoff base between attempts
	DefaultRetryDelay = 300 * time.Millisecond

	// maxBackoff caps a single backoff sleep
	maxBackoff = 30 * time.Second
)

// RetryPolicy decides which failed attempts are dispatched again.
type RetryPolicy struct {
	// Limit is the number of retries after the first attempt.
	Limit int
	// StatusCodes lists response codes eligible for a retry.
	StatusCodes []int
	// Methods lists request methods eligible for a retry.
	Methods []string
	// Delay is the backoff base.
	Delay time.Duration
}

// DefaultRetryPolicy retries GET requests once on 500, 408, 404, 403 and 401.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Limit: DefaultRetryLimit,
		StatusCodes: []int{
			nethttp.StatusInternalServerError,
			nethttp.StatusRequestTimeout,
			nethttp.StatusNotFound,
			nethttp.StatusForbidden,
			nethttp.StatusUnauthorized,
		},
		Methods: []string{nethttp.MethodGet},
		Delay:   DefaultRetryDelay,
	}
}

// normalized returns a copy with upper-cased, de-duplicated methods and
// de-duplicated status codes.
func (p RetryPolicy) normalized() RetryPolicy {
	out := RetryPolicy{Limit: max(p.Limit, 0), Delay: p.Delay}
	for _, code := range p.StatusCodes {
		if !slices.Contains(out.StatusCodes, code) {
			out.StatusCodes = append(out.StatusCodes, code)
		}
	}
	for _, m := range p.Methods {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m != "" && !slices.Contains(out.Methods, m) {
			out.Methods = append(out.Methods, m)
		}
	}
	return out
}

// Retryable reports whether a response with statusCode to a method request
// may be retried, ignoring the attempt limit.
func (p RetryPolicy) Retryable(method string, statusCode int) bool {
	return slices.Contains(p.Methods, strings.ToUpper(method)) && slices.Contains(p.StatusCodes, statusCode)
}

type methodKey struct{}

func withMethod(ctx context.Context, method string) context.Context {
	return context.WithValue(ctx, methodKey{}, method)
}

// checkRetry is the retryablehttp.CheckRetry hook. Transport errors never
// retry; the method is read from the context because redirects may change
// the method seen on the final response.
func (p RetryPolicy) checkRetry(ctx context.Context, resp *nethttp.Response, err error) (bool, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}
	if err != nil || resp == nil {
		return false, nil
	}

	method, ok := ctx.Value(methodKey{}).(string)
	if !ok && resp.Request != nil {
		method = resp.Request.Method
	}
	return p.Retryable(method, resp.StatusCode), nil
}

// backoff is the retryablehttp.Backoff hook: exponential backoff from base
// with full jitter, capped at limit.
func backoff(base, limit time.Duration, attempt int, _ *nethttp.Response) time.Duration {
	if base <= 0 {
		base = 50 * time.Millisecond
	}
	if limit <= 0 || limit > maxBackoff {
		limit = maxBackoff
	}
	// Cap attempt to avoid overflow when computing multiplier
	if attempt > 20 {
		attempt = 20
	}
	d := base * time.Duration(1<<attempt)
	if d > limit || d <= 0 {
		d = limit
	}
	n, err := crand.Int(crand.Reader, big.NewInt(int64(d)))
	if err != nil {
		// On RNG failure, fall back to the full delay
		return d
	}
	return time.Duration(n.Int64())
}
