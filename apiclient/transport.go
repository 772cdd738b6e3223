package apiclient

import (
	"context"
	"errors"
	nethttp "net/http"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/kybkit/kybclient/auth"
)

// HeaderAuthorization carries the bearer token.
const HeaderAuthorization = "Authorization"

type attemptsKey struct{}

func withAttemptCounter(ctx context.Context) (context.Context, *atomic.Int32) {
	counter := &atomic.Int32{}
	return context.WithValue(ctx, attemptsKey{}, counter), counter
}

// interceptorTransport runs the pre-request hooks on every attempt, so retries
// see the token that is current at their own dispatch time.
type interceptorTransport struct {
	base                 nethttp.RoundTripper
	tokens               auth.TokenProvider
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
	limiter              *rate.Limiter
}

// RoundTrip implements http.RoundTripper. The caller's request is cloned
// before any header is touched.
func (t *interceptorTransport) RoundTrip(req *nethttp.Request) (*nethttp.Response, error) {
	ctx := req.Context()
	if counter, ok := ctx.Value(attemptsKey{}).(*atomic.Int32); ok {
		counter.Add(1)
	}

	out := req.Clone(ctx)
	out.Header.Set(HeaderAuthorization, auth.BearerValue(ctx, t.tokens))

	for _, interceptor := range t.requestInterceptors {
		if err := interceptor(ctx, out); err != nil {
			closeRequestBody(req)
			return nil, NewInterceptorError("request interceptor failed", "request", err)
		}
	}

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			closeRequestBody(req)
			return nil, NewInterceptorError("rate limiter wait failed", "request", err)
		}
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}
	if resp.Request == nil {
		resp.Request = out
	}

	for _, interceptor := range t.responseInterceptors {
		if err := interceptor(ctx, out, resp); err != nil {
			_ = resp.Body.Close()
			return nil, NewInterceptorError("response interceptor failed", "response", err)
		}
	}
	return resp, nil
}

// closeRequestBody honors the RoundTripper contract of closing the body even on errors.
func closeRequestBody(req *nethttp.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}

// asInterceptorError extracts an interceptor failure from a transport error chain.
func asInterceptorError(err error) (ClientError, bool) {
	var ie *interceptorError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
