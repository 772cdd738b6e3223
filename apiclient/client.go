package apiclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"net"
	nethttp "net/http"
	"slices"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	oteltrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/kybkit/kybclient/auth"
	"github.com/kybkit/kybclient/logger"
	"github.com/kybkit/kybclient/reporting"
	kybtrace "github.com/kybkit/kybclient/trace"
)

const (
	// DefaultTimeout is the default per-attempt timeout
	DefaultTimeout = 30 * time.Second

	// DefaultMaxPayloadLogBytes caps logged payloads when payload logging is on
	DefaultMaxPayloadLogBytes = 4096
)

// client implements the Client interface
type client struct {
	retry     *retryablehttp.Client
	logger    logger.Logger
	config    *Config
	callCount int64
}

// Builder provides a fluent interface for configuring the REST client
type Builder struct {
	config         *Config
	logger         logger.Logger
	tokens         auth.TokenProvider
	transport      nethttp.RoundTripper
	tracerProvider oteltrace.TracerProvider
	limiter        *rate.Limiter
	// errorObservers are resolved in Build against the final token provider
	errorObservers []func(auth.TokenProvider) ErrorInterceptor
}

// NewBuilder creates a new client builder with the default retry policy and
// timeout. Without a token provider every request is sent as anonymous.
func NewBuilder(log logger.Logger) *Builder {
	if log == nil {
		log = logger.Nop()
	}
	return &Builder{
		config: &Config{
			Timeout:            DefaultTimeout,
			Retry:              DefaultRetryPolicy(),
			DefaultHeaders:     make(map[string]string),
			MaxPayloadLogBytes: DefaultMaxPayloadLogBytes,
		},
		logger: log,
		tokens: auth.Anonymous(),
	}
}

// WithBaseURL sets the prefix relative request URLs are resolved against
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.BaseURL = baseURL
	return b
}

// WithTimeout sets the per-attempt timeout
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.config.Timeout = timeout
	return b
}

// WithRetries keeps the eligible methods and status codes and changes the
// retry count and backoff base
func (b *Builder) WithRetries(maxRetries int, retryDelay time.Duration) *Builder {
	b.config.Retry.Limit = maxRetries
	b.config.Retry.Delay = retryDelay
	return b
}

// WithRetryPolicy replaces the whole retry policy
func (b *Builder) WithRetryPolicy(policy RetryPolicy) *Builder {
	b.config.Retry = policy
	return b
}

// WithTokenProvider sets the source of the bearer token
func (b *Builder) WithTokenProvider(tokens auth.TokenProvider) *Builder {
	if tokens != nil {
		b.tokens = tokens
	}
	return b
}

// WithDefaultHeader adds a default header that will be sent with all requests
func (b *Builder) WithDefaultHeader(key, value string) *Builder {
	b.config.DefaultHeaders[key] = value
	return b
}

// WithRequestInterceptor adds a request interceptor
func (b *Builder) WithRequestInterceptor(interceptor RequestInterceptor) *Builder {
	b.config.RequestInterceptors = append(b.config.RequestInterceptors, interceptor)
	return b
}

// WithResponseInterceptor adds a response interceptor
func (b *Builder) WithResponseInterceptor(interceptor ResponseInterceptor) *Builder {
	b.config.ResponseInterceptors = append(b.config.ResponseInterceptors, interceptor)
	return b
}

// WithErrorInterceptor adds an observer for terminal failures
func (b *Builder) WithErrorInterceptor(interceptor ErrorInterceptor) *Builder {
	b.errorObservers = append(b.errorObservers, func(auth.TokenProvider) ErrorInterceptor {
		return interceptor
	})
	return b
}

// WithErrorReporting reports terminal failures to sink unless classifier
// ignores them. Reports identify the caller through the token provider the
// client is built with.
func (b *Builder) WithErrorReporting(classifier reporting.Classifier, sink reporting.Sink) *Builder {
	b.errorObservers = append(b.errorObservers, func(tokens auth.TokenProvider) ErrorInterceptor {
		return NewReportingInterceptor(tokens, classifier, sink)
	})
	return b
}

// WithRateLimit throttles dispatches, retries included. A non-positive
// limit disables throttling.
func (b *Builder) WithRateLimit(limit rate.Limit, burst int) *Builder {
	if limit <= 0 {
		b.limiter = nil
		return b
	}
	b.limiter = rate.NewLimiter(limit, max(burst, 1))
	return b
}

// WithTracerProvider emits an OpenTelemetry client span per attempt
func (b *Builder) WithTracerProvider(tp oteltrace.TracerProvider) *Builder {
	b.tracerProvider = tp
	return b
}

// WithTransport sets the base transport; defaults to a pooled cleanhttp transport
func (b *Builder) WithTransport(rt nethttp.RoundTripper) *Builder {
	b.transport = rt
	return b
}

// WithPayloadLogging enables debug logging of headers and bodies, truncated to maxBytes
func (b *Builder) WithPayloadLogging(maxBytes int) *Builder {
	b.config.LogPayloads = true
	if maxBytes > 0 {
		b.config.MaxPayloadLogBytes = maxBytes
	}
	return b
}

// Build creates the REST client with the configured options. The returned
// client does not share mutable state with the builder.
func (b *Builder) Build() Client {
	cfg := &Config{
		BaseURL:              b.config.BaseURL,
		Timeout:              b.config.Timeout,
		Retry:                b.config.Retry.normalized(),
		RequestInterceptors:  slices.Clone(b.config.RequestInterceptors),
		ResponseInterceptors: slices.Clone(b.config.ResponseInterceptors),
		ErrorInterceptors:    make([]ErrorInterceptor, 0, len(b.errorObservers)),
		DefaultHeaders:       maps.Clone(b.config.DefaultHeaders),
		LogPayloads:          b.config.LogPayloads,
		MaxPayloadLogBytes:   b.config.MaxPayloadLogBytes,
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	for _, observer := range b.errorObservers {
		cfg.ErrorInterceptors = append(cfg.ErrorInterceptors, observer(b.tokens))
	}

	base := b.transport
	if base == nil {
		base = cleanhttp.DefaultPooledTransport()
	}
	if b.tracerProvider != nil {
		base = otelhttp.NewTransport(base,
			otelhttp.WithTracerProvider(b.tracerProvider),
			otelhttp.WithPropagators(propagation.TraceContext{}),
		)
	}

	c := &client{logger: b.logger, config: cfg}
	c.retry = &retryablehttp.Client{
		HTTPClient: &nethttp.Client{
			Timeout: cfg.Timeout,
			Transport: &interceptorTransport{
				base:                 base,
				tokens:               b.tokens,
				requestInterceptors:  cfg.RequestInterceptors,
				responseInterceptors: cfg.ResponseInterceptors,
				limiter:              b.limiter,
			},
		},
		Logger:         leveledLogger{log: b.logger},
		RetryWaitMin:   cfg.Retry.Delay,
		RetryWaitMax:   maxBackoff,
		RetryMax:       cfg.Retry.Limit,
		RequestLogHook: c.logRetry,
		CheckRetry:     cfg.Retry.checkRetry,
		Backoff:        backoff,
		ErrorHandler:   retryablehttp.PassthroughErrorHandler,
	}
	return c
}

// BaseURL returns the configured base URL
func (c *client) BaseURL() string {
	return c.config.BaseURL
}

// Get performs a GET request
func (c *client) Get(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodGet, req)
}

// Post performs a POST request
func (c *client) Post(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPost, req)
}

// Put performs a PUT request
func (c *client) Put(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPut, req)
}

// Patch performs a PATCH request
func (c *client) Patch(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPatch, req)
}

// Delete performs a DELETE request
func (c *client) Delete(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodDelete, req)
}

// Do performs an HTTP request with the specified method. Failures after the
// retry policy gives up are passed to the error interceptors and then
// returned unchanged; HTTP status failures also return the response.
func (c *client) Do(ctx context.Context, method string, req *Request) (*Response, error) {
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}
	target, err := joinURL(c.config.BaseURL, req.URL)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	callCount := atomic.AddInt64(&c.callCount, 1)
	logger.IncrementHTTPCounter(ctx)
	defer func() { logger.AddHTTPElapsed(ctx, int64(time.Since(start))) }()

	requestID := kybtrace.EnsureRequestID(ctx)
	ctx, attempts := withAttemptCounter(withMethod(ctx, method))

	c.logRequest(method, target, req)

	httpReq, err := c.buildRequest(ctx, method, target, requestID, req)
	if err != nil {
		return nil, err
	}

	event := &ErrorEvent{Method: method, URL: target, RequestID: requestID}

	httpResp, err := c.retry.Do(httpReq)
	if err != nil {
		if httpResp != nil {
			_ = httpResp.Body.Close()
		}
		event.Attempts = int(attempts.Load())
		event.Err = c.classifyTransportError(err)
		c.interceptError(ctx, event)
		return nil, event.Err
	}

	resp, err := c.buildResponse(start, callCount, int(attempts.Load()), httpResp)
	if err != nil {
		event.StatusCode = httpResp.StatusCode
		event.Headers = httpResp.Header
		event.Attempts = int(attempts.Load())
		event.Err = err
		c.interceptError(ctx, event)
		return nil, err
	}

	c.logResponse(method, target, resp)
	if IsSuccessStatus(resp.StatusCode) {
		return resp, nil
	}

	event.StatusCode = resp.StatusCode
	event.Headers = resp.Headers
	event.Body = resp.Body
	event.Attempts = resp.Stats.Attempts
	event.Err = NewHTTPError(
		fmt.Sprintf("HTTP request failed with status %d", resp.StatusCode),
		resp.StatusCode,
		resp.Body,
		resp.Headers,
	)
	c.interceptError(ctx, event)
	return resp, event.Err
}

// validateRequest validates the request before sending
func (c *client) validateRequest(req *Request) error {
	if req == nil {
		return NewValidationError("request cannot be nil", "request")
	}
	if req.URL == "" {
		return NewValidationError("URL cannot be empty", "url")
	}
	return nil
}

// buildRequest constructs the retryable request and applies static headers.
// Per-attempt headers are applied by interceptorTransport.
func (c *client) buildRequest(ctx context.Context, method, target, requestID string, req *Request) (*retryablehttp.Request, error) {
	var body any
	if req.Body != nil {
		body = req.Body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, NewNetworkError("failed to create HTTP request", err)
	}

	// Apply default headers first; request headers override them
	for key, value := range c.config.DefaultHeaders {
		httpReq.Header.Set(key, value)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if httpReq.Header.Get("Content-Type") == "" && req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if httpReq.Header.Get(kybtrace.HeaderXRequestID) == "" {
		httpReq.Header.Set(kybtrace.HeaderXRequestID, requestID)
	}
	return httpReq, nil
}

// buildResponse reads the body and builds a Response.
func (c *client) buildResponse(start time.Time, callCount int64, attempts int, httpResp *nethttp.Response) (*Response, error) {
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, NewNetworkError("failed to read response body", err)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       respBody,
		Headers:    httpResp.Header,
		Stats: Stats{
			ElapsedTime: time.Since(start),
			CallCount:   callCount,
			Attempts:    attempts,
		},
	}, nil
}

// classifyTransportError maps a failure without a usable response onto the
// client error taxonomy.
func (c *client) classifyTransportError(err error) ClientError {
	if ie, ok := asInterceptorError(err); ok {
		return ie
	}
	if isTimeout(err) {
		return NewTimeoutError("request timeout", c.config.Timeout, err)
	}
	return NewNetworkError("request execution failed", err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// interceptError runs every error interceptor in registration order.
func (c *client) interceptError(ctx context.Context, event *ErrorEvent) {
	for _, interceptor := range c.config.ErrorInterceptors {
		interceptor(ctx, event)
	}
}
