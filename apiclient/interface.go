package apiclient

import (
	"context"
	nethttp "net/http"
	"time"
)

// Client defines the REST client interface for making HTTP requests
type Client interface {
	Get(ctx context.Context, req *Request) (*Response, error)
	Post(ctx context.Context, req *Request) (*Response, error)
	Put(ctx context.Context, req *Request) (*Response, error)
	Patch(ctx context.Context, req *Request) (*Response, error)
	Delete(ctx context.Context, req *Request) (*Response, error)
	Do(ctx context.Context, method string, req *Request) (*Response, error)
	// BaseURL returns the prefix relative request URLs are resolved against.
	BaseURL() string
}

// Request represents an HTTP request with all necessary data.
// URL may be relative to the client's base URL or absolute.
type Request struct {
	URL     string
	Headers map[string]string
	Body    []byte
}

// Response represents an HTTP response with tracking information
type Response struct {
	StatusCode int
	Body       []byte
	Headers    nethttp.Header
	Stats      Stats
}

// Stats contains request execution statistics
type Stats struct {
	ElapsedTime time.Duration
	CallCount   int64
	// Attempts counts dispatches of this request, retries included.
	Attempts int
}

// ErrorEvent describes a call that failed after the retry policy gave up.
type ErrorEvent struct {
	Method string
	URL    string
	// StatusCode is zero when no response was received.
	StatusCode int
	Headers    nethttp.Header
	Body       []byte
	// RequestID is the X-Request-ID sent with the request.
	RequestID string
	Attempts  int
	// Err is the error returned to the caller.
	Err error
}

// RequestInterceptor is called before every attempt is sent
type RequestInterceptor func(ctx context.Context, req *nethttp.Request) error

// ResponseInterceptor is called after every attempt's response is received
type ResponseInterceptor func(ctx context.Context, req *nethttp.Request, resp *nethttp.Response) error

// ErrorInterceptor observes terminal failures. It cannot alter the outcome.
type ErrorInterceptor func(ctx context.Context, event *ErrorEvent)

// Config holds the REST client configuration
type Config struct {
	BaseURL              string
	Timeout              time.Duration
	Retry                RetryPolicy
	RequestInterceptors  []RequestInterceptor
	ResponseInterceptors []ResponseInterceptor
	ErrorInterceptors    []ErrorInterceptor
	DefaultHeaders       map[string]string
	// LogPayloads enables debug-level logging of headers and body payloads
	LogPayloads bool
	// MaxPayloadLogBytes caps the number of body bytes logged when LogPayloads is enabled
	MaxPayloadLogBytes int
}
