package testing

import "time"

// Logger Constants
const (
	// TestLoggerLevelDebug is the debug log level used in most tests
	TestLoggerLevelDebug = "debug"
	// TestLoggerLevelDisabled completely disables logging in tests
	TestLoggerLevelDisabled = "disabled"
)

// Application Constants
const (
	TestAppName   = "test-app"
	TestOrigin    = "https://app.example.com"
	TestBaseURL   = "https://app.example.com/api/v1/"
	TestToken     = "tok-123"
	TestRequestID = "req-42"
)

// Error Payload Constants
// Response bodies used when exercising the error classifier.
const (
	TestHandledMessage   = "Session expired"
	TestUnhandledMessage = "Widget not found"
	TestHandledBody      = `{"message":"Session expired"}`
	TestUnhandledBody    = `{"message":"Widget not found"}`
	TestMalformedBody    = `<html>Bad Gateway</html>`
)

// Time Duration Constants
const (
	// TestRetryDelay keeps backoff sleeps negligible in tests
	TestRetryDelay = time.Millisecond
	// TestShortTimeout is a per-attempt timeout that slow handlers exceed
	TestShortTimeout = 50 * time.Millisecond
	// TestSlowHandlerDelay outlasts TestShortTimeout
	TestSlowHandlerDelay = 500 * time.Millisecond
	// TestEventuallyTimeout is the timeout for require.Eventually assertions (500ms)
	TestEventuallyTimeout = 500 * time.Millisecond
	// TestEventuallyTick is the polling interval for require.Eventually (10ms)
	TestEventuallyTick = 10 * time.Millisecond
)
