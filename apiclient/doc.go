// Package apiclient provides the HTTP client used by the KYB application to
// talk to its backend API.
//
// Requests are resolved against a base URL, carry a bearer token from an
// auth.TokenProvider on every attempt, and time out per attempt.
//
// Retries
//   - Controlled via Builder.WithRetryPolicy or Builder.WithRetries.
//   - By default GET requests answered with 500, 408, 404, 403 or 401 are
//     retried once (two attempts in total).
//   - Other methods and status codes are never retried.
//   - Transport errors, including timeouts, are never retried and surface
//     immediately as network or timeout errors.
//
// Backoff Strategy
//   - Exponential backoff from the policy delay: delay = base * 2^retry
//   - Full jitter is applied: actual sleep is random in [0, delay).
//   - Delay is capped at 30 seconds.
//
// Error interception
//
// Once a call has failed for good, every registered ErrorInterceptor observes
// an ErrorEvent. NewReportingInterceptor uses this to report failures to a
// reporting.Sink unless a reporting.Classifier says the failure is already
// handled. Interceptors never change what the caller receives.
package apiclient
