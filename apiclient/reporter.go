package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kybkit/kybclient/auth"
	"github.com/kybkit/kybclient/reporting"
	kybtrace "github.com/kybkit/kybclient/trace"
)

// NewReportingInterceptor reports terminal failures to sink.
//
// For failures with a response, the body's JSON "message" field is offered
// to classifier; an ignored message suppresses the report. Bodies that are
// missing or not a JSON object, null included, are always reported. Failures
// without a response offer the error text instead. Nil classifier or sink fall back to
// reporting.NeverIgnore and reporting.Nop.
func NewReportingInterceptor(tokens auth.TokenProvider, classifier reporting.Classifier, sink reporting.Sink) ErrorInterceptor {
	if classifier == nil {
		classifier = reporting.NeverIgnore
	}
	if sink == nil {
		sink = reporting.Nop()
	}
	return func(ctx context.Context, event *ErrorEvent) {
		if message, ok := event.message(); ok && classifier.ShouldIgnore(message) {
			return
		}
		sink.Report(ctx, event.Err, event.report(ctx, tokens))
	}
}

// message returns the text used for classification. ok is false when the
// response body cannot be parsed, which forces a report.
func (e *ErrorEvent) message() (string, bool) {
	if e.StatusCode == 0 {
		if e.Err == nil {
			return "", false
		}
		return e.Err.Error(), true
	}

	var payload map[string]any
	if err := json.Unmarshal(e.Body, &payload); err != nil || payload == nil {
		return "", false
	}
	message, _ := payload["message"].(string)
	return message, true
}

func (e *ErrorEvent) report(ctx context.Context, tokens auth.TokenProvider) reporting.Report {
	identity := auth.Identity(ctx, tokens)
	status := strconv.Itoa(e.StatusCode)

	correlationID := e.Headers.Get(kybtrace.HeaderXRequestID)
	if correlationID == "" {
		correlationID = e.RequestID
	}

	return reporting.Report{
		Method:      e.Method,
		URL:         e.URL,
		Status:      status,
		Fingerprint: []string{e.Method, e.URL, status, identity},
		UserID:      identity,
		Extras: reporting.Extras{
			Summary:       fmt.Sprintf("StatusCode: %s, URL:%s", status, e.URL),
			CorrelationID: correlationID,
			RawBody:       string(e.Body),
		},
	}
}
