package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/kybkit/kybclient/reporting"
)

// MockClassifier provides a testify-based mock implementation of reporting.Classifier.
type MockClassifier struct {
	mock.Mock
}

// ShouldIgnore implements reporting.Classifier
func (m *MockClassifier) ShouldIgnore(message string) bool {
	arguments := m.Called(message)
	return arguments.Bool(0)
}

// MockSink provides a testify-based mock implementation of reporting.Sink.
// Besides recording calls for expectations it keeps every report so tests
// can assert on fingerprints without matching each field.
//
// Example usage:
//
//	sink := mocks.NewMockSink()
//	sink.On("Report", mock.Anything, mock.Anything, mock.Anything).Return()
//	...
//	reports := sink.Reports()
type MockSink struct {
	mock.Mock

	mu      sync.Mutex
	reports []reporting.Report
	errs    []error
}

// NewMockSink creates a sink mock that accepts any report.
func NewMockSink() *MockSink {
	m := &MockSink{}
	m.On("Report", mock.Anything, mock.Anything, mock.Anything).Return()
	return m
}

// Report implements reporting.Sink
func (m *MockSink) Report(ctx context.Context, err error, report reporting.Report) {
	m.mu.Lock()
	m.reports = append(m.reports, report)
	m.errs = append(m.errs, err)
	m.mu.Unlock()

	m.Called(ctx, err, report)
}

// Reports returns a copy of every report received so far
func (m *MockSink) Reports() []reporting.Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]reporting.Report, len(m.reports))
	copy(out, m.reports)
	return out
}

// Errors returns a copy of every error received so far
func (m *MockSink) Errors() []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]error, len(m.errs))
	copy(out, m.errs)
	return out
}
