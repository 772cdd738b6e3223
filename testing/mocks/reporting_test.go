package mocks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kybkit/kybclient/auth"
	"github.com/kybkit/kybclient/reporting"
)

var (
	_ auth.TokenProvider   = (*MockTokenProvider)(nil)
	_ reporting.Classifier = (*MockClassifier)(nil)
	_ reporting.Sink       = (*MockSink)(nil)
)

func TestMockSinkKeepsReports(t *testing.T) {
	sink := NewMockSink()
	boom := errors.New("boom")

	sink.Report(context.Background(), boom, reporting.Report{Fingerprint: []string{"GET", "u", "500", "anonymous"}})

	reports := sink.Reports()
	assert.Len(t, reports, 1)
	assert.Equal(t, []string{"GET", "u", "500", "anonymous"}, reports[0].Fingerprint)
	assert.Equal(t, []error{boom}, sink.Errors())
	sink.AssertNumberOfCalls(t, "Report", 1)
}

func TestMockTokenProvider(t *testing.T) {
	tokens := &MockTokenProvider{}
	tokens.ExpectToken("tok")

	assert.Equal(t, "Bearer tok", auth.BearerValue(context.Background(), tokens))
	tokens.AssertCalled(t, "Token", mock.Anything)
}

func TestMockClassifier(t *testing.T) {
	classifier := &MockClassifier{}
	classifier.On("ShouldIgnore", "handled").Return(true)
	classifier.On("ShouldIgnore", mock.Anything).Return(false)

	assert.True(t, classifier.ShouldIgnore("handled"))
	assert.False(t, classifier.ShouldIgnore("other"))
}
