package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockTokenProvider provides a testify-based mock implementation of auth.TokenProvider.
//
// Example usage:
//
//	tokens := &mocks.MockTokenProvider{}
//	tokens.On("Token", mock.Anything).Return("tok", true)
type MockTokenProvider struct {
	mock.Mock
}

// Token implements auth.TokenProvider
func (m *MockTokenProvider) Token(ctx context.Context) (string, bool) {
	arguments := m.Called(ctx)
	return arguments.String(0), arguments.Bool(1)
}

// ExpectAnonymous configures the mock to report no token on every call
func (m *MockTokenProvider) ExpectAnonymous() *mock.Call {
	return m.On("Token", mock.Anything).Return("", false)
}

// ExpectToken configures the mock to yield token on every call
func (m *MockTokenProvider) ExpectToken(token string) *mock.Call {
	return m.On("Token", mock.Anything).Return(token, true)
}
