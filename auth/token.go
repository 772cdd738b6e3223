// Package auth supplies bearer tokens to the API client.
//
// Acquiring and refreshing tokens happens elsewhere; providers here only
// report the token that is valid right now, or that the caller is anonymous.
package auth

import (
	"context"
	"sync"

	"golang.org/x/oauth2"
)

// AnonymousIdentity is used wherever an identity is needed and no token exists.
const AnonymousIdentity = "anonymous"

// TokenProvider returns the current bearer token. ok is false, or the token
// empty, when the caller is anonymous. Implementations must be safe for
// concurrent use and must not block on auth state.
type TokenProvider interface {
	Token(ctx context.Context) (token string, ok bool)
}

// ProviderFunc adapts a function to TokenProvider.
type ProviderFunc func(ctx context.Context) (string, bool)

// Token calls f.
func (f ProviderFunc) Token(ctx context.Context) (string, bool) { return f(ctx) }

// Static returns a provider that always yields token.
func Static(token string) TokenProvider {
	return ProviderFunc(func(context.Context) (string, bool) {
		return token, token != ""
	})
}

// Anonymous returns a provider that never yields a token.
func Anonymous() TokenProvider {
	return ProviderFunc(func(context.Context) (string, bool) { return "", false })
}

// FromTokenSource adapts an oauth2.TokenSource. Source errors and invalid
// tokens are treated as anonymous so the request still proceeds.
func FromTokenSource(src oauth2.TokenSource) TokenProvider {
	return ProviderFunc(func(context.Context) (string, bool) {
		if src == nil {
			return "", false
		}
		tok, err := src.Token()
		if err != nil || !tok.Valid() {
			return "", false
		}
		return tok.AccessToken, tok.AccessToken != ""
	})
}

// Holder stores a token that can be replaced at runtime, e.g. on login and logout.
type Holder struct {
	mu    sync.RWMutex
	token string
}

// NewHolder returns a Holder seeded with token.
func NewHolder(token string) *Holder {
	return &Holder{token: token}
}

// Set replaces the current token. An empty token means anonymous.
func (h *Holder) Set(token string) {
	h.mu.Lock()
	h.token = token
	h.mu.Unlock()
}

// Clear drops the current token.
func (h *Holder) Clear() { h.Set("") }

// Token implements TokenProvider.
func (h *Holder) Token(context.Context) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token, h.token != ""
}

// current returns the provider's token, or "" when anonymous or p is nil.
func current(ctx context.Context, p TokenProvider) string {
	if p == nil {
		return ""
	}
	tok, ok := p.Token(ctx)
	if !ok {
		return ""
	}
	return tok
}

// Identity returns the current token, or AnonymousIdentity.
func Identity(ctx context.Context, p TokenProvider) string {
	if tok := current(ctx, p); tok != "" {
		return tok
	}
	return AnonymousIdentity
}

// BearerValue returns the Authorization header value for the current token.
// The anonymous state yields "Bearer " with an empty credential.
func BearerValue(ctx context.Context, p TokenProvider) string {
	return "Bearer " + current(ctx, p)
}
