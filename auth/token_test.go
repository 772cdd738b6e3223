package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"
)

type failingSource struct{}

func (failingSource) Token() (*oauth2.Token, error) { return nil, errors.New("refresh failed") }

func TestStatic(t *testing.T) {
	ctx := context.Background()

	tok, ok := Static("abc").Token(ctx)
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	_, ok = Static("").Token(ctx)
	assert.False(t, ok)
}

func TestIdentityAndBearerValue(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		provider     TokenProvider
		wantIdentity string
		wantBearer   string
	}{
		{name: "token present", provider: Static("abc"), wantIdentity: "abc", wantBearer: "Bearer abc"},
		{name: "anonymous provider", provider: Anonymous(), wantIdentity: AnonymousIdentity, wantBearer: "Bearer "},
		{name: "nil provider", provider: nil, wantIdentity: AnonymousIdentity, wantBearer: "Bearer "},
		{
			name: "ok with empty token",
			provider: ProviderFunc(func(context.Context) (string, bool) {
				return "", true
			}),
			wantIdentity: AnonymousIdentity,
			wantBearer:   "Bearer ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantIdentity, Identity(ctx, tt.provider))
			assert.Equal(t, tt.wantBearer, BearerValue(ctx, tt.provider))
		})
	}
}

func TestFromTokenSource(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token", func(t *testing.T) {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "oauth-abc", Expiry: time.Now().Add(time.Hour)})
		assert.Equal(t, "oauth-abc", Identity(ctx, FromTokenSource(src)))
	})

	t.Run("expired token is anonymous", func(t *testing.T) {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "old", Expiry: time.Now().Add(-time.Hour)})
		assert.Equal(t, AnonymousIdentity, Identity(ctx, FromTokenSource(src)))
	})

	t.Run("source error is anonymous", func(t *testing.T) {
		assert.Equal(t, "Bearer ", BearerValue(ctx, FromTokenSource(failingSource{})))
	})

	t.Run("nil source is anonymous", func(t *testing.T) {
		assert.Equal(t, AnonymousIdentity, Identity(ctx, FromTokenSource(nil)))
	})
}

func TestHolder(t *testing.T) {
	ctx := context.Background()
	h := NewHolder("")

	assert.Equal(t, AnonymousIdentity, Identity(ctx, h))

	h.Set("login-token")
	assert.Equal(t, "Bearer login-token", BearerValue(ctx, h))

	h.Clear()
	assert.Equal(t, AnonymousIdentity, Identity(ctx, h))
}

func TestHolderConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	h := NewHolder("a")

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				h.Set("a")
			} else {
				h.Set("b")
			}
		}()
		go func() {
			defer wg.Done()
			tok, ok := h.Token(ctx)
			assert.True(t, ok)
			assert.Contains(t, []string{"a", "b"}, tok)
		}()
	}
	wg.Wait()
}
