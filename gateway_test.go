package gateway

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/craftdeck/oauth-gateway/client"
	"github.com/craftdeck/oauth-gateway/domain"
	"github.com/craftdeck/oauth-gateway/internal/memstore"
	"github.com/craftdeck/oauth-gateway/log"
)

// fakeIdP records the authorize redirects it builds and resolves a fixed
// token set.
type fakeIdP struct {
	users map[string]*domain.User
}

func (f *fakeIdP) AuthorizeURL(provider, redirectTo, state string) string {
	q := url.Values{}
	q.Set("redirect_to", redirectTo)
	if provider != "" {
		q.Set("provider", provider)
	}
	if state != "" {
		q.Set("state", state)
	}
	return "https://idp.test/auth/v1/authorize?" + q.Encode()
}

func (f *fakeIdP) UserFromToken(_ context.Context, token string) (*domain.User, error) {
	if user, ok := f.users[token]; ok {
		return user, nil
	}
	return nil, nil
}

// fakeSessions resolves a fixed user regardless of the request, or nothing.
type fakeSessions struct {
	user *domain.User
}

func (f *fakeSessions) Resolve(_ context.Context, _ *http.Request) (*domain.User, error) {
	return f.user, nil
}

type testEnv struct {
	svc      *Service
	codes    *memstore.AuthCodeStore
	tokens   *memstore.TokenStore
	sessions *fakeSessions
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := log.NewZerologAdapter(zerolog.Disabled, false)
	codes := memstore.NewAuthCodeStore()
	tokens := memstore.NewTokenStore()
	sessions := &fakeSessions{}
	idp := &fakeIdP{users: map[string]*domain.User{}}

	svc := NewService(
		client.NewRegistry(nil, logger),
		codes,
		tokens,
		idp,
		sessions,
		logger,
		Options{PublicURL: "http://gateway.test"},
	)

	return &testEnv{svc: svc, codes: codes, tokens: tokens, sessions: sessions}
}

// issueCode runs a valid authorize request and returns the generated code
// value extracted from the redirect.
func issueCode(t *testing.T, env *testEnv, state string) string {
	t.Helper()

	location, err := env.svc.Authorize(context.Background(), AuthorizeRequest{
		ClientID:    "mobile-app-client",
		RedirectURI: "http://localhost:3000/callback",
		Scope:       "openid email",
		State:       state,
	})
	require.NoError(t, err)

	return codeFromRedirect(t, location)
}

// codeFromRedirect digs the pending code out of the embedded callback URL.
func codeFromRedirect(t *testing.T, location string) string {
	t.Helper()

	outer, err := url.Parse(location)
	require.NoError(t, err)
	callback, err := url.Parse(outer.Query().Get("redirect_to"))
	require.NoError(t, err)

	code := callback.Query().Get("code")
	require.NotEmpty(t, code)
	return code
}
