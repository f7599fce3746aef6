package idp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizeURL(t *testing.T) {
	c := New("https://idp.example.com/", "service-key", "oauth-gateway")

	raw := c.AuthorizeURL("github", "https://gw.example.com/oauth/callback?code=abc", "st4te")

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "idp.example.com", parsed.Host)
	assert.Equal(t, "/auth/v1/authorize", parsed.Path)

	q := parsed.Query()
	assert.Equal(t, "github", q.Get("provider"))
	assert.Equal(t, "https://gw.example.com/oauth/callback?code=abc", q.Get("redirect_to"))
	assert.Equal(t, "st4te", q.Get("state"))
}

func TestAuthorizeURL_NoProvider(t *testing.T) {
	c := New("https://idp.example.com", "", "oauth-gateway")

	parsed, err := url.Parse(c.AuthorizeURL("", "https://gw.example.com/cb", "s"))
	require.NoError(t, err)
	assert.Empty(t, parsed.Query().Get("provider"))
}

func TestUserFromToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "Bearer valid-token", r.Header.Get("Authorization"))
		assert.Equal(t, "service-key", r.Header.Get("apikey"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "user-123",
			"email": "dev@example.com",
			"user_metadata": {"full_name": "Dev User", "avatar_url": "https://cdn.example.com/a.png"}
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "service-key", "oauth-gateway")
	user, err := c.UserFromToken(context.Background(), "valid-token")

	require.NoError(t, err)
	assert.Equal(t, "user-123", user.ID)
	assert.Equal(t, "dev@example.com", user.Email)
	assert.Equal(t, "Dev User", user.Name)
	assert.Equal(t, "https://cdn.example.com/a.png", user.AvatarURL)
}

func TestUserFromToken_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, "", "oauth-gateway")
	_, err := c.UserFromToken(context.Background(), "expired")
	assert.ErrorIs(t, err, ErrTokenRejected)
}

func TestUserFromToken_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, "", "oauth-gateway")
	_, err := c.UserFromToken(context.Background(), "any")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTokenRejected)
}
