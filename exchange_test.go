package gateway

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftdeck/oauth-gateway/domain"
	"github.com/craftdeck/oauth-gateway/errors"
)

func validExchange(code string) ExchangeRequest {
	return ExchangeRequest{
		GrantType:   "authorization_code",
		Code:        code,
		RedirectURI: "http://localhost:3000/callback",
		ClientID:    "mobile-app-client",
	}
}

func TestExchange_HappyPath(t *testing.T) {
	env := newTestEnv(t)
	code := issueCode(t, env, "")

	resp, err := env.svc.ExchangeAuthorizationCode(context.Background(), validExchange(code))
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEqual(t, resp.AccessToken, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, "openid email", resp.Scope)

	tokens := env.tokens.Tokens()
	require.Len(t, tokens, 1)
	assert.Equal(t, "mobile-app-client", tokens[0].ClientID)
}

func TestExchange_WrongGrantType(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.ExchangeAuthorizationCode(context.Background(), ExchangeRequest{
		GrantType: "client_credentials",
	})
	assert.Equal(t, errors.UnsupportedGrantType, asOAuthError(t, err).Code)
}

func TestExchange_MissingParameters(t *testing.T) {
	env := newTestEnv(t)
	code := issueCode(t, env, "")

	for name, req := range map[string]ExchangeRequest{
		"no code":         {GrantType: "authorization_code", RedirectURI: "http://localhost:3000/callback", ClientID: "mobile-app-client"},
		"no redirect_uri": {GrantType: "authorization_code", Code: code, ClientID: "mobile-app-client"},
		"no client_id":    {GrantType: "authorization_code", Code: code, RedirectURI: "http://localhost:3000/callback"},
	} {
		_, err := env.svc.ExchangeAuthorizationCode(context.Background(), req)
		assert.Equal(t, errors.InvalidRequest, asOAuthError(t, err).Code, name)
	}
}

func TestExchange_UnknownClient(t *testing.T) {
	env := newTestEnv(t)
	code := issueCode(t, env, "")

	req := validExchange(code)
	req.ClientID = "unknown-id"

	_, err := env.svc.ExchangeAuthorizationCode(context.Background(), req)
	assert.Equal(t, errors.InvalidClient, asOAuthError(t, err).Code)
}

func TestExchange_SingleUse(t *testing.T) {
	env := newTestEnv(t)
	code := issueCode(t, env, "")

	_, err := env.svc.ExchangeAuthorizationCode(context.Background(), validExchange(code))
	require.NoError(t, err)

	_, err = env.svc.ExchangeAuthorizationCode(context.Background(), validExchange(code))
	assert.Equal(t, errors.InvalidGrant, asOAuthError(t, err).Code)
}

func TestExchange_RedirectURIMismatch(t *testing.T) {
	env := newTestEnv(t)
	code := issueCode(t, env, "")

	req := validExchange(code)
	req.RedirectURI = "craftdeck://oauth/callback" // registered, but not the one bound at issuance

	_, err := env.svc.ExchangeAuthorizationCode(context.Background(), req)
	assert.Equal(t, errors.InvalidGrant, asOAuthError(t, err).Code)

	// The mismatch must not have consumed the code.
	_, err = env.svc.ExchangeAuthorizationCode(context.Background(), validExchange(code))
	assert.NoError(t, err)
}

func TestExchange_ClientIDMismatch(t *testing.T) {
	env := newTestEnv(t)
	code := issueCode(t, env, "")

	req := validExchange(code)
	req.ClientID = "docs-portal"
	req.RedirectURI = "http://localhost:8001/auth/done"

	_, err := env.svc.ExchangeAuthorizationCode(context.Background(), req)
	assert.Equal(t, errors.InvalidGrant, asOAuthError(t, err).Code)
}

func TestExchange_ExpiredCode(t *testing.T) {
	env := newTestEnv(t)

	expired := &domain.AuthCode{
		Code:        "expired-code-value",
		ClientID:    "mobile-app-client",
		RedirectURI: "http://localhost:3000/callback",
		Scope:       "openid email",
		ExpiresAt:   time.Now().Add(-time.Minute),
		CreatedAt:   time.Now().Add(-11 * time.Minute),
	}
	require.NoError(t, env.codes.SaveAuthCode(context.Background(), expired))

	_, err := env.svc.ExchangeAuthorizationCode(context.Background(), validExchange("expired-code-value"))
	oauthErr := asOAuthError(t, err)
	assert.Equal(t, errors.InvalidGrant, oauthErr.Code)
	assert.Contains(t, oauthErr.Description, "expired")
}

func TestExchange_ConfidentialClientRequiresSecret(t *testing.T) {
	env := newTestEnv(t)

	location, err := env.svc.Authorize(context.Background(), AuthorizeRequest{
		ClientID:    "web-dashboard",
		RedirectURI: "http://localhost:8000/oauth/complete",
		Scope:       "openid email",
	})
	require.NoError(t, err)
	code := codeFromRedirect(t, location)

	req := ExchangeRequest{
		GrantType:   "authorization_code",
		Code:        code,
		RedirectURI: "http://localhost:8000/oauth/complete",
		ClientID:    "web-dashboard",
	}

	_, err = env.svc.ExchangeAuthorizationCode(context.Background(), req)
	assert.Equal(t, errors.InvalidClient, asOAuthError(t, err).Code)

	req.ClientSecret = "dev-dashboard-secret"
	_, err = env.svc.ExchangeAuthorizationCode(context.Background(), req)
	assert.NoError(t, err)
}

func TestExchange_ConcurrentRedemptionHasOneWinner(t *testing.T) {
	env := newTestEnv(t)
	code := issueCode(t, env, "")

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.ExchangeAuthorizationCode(context.Background(), validExchange(code))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins int
	for err := range results {
		if err == nil {
			wins++
		} else {
			assert.Equal(t, errors.InvalidGrant, asOAuthError(t, err).Code)
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent redemption may succeed")
	assert.Len(t, env.tokens.Tokens(), 1, "only the winner mints tokens")
}
