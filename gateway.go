// Package gateway implements the OAuth 2.0 authorization-code flow for the
// platform: issuing codes to registered clients, correlating the Identity
// Provider's return trip back to the pending code, and exchanging codes for
// bearer tokens.
package gateway

import (
	"context"
	"crypto/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/craftdeck/oauth-gateway/cache"
	"github.com/craftdeck/oauth-gateway/client"
	"github.com/craftdeck/oauth-gateway/domain"
	"github.com/craftdeck/oauth-gateway/log"
)

const (
	// DefaultScope applies when an authorize request names no scope.
	DefaultScope = "openid email"

	defaultCodeTTL  = 10 * time.Minute
	defaultTokenTTL = time.Hour
)

// IdentityProvider is the upstream service that authenticates end users.
type IdentityProvider interface {
	AuthorizeURL(provider, redirectTo, state string) string
	UserFromToken(ctx context.Context, token string) (*domain.User, error)
}

// SessionResolver determines the authenticated user behind a request.
type SessionResolver interface {
	Resolve(ctx context.Context, r *http.Request) (*domain.User, error)
}

// Service holds the gateway's collaborators. Handlers are stateless; all
// durable state lives behind the repositories.
type Service struct {
	clients  *client.Registry
	codes    domain.AuthCodeRepository
	tokens   domain.TokenRepository
	cache    cache.TokenStore
	idp      IdentityProvider
	sessions SessionResolver
	logger   log.Logger

	publicURL string
	codeTTL   time.Duration
	tokenTTL  time.Duration
}

// Options tunes a Service beyond its required collaborators.
type Options struct {
	// PublicURL is the externally reachable base URL of the gateway,
	// used to build the callback embedded in the upstream redirect.
	PublicURL string
	// TokenCache, when set, receives a write-through copy of every
	// minted access token.
	TokenCache cache.TokenStore
	CodeTTL    time.Duration
	TokenTTL   time.Duration
}

// NewService wires a gateway Service.
func NewService(
	clients *client.Registry,
	codes domain.AuthCodeRepository,
	tokens domain.TokenRepository,
	idp IdentityProvider,
	sessions SessionResolver,
	logger log.Logger,
	opts Options,
) *Service {
	codeTTL := opts.CodeTTL
	if codeTTL <= 0 {
		codeTTL = defaultCodeTTL
	}
	tokenTTL := opts.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}

	return &Service{
		clients:   clients,
		codes:     codes,
		tokens:    tokens,
		cache:     opts.TokenCache,
		idp:       idp,
		sessions:  sessions,
		logger:    logger,
		publicURL: opts.PublicURL,
		codeTTL:   codeTTL,
		tokenTTL:  tokenTTL,
	}
}

// TokenResponse is the JSON body returned on successful redemption.
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	Scope        string       `json:"scope,omitempty"`
	User         *domain.User `json:"user,omitempty"`
}

const codeCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newCode returns a 32-character cryptographically random code value.
func newCode() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = codeCharset[int(b[i])%len(codeCharset)]
	}
	return string(b)
}

// mintToken creates and persists a token record and returns the wire
// response. The cache copy is best effort; a cache failure never voids an
// already persisted token.
func (s *Service) mintToken(ctx context.Context, userID, clientID, scope string) (*TokenResponse, error) {
	now := time.Now().UTC()
	token := &domain.Token{
		ID:           uuid.NewString(),
		AccessToken:  uuid.NewString(),
		RefreshToken: uuid.NewString(),
		ClientID:     clientID,
		UserID:       userID,
		Scope:        scope,
		ExpiresAt:    now.Add(s.tokenTTL),
		CreatedAt:    now,
	}

	if err := s.tokens.StoreToken(ctx, token); err != nil {
		return nil, err
	}

	if s.cache != nil {
		entry := &cache.TokenEntry{
			TokenValue: token.AccessToken,
			ClientID:   token.ClientID,
			UserID:     token.UserID,
			Scope:      token.Scope,
			ExpiresAt:  token.ExpiresAt,
			CreatedAt:  token.CreatedAt,
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Warn(ctx, "failed to cache minted token", map[string]interface{}{
				"client_id": clientID,
				"error":     err.Error(),
			})
		}
	}

	return &TokenResponse{
		AccessToken:  token.AccessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.tokenTTL.Seconds()),
		RefreshToken: token.RefreshToken,
		Scope:        scope,
	}, nil
}

// callbackURL builds the gateway callback the Identity Provider sends the
// browser back to, carrying the pending code, state, and the client's
// original redirect_uri.
func (s *Service) callbackURL(code, state, redirectURI string) string {
	q := url.Values{}
	q.Set("code", code)
	if state != "" {
		q.Set("state", state)
	}
	q.Set("redirect_uri", redirectURI)
	return s.publicURL + "/oauth/callback?" + q.Encode()
}
