// Package session determines the authenticated end-user identity for an
// inbound request. Strategies are tried in order; adding one never touches
// call sites. The gateway never renders a login form itself: if no strategy
// yields a user, the caller reports access_denied.
package session

import (
	"context"
	"net/http"
	"strings"

	"github.com/craftdeck/oauth-gateway/domain"
)

// UserResolver turns an access-token value into a user identity.
// *idp.Client satisfies this.
type UserResolver interface {
	UserFromToken(ctx context.Context, token string) (*domain.User, error)
}

// Strategy extracts a credential from the request and resolves it. A
// (nil, nil) return means the strategy does not apply to this request and
// the next one should be tried.
type Strategy interface {
	Resolve(ctx context.Context, r *http.Request) (*domain.User, error)
}

// Resolver runs strategies in order and returns the first resolved user.
type Resolver struct {
	strategies []Strategy
}

// NewResolver builds the standard strategy chain: Authorization bearer
// header first, then the session cookie.
func NewResolver(users UserResolver, cookieName string) *Resolver {
	return &Resolver{
		strategies: []Strategy{
			&BearerStrategy{Users: users},
			&CookieStrategy{Users: users, CookieName: cookieName},
		},
	}
}

// Resolve returns the authenticated user, or nil when no strategy applied.
// A strategy error is not fatal to the chain; later strategies still run.
func (r *Resolver) Resolve(ctx context.Context, req *http.Request) (*domain.User, error) {
	var lastErr error
	for _, s := range r.strategies {
		user, err := s.Resolve(ctx, req)
		if err != nil {
			lastErr = err
			continue
		}
		if user != nil {
			return user, nil
		}
	}
	return nil, lastErr
}

// BearerStrategy resolves "Authorization: Bearer <token>" headers.
type BearerStrategy struct {
	Users UserResolver
}

func (s *BearerStrategy) Resolve(ctx context.Context, r *http.Request) (*domain.User, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, nil
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return nil, nil
	}

	return s.Users.UserFromToken(ctx, parts[1])
}

// CookieStrategy resolves a session cookie holding an access-token value.
type CookieStrategy struct {
	Users      UserResolver
	CookieName string
}

func (s *CookieStrategy) Resolve(ctx context.Context, r *http.Request) (*domain.User, error) {
	cookie, err := r.Cookie(s.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	return s.Users.UserFromToken(ctx, cookie.Value)
}
