package domain

import (
	"context"
	"errors"
)

var (
	// ErrClientNotFound is returned when no client exists for a client_id.
	ErrClientNotFound = errors.New("client not found")
	// ErrAuthCodeNotFound is returned when an authorization code does not
	// exist, has already been consumed, or does not match the supplied
	// client_id / redirect_uri binding.
	ErrAuthCodeNotFound = errors.New("authorization code not found")
)

// ClientRepository reads registered client applications.
type ClientRepository interface {
	GetClient(ctx context.Context, clientID string) (*Client, error)
}

// AuthCodeRepository stores single-use authorization codes.
type AuthCodeRepository interface {
	SaveAuthCode(ctx context.Context, code *AuthCode) error
	GetAuthCode(ctx context.Context, code string) (*AuthCode, error)

	// ConsumeAuthCode atomically deletes and returns the code matching all
	// of (code, clientID, redirectURI). Exactly one of two concurrent
	// consumers can succeed; the loser gets ErrAuthCodeNotFound. This is
	// the single-use guarantee, so implementations must not split the
	// lookup and the delete.
	ConsumeAuthCode(ctx context.Context, code, clientID, redirectURI string) (*AuthCode, error)

	DeleteExpiredAuthCodes(ctx context.Context) error
}

// TokenRepository stores issued tokens.
type TokenRepository interface {
	StoreToken(ctx context.Context, token *Token) error
	DeleteExpiredTokens(ctx context.Context) error
}
