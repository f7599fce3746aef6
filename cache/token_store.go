// Package cache provides a fast lookup layer for minted access tokens.
// The durable record lives in the persistent store; the cache is a
// write-through copy keyed by token hash so resource servers colocated with
// the gateway can validate bearers without a store round trip.
package cache

import (
	"context"
	"time"
)

// TokenEntry is the cached projection of an issued access token.
type TokenEntry struct {
	TokenValue string    `json:"token_value"`
	ClientID   string    `json:"client_id"`
	UserID     string    `json:"user_id"`
	Scope      string    `json:"scope,omitempty"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// TokenStore is the cache contract. Implementations key entries by
// HashToken of the token value, never by the raw value.
type TokenStore interface {
	Set(ctx context.Context, entry *TokenEntry) error
	Get(ctx context.Context, token string) (*TokenEntry, error)
	Delete(ctx context.Context, token string) error
	Close() error
}
