// Package redis implements the token cache over Redis, for deployments
// running more than one gateway instance.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/craftdeck/oauth-gateway/cache"
)

// TokenStore implements cache.TokenStore on a Redis client. Expiry is
// delegated to Redis key TTLs, so expired entries vanish on their own.
type TokenStore struct {
	client *redis.Client
	prefix string
}

// NewTokenStore creates a Redis-backed token store. The prefix namespaces
// keys when the Redis instance is shared.
func NewTokenStore(client *redis.Client, prefix string) *TokenStore {
	return &TokenStore{client: client, prefix: prefix}
}

func (s *TokenStore) key(token string) string {
	return fmt.Sprintf("%s:token:%s", s.prefix, cache.HashToken(token))
}

func (s *TokenStore) Set(ctx context.Context, entry *cache.TokenEntry) error {
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("token already expired at %s", entry.ExpiresAt)
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal token entry: %w", err)
	}

	if err := s.client.Set(ctx, s.key(entry.TokenValue), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache token in redis: %w", err)
	}
	return nil
}

func (s *TokenStore) Get(ctx context.Context, token string) (*cache.TokenEntry, error) {
	payload, err := s.client.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("token not found")
		}
		return nil, fmt.Errorf("failed to read token from redis: %w", err)
	}

	var entry cache.TokenEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token entry: %w", err)
	}
	return &entry, nil
}

func (s *TokenStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.key(token)).Err()
}

func (s *TokenStore) Close() error {
	return s.client.Close()
}
