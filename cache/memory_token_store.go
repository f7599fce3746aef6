package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryTokenStore implements TokenStore with an in-process ttlcache.
// Entries evict themselves at token expiry; no sweep job is needed.
type MemoryTokenStore struct {
	cache *ttlcache.Cache[string, *TokenEntry]
}

// NewMemoryTokenStore creates an in-memory token store with automatic
// expiry-driven eviction.
func NewMemoryTokenStore() *MemoryTokenStore {
	c := ttlcache.New(
		ttlcache.WithDisableTouchOnHit[string, *TokenEntry](),
	)
	go c.Start()

	return &MemoryTokenStore{cache: c}
}

func (s *MemoryTokenStore) Set(_ context.Context, entry *TokenEntry) error {
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("token already expired at %s", entry.ExpiresAt)
	}
	s.cache.Set(HashToken(entry.TokenValue), entry, ttl)
	return nil
}

func (s *MemoryTokenStore) Get(_ context.Context, token string) (*TokenEntry, error) {
	item := s.cache.Get(HashToken(token))
	if item == nil {
		return nil, fmt.Errorf("token not found")
	}
	return item.Value(), nil
}

func (s *MemoryTokenStore) Delete(_ context.Context, token string) error {
	s.cache.Delete(HashToken(token))
	return nil
}

// Close stops the eviction goroutine.
func (s *MemoryTokenStore) Close() error {
	s.cache.Stop()
	return nil
}
