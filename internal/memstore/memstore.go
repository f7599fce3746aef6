// Package memstore provides mutex-guarded in-memory implementations of the
// domain repositories. It backs development mode (no Mongo configured) and
// tests. Consume semantics match the Mongo adapter: one atomic
// check-and-delete under the lock.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/craftdeck/oauth-gateway/domain"
)

// ClientStore is an in-memory domain.ClientRepository.
type ClientStore struct {
	mu      sync.RWMutex
	clients map[string]domain.Client
}

func NewClientStore() *ClientStore {
	return &ClientStore{clients: make(map[string]domain.Client)}
}

// PutClient registers a client. Only used by tests and dev seeding; the
// gateway itself never writes clients.
func (s *ClientStore) PutClient(cli *domain.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[cli.ID] = *cli
}

func (s *ClientStore) GetClient(_ context.Context, clientID string) (*domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cli, ok := s.clients[clientID]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	return &cli, nil
}

// AuthCodeStore is an in-memory domain.AuthCodeRepository.
type AuthCodeStore struct {
	mu    sync.Mutex
	codes map[string]domain.AuthCode
}

func NewAuthCodeStore() *AuthCodeStore {
	return &AuthCodeStore{codes: make(map[string]domain.AuthCode)}
}

func (s *AuthCodeStore) SaveAuthCode(_ context.Context, code *domain.AuthCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[code.Code] = *code
	return nil
}

func (s *AuthCodeStore) GetAuthCode(_ context.Context, code string) (*domain.AuthCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.codes[code]
	if !ok {
		return nil, domain.ErrAuthCodeNotFound
	}
	return &record, nil
}

// ConsumeAuthCode deletes and returns the matching record in one critical
// section. The second of two concurrent consumers finds nothing.
func (s *AuthCodeStore) ConsumeAuthCode(_ context.Context, code, clientID, redirectURI string) (*domain.AuthCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.codes[code]
	if !ok || record.ClientID != clientID || record.RedirectURI != redirectURI {
		return nil, domain.ErrAuthCodeNotFound
	}

	delete(s.codes, code)
	return &record, nil
}

func (s *AuthCodeStore) DeleteExpiredAuthCodes(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for code, record := range s.codes {
		if record.Expired(now) {
			delete(s.codes, code)
		}
	}
	return nil
}

// Len reports the number of live codes. Test helper.
func (s *AuthCodeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.codes)
}

// TokenStore is an in-memory domain.TokenRepository.
type TokenStore struct {
	mu     sync.Mutex
	tokens map[string]domain.Token // keyed by token record ID
}

func NewTokenStore() *TokenStore {
	return &TokenStore{tokens: make(map[string]domain.Token)}
}

func (s *TokenStore) StoreToken(_ context.Context, token *domain.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.ID] = *token
	return nil
}

func (s *TokenStore) DeleteExpiredTokens(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, token := range s.tokens {
		if !now.Before(token.ExpiresAt) {
			delete(s.tokens, id)
		}
	}
	return nil
}

// Tokens returns a snapshot of stored tokens. Test helper.
func (s *TokenStore) Tokens() []domain.Token {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Token, 0, len(s.tokens))
	for _, token := range s.tokens {
		out = append(out, token)
	}
	return out
}
