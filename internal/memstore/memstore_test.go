package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftdeck/oauth-gateway/domain"
)

func seedCode(t *testing.T, store *AuthCodeStore) *domain.AuthCode {
	t.Helper()
	code := &domain.AuthCode{
		Code:        "code-1",
		ClientID:    "mobile-app-client",
		RedirectURI: "http://localhost:3000/callback",
		Scope:       "openid email",
		ExpiresAt:   time.Now().Add(10 * time.Minute),
		CreatedAt:   time.Now(),
	}
	require.NoError(t, store.SaveAuthCode(context.Background(), code))
	return code
}

func TestAuthCodeStore_ConsumeRequiresExactBinding(t *testing.T) {
	store := NewAuthCodeStore()
	seedCode(t, store)

	_, err := store.ConsumeAuthCode(context.Background(), "code-1", "other-client", "http://localhost:3000/callback")
	assert.ErrorIs(t, err, domain.ErrAuthCodeNotFound)

	_, err = store.ConsumeAuthCode(context.Background(), "code-1", "mobile-app-client", "http://evil.example.com/cb")
	assert.ErrorIs(t, err, domain.ErrAuthCodeNotFound)

	// The failed attempts must not have consumed the record.
	got, err := store.ConsumeAuthCode(context.Background(), "code-1", "mobile-app-client", "http://localhost:3000/callback")
	require.NoError(t, err)
	assert.Equal(t, "openid email", got.Scope)
}

func TestAuthCodeStore_ConsumeIsSingleUse(t *testing.T) {
	store := NewAuthCodeStore()
	seedCode(t, store)

	_, err := store.ConsumeAuthCode(context.Background(), "code-1", "mobile-app-client", "http://localhost:3000/callback")
	require.NoError(t, err)

	_, err = store.ConsumeAuthCode(context.Background(), "code-1", "mobile-app-client", "http://localhost:3000/callback")
	assert.ErrorIs(t, err, domain.ErrAuthCodeNotFound)
}

func TestAuthCodeStore_ConcurrentConsumeHasOneWinner(t *testing.T) {
	store := NewAuthCodeStore()
	seedCode(t, store)

	const attempts = 16
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.ConsumeAuthCode(context.Background(), "code-1", "mobile-app-client", "http://localhost:3000/callback")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, domain.ErrAuthCodeNotFound)
			losses++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, losses)
}

func TestAuthCodeStore_DeleteExpired(t *testing.T) {
	store := NewAuthCodeStore()
	require.NoError(t, store.SaveAuthCode(context.Background(), &domain.AuthCode{
		Code:      "stale",
		ExpiresAt: time.Now().Add(-time.Minute),
	}))
	require.NoError(t, store.SaveAuthCode(context.Background(), &domain.AuthCode{
		Code:      "fresh",
		ExpiresAt: time.Now().Add(time.Minute),
	}))

	require.NoError(t, store.DeleteExpiredAuthCodes(context.Background()))
	assert.Equal(t, 1, store.Len())

	_, err := store.GetAuthCode(context.Background(), "fresh")
	assert.NoError(t, err)
}

func TestClientStore(t *testing.T) {
	store := NewClientStore()
	store.PutClient(&domain.Client{ID: "web-dashboard", Name: "Dashboard"})

	cli, err := store.GetClient(context.Background(), "web-dashboard")
	require.NoError(t, err)
	assert.Equal(t, "Dashboard", cli.Name)

	_, err = store.GetClient(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
}

func TestTokenStore_DeleteExpired(t *testing.T) {
	store := NewTokenStore()
	require.NoError(t, store.StoreToken(context.Background(), &domain.Token{
		ID:        "t1",
		ExpiresAt: time.Now().Add(-time.Second),
	}))
	require.NoError(t, store.StoreToken(context.Background(), &domain.Token{
		ID:        "t2",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	require.NoError(t, store.DeleteExpiredTokens(context.Background()))

	tokens := store.Tokens()
	require.Len(t, tokens, 1)
	assert.Equal(t, "t2", tokens[0].ID)
}
