// Package client resolves client_id values to registered client metadata.
//
// Resolution tries the persistent store first and falls back to a fixed
// in-memory catalog of development clients, so a freshly started stack can
// run the full flow before any client has been registered.
package client

import (
	"context"
	"time"

	"github.com/craftdeck/oauth-gateway/domain"
	"github.com/craftdeck/oauth-gateway/log"
)

// Registry resolves clients from a store-backed source with a static
// catalog fallback. It exposes no mutation operations.
type Registry struct {
	store  domain.ClientRepository
	static map[string]*domain.Client
	logger log.Logger
}

// NewRegistry creates a Registry over the given store. A nil store is
// allowed and leaves only the static catalog.
func NewRegistry(store domain.ClientRepository, logger log.Logger) *Registry {
	return &Registry{
		store:  store,
		static: defaultCatalog(),
		logger: logger,
	}
}

// Resolve returns the client registered under clientID. Store errors are
// treated as a miss so that a degraded store never takes the authorize
// endpoint down with it; only a miss in both sources is reported, as
// domain.ErrClientNotFound.
func (r *Registry) Resolve(ctx context.Context, clientID string) (*domain.Client, error) {
	if clientID == "" {
		return nil, domain.ErrClientNotFound
	}

	if r.store != nil {
		cli, err := r.store.GetClient(ctx, clientID)
		if err == nil {
			return cli, nil
		}
		if err != domain.ErrClientNotFound {
			r.logger.Warn(ctx, "client store lookup failed, using static catalog", map[string]interface{}{
				"client_id": clientID,
				"error":     err.Error(),
			})
		}
	}

	if cli, ok := r.static[clientID]; ok {
		copied := *cli
		return &copied, nil
	}

	return nil, domain.ErrClientNotFound
}

// defaultCatalog lists the development clients shipped with the platform.
func defaultCatalog() map[string]*domain.Client {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	catalog := []*domain.Client{
		{
			ID:            "mobile-app-client",
			Name:          "Craftdeck Mobile",
			RedirectURIs:  []string{"http://localhost:3000/callback", "craftdeck://oauth/callback"},
			AllowedScopes: []string{"openid", "email", "profile"},
			CreatedAt:     created,
		},
		{
			ID:            "web-dashboard",
			Name:          "Craftdeck Dashboard",
			Secret:        "dev-dashboard-secret",
			RedirectURIs:  []string{"http://localhost:8000/oauth/complete"},
			AllowedScopes: []string{"openid", "email", "profile", "storage"},
			CreatedAt:     created,
		},
		{
			ID:            "docs-portal",
			Name:          "Craftdeck Docs",
			RedirectURIs:  []string{"http://localhost:8001/auth/done"},
			AllowedScopes: []string{"openid", "email"},
			CreatedAt:     created,
		},
	}

	byID := make(map[string]*domain.Client, len(catalog))
	for _, cli := range catalog {
		byID[cli.ID] = cli
	}
	return byID
}
