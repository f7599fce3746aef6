// Package idp talks to the upstream Identity Provider: it builds the
// authorization redirect that sends the browser to the provider's login, and
// resolves bearer tokens or session cookies back to user identities.
package idp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/craftdeck/oauth-gateway/domain"
)

// ErrTokenRejected indicates the provider did not accept the presented token.
var ErrTokenRejected = errors.New("identity provider rejected token")

const userInfoPath = "/auth/v1/user"

// Client is an HTTP client for the Identity Provider. The service key
// authenticates the gateway itself on the provider's API.
type Client struct {
	baseURL    string
	serviceKey string
	clientID   string
	http       *http.Client
}

// New creates an Identity Provider client for the given base URL.
func New(baseURL, serviceKey, clientID string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		clientID:   clientID,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

// AuthorizeURL builds the provider's authorization URL. redirectTo is where
// the provider sends the browser after authentication; for the gateway this
// is its own callback endpoint with the pending code and state embedded.
func (c *Client) AuthorizeURL(provider, redirectTo, state string) string {
	cfg := oauth2.Config{
		ClientID:    c.clientID,
		RedirectURL: redirectTo,
		Endpoint: oauth2.Endpoint{
			AuthURL: c.baseURL + "/auth/v1/authorize",
		},
	}

	opts := []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("redirect_to", redirectTo),
	}
	if provider != "" {
		opts = append(opts, oauth2.SetAuthURLParam("provider", provider))
	}

	return cfg.AuthCodeURL(state, opts...)
}

// UserFromToken asks the provider who the bearer of the given access token
// is. A 401/403 from the provider maps to ErrTokenRejected; anything else
// unexpected is surfaced as an error for the caller to downgrade.
func (c *Client) UserFromToken(ctx context.Context, token string) (*domain.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+userInfoPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build user info request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if c.serviceKey != "" {
		req.Header.Set("apikey", c.serviceKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity provider request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrTokenRejected
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("identity provider returned status %d: %s", resp.StatusCode, string(body))
	}

	var raw struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		UserMetadata struct {
			FullName  string `json:"full_name"`
			Name      string `json:"name"`
			AvatarURL string `json:"avatar_url"`
		} `json:"user_metadata"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode user info response: %w", err)
	}
	if raw.ID == "" {
		return nil, ErrTokenRejected
	}

	name := raw.UserMetadata.FullName
	if name == "" {
		name = raw.UserMetadata.Name
	}

	return &domain.User{
		ID:        raw.ID,
		Email:     raw.Email,
		Name:      name,
		AvatarURL: raw.UserMetadata.AvatarURL,
	}, nil
}
