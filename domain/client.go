package domain

import "time"

// Client represents a registered third-party application that may request
// delegated access through the gateway. Clients are created by platform
// administration; the gateway only ever reads them.
//
//nolint:tagliatelle
type Client struct {
	ID            string    `bson:"client_id"               json:"client_id"`
	Secret        string    `bson:"client_secret,omitempty" json:"-"`
	Name          string    `bson:"client_name"             json:"name,omitempty"`
	RedirectURIs  []string  `bson:"redirect_uris"           json:"redirect_uris,omitempty"`
	AllowedScopes []string  `bson:"allowed_scopes"          json:"allowed_scopes,omitempty"`
	CreatedAt     time.Time `bson:"created_at"              json:"created_at,omitempty"`
}

// Confidential reports whether the client registered a secret and therefore
// must authenticate on the token endpoint.
func (c *Client) Confidential() bool {
	return c.Secret != ""
}

// HasRedirectURI reports whether uri is a registered redirect target.
// Matching is exact string equality; no prefix or wildcard forms.
func (c *Client) HasRedirectURI(uri string) bool {
	for _, registered := range c.RedirectURIs {
		if registered == uri {
			return true
		}
	}
	return false
}

// DisallowedScopes returns the requested scopes that are not in the client's
// allowed set, preserving request order.
func (c *Client) DisallowedScopes(requested []string) []string {
	allowed := make(map[string]bool, len(c.AllowedScopes))
	for _, scope := range c.AllowedScopes {
		allowed[scope] = true
	}

	var denied []string
	for _, scope := range requested {
		if scope != "" && !allowed[scope] {
			denied = append(denied, scope)
		}
	}
	return denied
}
