package domain

import "time"

// AuthCode is a single-use authorization code grant. It is created by the
// authorize endpoint and consumed exactly once by whichever of the callback
// or token-exchange paths redeems it first.
type AuthCode struct {
	Code        string    `bson:"code"              json:"code"`
	ClientID    string    `bson:"client_id"         json:"client_id"`
	UserID      string    `bson:"user_id,omitempty" json:"user_id,omitempty"`
	RedirectURI string    `bson:"redirect_uri"      json:"redirect_uri"`
	Scope       string    `bson:"scope"             json:"scope"`
	State       string    `bson:"state,omitempty"   json:"state,omitempty"`
	ExpiresAt   time.Time `bson:"expires_at"        json:"expires_at"`
	CreatedAt   time.Time `bson:"created_at"        json:"created_at"`
}

// Expired reports whether the code is past its expiry at the given instant.
func (c *AuthCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
