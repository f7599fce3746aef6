package domain

import "time"

// Token is an issued credential pair. Access and refresh token values are
// opaque random strings; nothing is encoded in them.
type Token struct {
	ID           string    `bson:"_id,omitempty"  json:"id"`
	AccessToken  string    `bson:"access_token"   json:"access_token"`
	RefreshToken string    `bson:"refresh_token"  json:"refresh_token"`
	ClientID     string    `bson:"client_id"      json:"client_id"`
	UserID       string    `bson:"user_id"        json:"user_id"`
	Scope        string    `bson:"scope,omitempty" json:"scope,omitempty"`
	ExpiresAt    time.Time `bson:"expires_at"     json:"expires_at"`
	CreatedAt    time.Time `bson:"created_at"     json:"created_at"`
}
