package domain

// User is the authenticated end-user identity as reported by the Identity
// Provider. The gateway never persists users; this is a projection of the
// provider's response.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}
