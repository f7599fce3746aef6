package mongodb

// Collection names used by the gateway.
const (
	ClientsCollection = "oauth_clients"
	CodesCollection   = "auth_codes"
	TokensCollection  = "tokens"
)
