package errors

import "fmt"

// OAuth2Error is a standardized OAuth 2.0 error payload. RedirectURI is
// populated when the error may safely be delivered as a redirect to the
// client's registered callback instead of a bare JSON body; it is never
// serialized itself.
type OAuth2Error struct {
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
	State       string `json:"state,omitempty"`
	RedirectURI string `json:"-"`
}

func (e *OAuth2Error) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WithState returns a copy of the error carrying the client's state value.
func (e *OAuth2Error) WithState(state string) *OAuth2Error {
	out := *e
	out.State = state
	return &out
}

// WithRedirect returns a copy of the error that should be delivered as a
// redirect to the given URI.
func (e *OAuth2Error) WithRedirect(redirectURI string) *OAuth2Error {
	out := *e
	out.RedirectURI = redirectURI
	return &out
}

// Standard OAuth2 error codes.
const (
	InvalidRequest          = "invalid_request"
	InvalidClient           = "invalid_client"
	InvalidGrant            = "invalid_grant"
	UnsupportedGrantType    = "unsupported_grant_type"
	UnsupportedResponseType = "unsupported_response_type"
	InvalidScope            = "invalid_scope"
	AccessDenied            = "access_denied"
	ServerError             = "server_error"
	MethodNotAllowed        = "method_not_allowed"
)

func NewInvalidRequest(description string) *OAuth2Error {
	return &OAuth2Error{Code: InvalidRequest, Description: description}
}

func NewInvalidClient(description string) *OAuth2Error {
	return &OAuth2Error{Code: InvalidClient, Description: description}
}

func NewInvalidGrant(description string) *OAuth2Error {
	return &OAuth2Error{Code: InvalidGrant, Description: description}
}

func NewInvalidScope(description string) *OAuth2Error {
	return &OAuth2Error{Code: InvalidScope, Description: description}
}

func NewUnsupportedGrantType() *OAuth2Error {
	return &OAuth2Error{Code: UnsupportedGrantType, Description: "The authorization grant type is not supported"}
}

func NewUnsupportedResponseType(description string) *OAuth2Error {
	return &OAuth2Error{Code: UnsupportedResponseType, Description: description}
}

func NewAccessDenied(description string) *OAuth2Error {
	return &OAuth2Error{Code: AccessDenied, Description: description}
}

func NewServerError(description string) *OAuth2Error {
	return &OAuth2Error{Code: ServerError, Description: description}
}

func NewMethodNotAllowed() *OAuth2Error {
	return &OAuth2Error{Code: MethodNotAllowed, Description: "HTTP method not supported on this endpoint"}
}
