package gateway

import (
	"context"
	"strings"
	"time"

	"github.com/craftdeck/oauth-gateway/domain"
	"github.com/craftdeck/oauth-gateway/errors"
	"github.com/craftdeck/oauth-gateway/internal/metrics"
)

// AuthorizeRequest carries the query parameters of a GET /oauth/authorize.
type AuthorizeRequest struct {
	ClientID     string
	RedirectURI  string
	ResponseType string
	Scope        string
	State        string
	Provider     string
}

// Authorize validates an authorization request, persists a pending code,
// and returns the Identity Provider URL to redirect the browser to.
//
// Validation short-circuits on the first failure, in this order: client_id
// present, redirect_uri present, client known, redirect_uri registered,
// response_type supported, scope allowed. Errors raised after the
// redirect_uri has been validated are marked deliverable to it, so the
// browser lands back at the client instead of on a bare JSON body.
func (s *Service) Authorize(ctx context.Context, req AuthorizeRequest) (string, error) {
	if req.ClientID == "" {
		return "", errors.NewInvalidRequest("client_id is required").WithState(req.State)
	}
	if req.RedirectURI == "" {
		return "", errors.NewInvalidRequest("redirect_uri is required").WithState(req.State)
	}

	cli, err := s.clients.Resolve(ctx, req.ClientID)
	if err != nil {
		return "", errors.NewInvalidClient("Unknown client").WithState(req.State)
	}

	if !cli.HasRedirectURI(req.RedirectURI) {
		// The target is unregistered, so it is never safe to redirect to.
		return "", errors.NewInvalidRequest("Invalid redirect_uri").WithState(req.State)
	}

	responseType := req.ResponseType
	if responseType == "" {
		responseType = "code"
	}
	if responseType != "code" {
		return "", errors.NewUnsupportedResponseType("Only response_type=code is supported").
			WithState(req.State).WithRedirect(req.RedirectURI)
	}

	scope := req.Scope
	if scope == "" {
		scope = DefaultScope
	}
	if denied := cli.DisallowedScopes(strings.Fields(scope)); len(denied) > 0 {
		return "", errors.NewInvalidScope("Scopes not allowed for this client: "+strings.Join(denied, " ")).
			WithState(req.State).WithRedirect(req.RedirectURI)
	}

	now := time.Now().UTC()
	code := &domain.AuthCode{
		Code:        newCode(),
		ClientID:    cli.ID,
		RedirectURI: req.RedirectURI,
		Scope:       scope,
		State:       req.State,
		ExpiresAt:   now.Add(s.codeTTL),
		CreatedAt:   now,
	}
	if err := s.codes.SaveAuthCode(ctx, code); err != nil {
		s.logger.Error(ctx, "failed to persist authorization code", err, map[string]interface{}{
			"client_id": cli.ID,
		})
		return "", errors.NewServerError("Failed to create authorization code").
			WithState(req.State).WithRedirect(req.RedirectURI)
	}

	metrics.AuthCodesIssuedTotal.Inc()
	s.logger.Info(ctx, "authorization code issued", map[string]interface{}{
		"client_id": cli.ID,
		"scope":     scope,
	})

	callback := s.callbackURL(code.Code, req.State, req.RedirectURI)
	return s.idp.AuthorizeURL(req.Provider, callback, req.State), nil
}
