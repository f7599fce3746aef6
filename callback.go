package gateway

import (
	"context"
	goerrors "errors"
	"net/http"
	"time"

	"github.com/craftdeck/oauth-gateway/domain"
	"github.com/craftdeck/oauth-gateway/errors"
	"github.com/craftdeck/oauth-gateway/internal/metrics"
)

// CallbackParams carries the query parameters of the Identity Provider's
// return trip to GET /oauth/callback.
type CallbackParams struct {
	Code             string
	State            string
	RedirectURI      string
	Error            string
	ErrorDescription string
}

// Callback correlates the authenticated browser session back to the pending
// authorization code and redeems it. On success the response carries the
// token set and a minimal user profile for client completion.
func (s *Service) Callback(ctx context.Context, req *http.Request, params CallbackParams) (*TokenResponse, error) {
	// The provider declined; pass its verdict straight through.
	if params.Error != "" {
		oauthErr := &errors.OAuth2Error{
			Code:        params.Error,
			Description: params.ErrorDescription,
			State:       params.State,
			RedirectURI: params.RedirectURI,
		}
		return nil, oauthErr
	}

	if params.Code == "" || params.RedirectURI == "" {
		return nil, errors.NewInvalidRequest("code and redirect_uri are required").WithState(params.State)
	}

	code, err := s.codes.GetAuthCode(ctx, params.Code)
	if err != nil {
		if goerrors.Is(err, domain.ErrAuthCodeNotFound) {
			metrics.RedemptionsRejectedTotal.Inc()
			return nil, errors.NewInvalidGrant("Unknown authorization code").
				WithState(params.State).WithRedirect(params.RedirectURI)
		}
		return nil, errors.NewServerError("Failed to look up authorization code").
			WithState(params.State).WithRedirect(params.RedirectURI)
	}

	if code.State != params.State {
		metrics.RedemptionsRejectedTotal.Inc()
		return nil, errors.NewInvalidGrant("State does not match pending authorization").
			WithState(params.State).WithRedirect(params.RedirectURI)
	}

	if code.Expired(time.Now()) {
		metrics.RedemptionsRejectedTotal.Inc()
		return nil, errors.NewInvalidGrant("Authorization code expired").
			WithState(params.State).WithRedirect(code.RedirectURI)
	}

	user, err := s.sessions.Resolve(ctx, req)
	if err != nil {
		metrics.IdentityLookupFailuresTotal.Inc()
		s.logger.Warn(ctx, "identity resolution failed during callback", map[string]interface{}{
			"client_id": code.ClientID,
			"error":     err.Error(),
		})
	}
	if user == nil {
		return nil, errors.NewAccessDenied("User not authenticated").
			WithState(params.State).WithRedirect(code.RedirectURI)
	}

	resp, err := s.mintToken(ctx, user.ID, code.ClientID, code.Scope)
	if err != nil {
		s.logger.Error(ctx, "failed to mint tokens for callback", err, map[string]interface{}{
			"client_id": code.ClientID,
			"user_id":   user.ID,
		})
		return nil, errors.NewServerError("Failed to issue tokens").
			WithState(params.State).WithRedirect(code.RedirectURI)
	}

	// Consumption is the commit point. A concurrent redemption that got
	// here first already deleted the record, in which case this grant
	// loses, token row notwithstanding: the row expires on its own and
	// its values were never revealed.
	if _, err := s.codes.ConsumeAuthCode(ctx, code.Code, code.ClientID, code.RedirectURI); err != nil {
		metrics.RedemptionsRejectedTotal.Inc()
		if goerrors.Is(err, domain.ErrAuthCodeNotFound) {
			return nil, errors.NewInvalidGrant("Authorization code already redeemed").
				WithState(params.State).WithRedirect(code.RedirectURI)
		}
		return nil, errors.NewServerError("Failed to consume authorization code").
			WithState(params.State).WithRedirect(code.RedirectURI)
	}

	metrics.CodesRedeemedTotal.Inc()
	s.logger.Info(ctx, "authorization code redeemed via callback", map[string]interface{}{
		"client_id": code.ClientID,
		"user_id":   user.ID,
		"scope":     code.Scope,
	})

	resp.User = user
	return resp, nil
}
