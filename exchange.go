package gateway

import (
	"context"
	"crypto/subtle"
	goerrors "errors"
	"time"

	"github.com/craftdeck/oauth-gateway/domain"
	"github.com/craftdeck/oauth-gateway/errors"
	"github.com/craftdeck/oauth-gateway/internal/metrics"
)

// ExchangeRequest carries the form body of a token-exchange POST.
type ExchangeRequest struct {
	GrantType    string
	Code         string
	RedirectURI  string
	ClientID     string
	ClientSecret string
}

// ExchangeAuthorizationCode redeems a code for tokens on behalf of a client
// calling server-to-server. The code is consumed atomically before tokens
// are issued, closing the window for concurrent double redemption.
func (s *Service) ExchangeAuthorizationCode(ctx context.Context, req ExchangeRequest) (*TokenResponse, error) {
	if req.GrantType != "authorization_code" {
		return nil, errors.NewUnsupportedGrantType()
	}
	if req.Code == "" || req.RedirectURI == "" || req.ClientID == "" {
		return nil, errors.NewInvalidRequest("code, redirect_uri and client_id are required")
	}

	cli, err := s.clients.Resolve(ctx, req.ClientID)
	if err != nil {
		return nil, errors.NewInvalidClient("Unknown client")
	}

	if cli.Confidential() {
		if subtle.ConstantTimeCompare([]byte(cli.Secret), []byte(req.ClientSecret)) != 1 {
			return nil, errors.NewInvalidClient("Invalid client credentials")
		}
	}

	// One atomic conditional delete: the filter binds the code to the
	// client_id and redirect_uri recorded at issuance, so substitution
	// attempts and replays both surface as a plain miss.
	code, err := s.codes.ConsumeAuthCode(ctx, req.Code, req.ClientID, req.RedirectURI)
	if err != nil {
		metrics.RedemptionsRejectedTotal.Inc()
		if goerrors.Is(err, domain.ErrAuthCodeNotFound) {
			return nil, errors.NewInvalidGrant("Invalid authorization code")
		}
		s.logger.Error(ctx, "failed to consume authorization code", err, map[string]interface{}{
			"client_id": req.ClientID,
		})
		return nil, errors.NewServerError("Failed to redeem authorization code")
	}

	if code.Expired(time.Now()) {
		metrics.RedemptionsRejectedTotal.Inc()
		return nil, errors.NewInvalidGrant("Authorization code expired")
	}

	resp, err := s.mintToken(ctx, code.UserID, code.ClientID, code.Scope)
	if err != nil {
		s.logger.Error(ctx, "failed to mint tokens for exchange", err, map[string]interface{}{
			"client_id": code.ClientID,
		})
		return nil, errors.NewServerError("Failed to issue tokens")
	}

	metrics.CodesRedeemedTotal.Inc()
	s.logger.Info(ctx, "authorization code redeemed via token exchange", map[string]interface{}{
		"client_id": code.ClientID,
		"scope":     code.Scope,
	})

	return resp, nil
}
