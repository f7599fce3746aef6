// Package echo exposes the gateway over HTTP using the echo framework.
package echo

import (
	"net/http"

	"github.com/labstack/echo/v4"

	gateway "github.com/craftdeck/oauth-gateway"
	"github.com/craftdeck/oauth-gateway/log"
)

// OAuthAPI holds the gateway service behind the HTTP handlers.
type OAuthAPI struct {
	svc    *gateway.Service
	logger log.Logger
}

// NewOAuthAPI creates the HTTP API over a gateway service.
func NewOAuthAPI(svc *gateway.Service, logger log.Logger) *OAuthAPI {
	return &OAuthAPI{svc: svc, logger: logger}
}

// RegisterRoutes registers the OAuth routes. The authorize path dispatches
// on method: GET starts the flow, POST is the token exchange. CORS
// preflights get a bare 200 on every route.
func (a *OAuthAPI) RegisterRoutes(e *echo.Echo) {
	e.Use(corsMiddleware)
	e.Use(a.recoverOAuth)

	e.GET("/oauth/authorize", a.AuthorizeHandler)
	e.POST("/oauth/authorize", a.TokenHandler)
	e.POST("/oauth/token", a.TokenHandler)
	e.GET("/oauth/callback", a.CallbackHandler)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
}

// AuthorizeHandler starts the authorization-code flow: it validates the
// request, stores a pending code, and redirects the browser to the Identity
// Provider.
func (a *OAuthAPI) AuthorizeHandler(c echo.Context) error {
	req := gateway.AuthorizeRequest{
		ClientID:     c.QueryParam("client_id"),
		RedirectURI:  c.QueryParam("redirect_uri"),
		ResponseType: c.QueryParam("response_type"),
		Scope:        c.QueryParam("scope"),
		State:        c.QueryParam("state"),
		Provider:     c.QueryParam("provider"),
	}

	location, err := a.svc.Authorize(c.Request().Context(), req)
	if err != nil {
		return a.respondError(c, err)
	}

	return c.Redirect(http.StatusFound, location)
}

// TokenHandler is the token-exchange endpoint for server-to-server clients.
func (a *OAuthAPI) TokenHandler(c echo.Context) error {
	req := gateway.ExchangeRequest{
		GrantType:    c.FormValue("grant_type"),
		Code:         c.FormValue("code"),
		RedirectURI:  c.FormValue("redirect_uri"),
		ClientID:     c.FormValue("client_id"),
		ClientSecret: c.FormValue("client_secret"),
	}

	resp, err := a.svc.ExchangeAuthorizationCode(c.Request().Context(), req)
	if err != nil {
		return a.respondError(c, err)
	}

	c.Response().Header().Set("Cache-Control", "no-store")
	c.Response().Header().Set("Pragma", "no-cache")
	return c.JSON(http.StatusOK, resp)
}

// CallbackHandler receives the Identity Provider's return trip, correlates
// the authenticated session with the pending code, and returns the token
// set.
func (a *OAuthAPI) CallbackHandler(c echo.Context) error {
	params := gateway.CallbackParams{
		Code:             c.QueryParam("code"),
		State:            c.QueryParam("state"),
		RedirectURI:      c.QueryParam("redirect_uri"),
		Error:            c.QueryParam("error"),
		ErrorDescription: c.QueryParam("error_description"),
	}

	resp, err := a.svc.Callback(c.Request().Context(), c.Request(), params)
	if err != nil {
		return a.respondError(c, err)
	}

	c.Response().Header().Set("Cache-Control", "no-store")
	return c.JSON(http.StatusOK, resp)
}
