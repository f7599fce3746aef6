package echo

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/craftdeck/oauth-gateway/errors"
)

// respondError writes an OAuth error either as a redirect carrying
// error/error_description/state, when a validated redirect target is known,
// or as a JSON body otherwise. Unrecognized error values are masked as
// server_error so internals never reach the wire.
func (a *OAuthAPI) respondError(c echo.Context, err error) error {
	oauthErr, ok := err.(*errors.OAuth2Error)
	if !ok {
		a.logger.Error(c.Request().Context(), "unexpected error reached the responder", err)
		oauthErr = errors.NewServerError("Internal error")
	}

	if oauthErr.RedirectURI != "" {
		return c.Redirect(http.StatusFound, errorRedirectURL(oauthErr))
	}

	return c.JSON(statusFor(oauthErr.Code), oauthErr)
}

// errorRedirectURL appends error, error_description, and state to the
// client's redirect target, preserving any query it already carries.
func errorRedirectURL(oauthErr *errors.OAuth2Error) string {
	target, err := url.Parse(oauthErr.RedirectURI)
	if err != nil {
		// The URI was validated against the client registration before it
		// was ever marked safe, so this is unreachable in practice.
		return oauthErr.RedirectURI
	}

	q := target.Query()
	q.Set("error", oauthErr.Code)
	if oauthErr.Description != "" {
		q.Set("error_description", oauthErr.Description)
	}
	if oauthErr.State != "" {
		q.Set("state", oauthErr.State)
	}
	target.RawQuery = q.Encode()

	return target.String()
}

func statusFor(code string) int {
	switch code {
	case errors.ServerError:
		return http.StatusInternalServerError
	case errors.MethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusBadRequest
	}
}

// corsMiddleware applies the shared CORS headers to every response and
// short-circuits preflight requests with a bare 200, independent of any
// business logic.
func corsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Response().Header()
		h.Set(echo.HeaderAccessControlAllowOrigin, "*")
		h.Set(echo.HeaderAccessControlAllowMethods, "GET, POST, OPTIONS")
		h.Set(echo.HeaderAccessControlAllowHeaders, "Authorization, Content-Type")

		if c.Request().Method == http.MethodOptions {
			return c.NoContent(http.StatusOK)
		}
		return next(c)
	}
}

// recoverOAuth converts panics into OAuth-shaped server_error responses
// instead of raw stack traces.
func (a *OAuthAPI) recoverOAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		defer func() {
			if r := recover(); r != nil {
				a.logger.Error(c.Request().Context(), "panic in handler", nil, map[string]interface{}{
					"panic": r,
					"path":  c.Path(),
				})
				_ = c.JSON(http.StatusInternalServerError, errors.NewServerError("Internal error"))
			}
		}()
		return next(c)
	}
}
