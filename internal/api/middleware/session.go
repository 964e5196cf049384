package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SessionTokenKey is the echo context key holding the raw session token.
const SessionTokenKey = "session_token"

const (
	minSessionTokenLen = 10
	maxSessionTokenLen = 100
)

// SessionCookie rejects requests without a plausibly shaped session cookie
// and injects its value into the context. The session itself is validated
// later, inside the request scope.
func SessionCookie(cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if n := len(cookie.Value); n < minSessionTokenLen || n > maxSessionTokenLen {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
			}

			c.Set(SessionTokenKey, cookie.Value)
			return next(c)
		}
	}
}
