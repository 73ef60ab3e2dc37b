package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session"

// SessionStore resolves session tokens to the username they belong to.
type SessionStore interface {
	SessionUsername(ctx context.Context, token string) (string, error)
}

// RequireAuth returns a middleware that verifies the session cookie against
// the session store and redirects unauthenticated requests to the login page.
func RequireAuth(sessions SessionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return c.Redirect(http.StatusTemporaryRedirect, "/login")
			}

			username, err := sessions.SessionUsername(c.Request().Context(), cookie.Value)
			if err != nil {
				// Stale session, clear cookie and redirect
				clearCookie := &http.Cookie{
					Name:     SessionCookieName,
					Value:    "",
					MaxAge:   -1,
					HttpOnly: true,
					Path:     "/",
				}
				c.SetCookie(clearCookie)
				return c.Redirect(http.StatusTemporaryRedirect, "/login")
			}

			c.Set("username", username)
			return next(c)
		}
	}
}
