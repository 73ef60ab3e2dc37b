package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"brotot_gym/internal/config"
	"brotot_gym/internal/middleware"
)

// sessionManager is the slice of the session store the auth gate needs.
type sessionManager interface {
	CreateSession(ctx context.Context, username string, ttl time.Duration) (string, error)
	DeleteSession(ctx context.Context, token string) error
}

// AuthHandler gates the app behind the single shared credential pair.
type AuthHandler struct {
	auth     config.AuthConfig
	secure   bool
	sessions sessionManager
	log      zerolog.Logger
}

func NewAuthHandler(cfg *config.Config, sessions sessionManager, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     cfg.Auth,
		secure:   !cfg.App.IsDev(),
		sessions: sessions,
		log:      log,
	}
}

// LoginPage renders the login form.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", map[string]interface{}{
		"Title":    "Log In",
		"Username": "",
	})
}

// HandleLogin checks the submitted credentials and opens a session.
func (h *AuthHandler) HandleLogin(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	if !h.checkCredentials(username, password) {
		h.log.Warn().Str("username", username).Msg("failed login attempt")
		return c.Render(http.StatusUnauthorized, "login.html", map[string]interface{}{
			"Title":    "Log In",
			"Error":    "Incorrect username or password",
			"Username": username,
		})
	}

	token, err := h.sessions.CreateSession(c.Request().Context(), username, h.auth.SessionTTL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create session")
	}

	cookie := &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		MaxAge:   int(h.auth.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	}
	c.SetCookie(cookie)

	h.log.Info().Str("username", username).Msg("user logged in")
	return c.Redirect(http.StatusSeeOther, "/members")
}

// HandleLogout drops the session and clears the cookie.
func (h *AuthHandler) HandleLogout(c echo.Context) error {
	if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		_ = h.sessions.DeleteSession(c.Request().Context(), cookie.Value)
	}

	cookie := &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Path:     "/",
	}
	c.SetCookie(cookie)

	return c.Redirect(http.StatusSeeOther, "/login")
}

func (h *AuthHandler) checkCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(h.auth.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(h.auth.Password)) == 1
	return userOK && passOK
}
