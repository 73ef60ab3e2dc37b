package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessionStore struct {
	usernames map[string]string
}

func (f *fakeSessionStore) SessionUsername(_ context.Context, token string) (string, error) {
	if username, ok := f.usernames[token]; ok {
		return username, nil
	}
	return "", errors.New("session not found")
}

func runAuth(t *testing.T, store SessionStore, cookie *http.Cookie) (*httptest.ResponseRecorder, string) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/members", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seenUsername string
	handler := RequireAuth(store)(func(c echo.Context) error {
		seenUsername, _ = c.Get("username").(string)
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(c))
	return rec, seenUsername
}

func TestRequireAuthNoCookie(t *testing.T) {
	rec, _ := runAuth(t, &fakeSessionStore{}, nil)

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRequireAuthInvalidSession(t *testing.T) {
	cookie := &http.Cookie{Name: SessionCookieName, Value: "stale-token"}
	rec, _ := runAuth(t, &fakeSessionStore{}, cookie)

	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// The stale cookie must be cleared.
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestRequireAuthValidSession(t *testing.T) {
	store := &fakeSessionStore{usernames: map[string]string{"good-token": "kadek"}}
	cookie := &http.Cookie{Name: SessionCookieName, Value: "good-token"}

	rec, username := runAuth(t, store, cookie)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "kadek", username)
}
