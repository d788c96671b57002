package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/ratehub/store_ratings/internal/models"
	"github.com/ratehub/store_ratings/internal/session"
)

func okHandler(c echo.Context) error { return c.NoContent(http.StatusOK) }

func run(t *testing.T, mw *Middleware, header string, roles []string) (int, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(HeaderUserID, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := okHandler
	if roles != nil {
		h = mw.RequireRoles(roles...)(h)
	}
	err := mw.RequireSession(h)(c)
	return rec.Code, err
}

func TestRequireSessionMissingHeader(t *testing.T) {
	mw := &Middleware{Sessions: session.NewStore()}

	_, err := run(t, mw, "", nil)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireSessionUnknownUser(t *testing.T) {
	mw := &Middleware{Sessions: session.NewStore()}

	for _, header := range []string{"42", "not-a-number"} {
		_, err := run(t, mw, header, nil)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		require.Equal(t, http.StatusUnauthorized, he.Code)
	}
}

func TestRequireSessionLive(t *testing.T) {
	sessions := session.NewStore()
	sessions.Create(session.Session{UserID: 7, Role: models.RoleUser, Email: "u@example.com"})
	mw := &Middleware{Sessions: sessions}

	code, err := run(t, mw, "7", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, code)
}

func TestRequireSessionAfterLogout(t *testing.T) {
	sessions := session.NewStore()
	sessions.Create(session.Session{UserID: 7, Role: models.RoleUser, Email: "u@example.com"})
	sessions.Delete(7)
	mw := &Middleware{Sessions: sessions}

	_, err := run(t, mw, "7", nil)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireRoles(t *testing.T) {
	sessions := session.NewStore()
	sessions.Create(session.Session{UserID: 7, Role: models.RoleUser, Email: "u@example.com"})
	mw := &Middleware{Sessions: sessions}

	// allowed role passes through
	code, err := run(t, mw, "7", []string{models.RoleAdmin, models.RoleUser})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, code)

	// authentication succeeded but the role is outside the allowed set
	_, err = run(t, mw, "7", []string{models.RoleAdmin})
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusForbidden, he.Code)
}
