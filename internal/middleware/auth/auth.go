package auth

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ratehub/store_ratings/internal/session"
)

// HeaderUserID carries the caller's claimed identity. The value must match
// a live session entry or the request is rejected.
const HeaderUserID = "X-User-ID"

const ContextSessionKey = "session"

type Middleware struct {
	Sessions *session.Store
}

// RequireSession resolves the identity header against the session store and
// stashes the session on the echo context. Covers "never logged in",
// "logged out" and "server restarted since login" alike.
func (m *Middleware) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := c.Request().Header.Get(HeaderUserID)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "access denied")
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "access denied")
		}
		sess, ok := m.Sessions.Get(uint(id))
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "access denied")
		}
		c.Set(ContextSessionKey, sess)
		return next(c)
	}
}

// RequireRoles rejects callers whose session role is outside the allowed
// set. Must run after RequireSession.
func (m *Middleware) RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, ok := c.Get(ContextSessionKey).(session.Session)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "access denied")
			}
			for _, role := range roles {
				if sess.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "access denied")
		}
	}
}

// CurrentSession fetches the session stored by RequireSession.
func CurrentSession(c echo.Context) (session.Session, bool) {
	sess, ok := c.Get(ContextSessionKey).(session.Session)
	return sess, ok
}
