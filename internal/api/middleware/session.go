package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/greenloop/waste-platform/internal/core/domain"
)

const sessionKey = "session"

// SetSession attaches the authenticated session to the request context.
func SetSession(c echo.Context, s *domain.Session) {
	c.Set(sessionKey, s)
}

// SessionFrom returns the session stored by Auth, or nil on public routes.
func SessionFrom(c echo.Context) *domain.Session {
	s, _ := c.Get(sessionKey).(*domain.Session)
	return s
}
