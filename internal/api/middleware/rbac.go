package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/greenloop/waste-platform/internal/core/domain"
)

// RBAC admits the request only when the session role is in allowedRoles.
// It must run after Auth.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session := SessionFrom(c)
			if session == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "No token, authorization denied")
			}
			if _, ok := allowed[session.Role()]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "Forbidden: insufficient permissions")
			}
			return next(c)
		}
	}
}
