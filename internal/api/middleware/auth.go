package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/greenloop/waste-platform/internal/core/domain"
)

// SessionResolver turns a bearer token into a session.
type SessionResolver interface {
	Authenticate(ctx context.Context, token string) (*domain.Session, error)
}

// Auth verifies the bearer token and stores the resulting session.
func Auth(resolver SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "No token, authorization denied")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header")
			}

			session, err := resolver.Authenticate(c.Request().Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrTokenExpired):
					return echo.NewHTTPError(http.StatusUnauthorized, "Token expired")
				case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrUnauthenticated):
					return echo.NewHTTPError(http.StatusUnauthorized, "Token is not valid")
				}
				return err
			}

			SetSession(c, session)
			return next(c)
		}
	}
}
