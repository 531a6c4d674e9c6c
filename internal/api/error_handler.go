package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/greenloop/waste-platform/internal/api/handler"
	"github.com/greenloop/waste-platform/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain
// errors to status codes and renders {"message": "..."}. Unexpected errors
// are logged and never leak their cause to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, middleware rejections).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			log.Debug().Err(he.Internal).Str("path", c.Path()).Msg("request rejected")
		}
		return he.Code, errorResponse{Message: fmt.Sprintf("%v", he.Message)}
	}

	var fe *handler.FieldErrors
	if errors.As(err, &fe) {
		return http.StatusBadRequest, errorResponse{Message: "Validation failed", Errors: fe.Fields}
	}

	switch {
	case errors.Is(err, domain.ErrStatsLimit):
		return http.StatusBadRequest, errorResponse{Message: "Stats counters are at their limit"}
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, errorResponse{Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest, errorResponse{Message: "Invalid credentials"}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusBadRequest, errorResponse{Message: "Email already registered"}
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, errorResponse{Message: "Token expired"}
	case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, errorResponse{Message: "Token is not valid"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Message: "Forbidden"}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Message: "User not found"}
	case errors.Is(err, domain.ErrModuleExists):
		return http.StatusConflict, errorResponse{Message: "Module slug already exists"}
	case errors.Is(err, domain.ErrStatsConflict):
		return http.StatusConflict, errorResponse{Message: "Stats were modified concurrently, reload and retry"}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Message: "Server error"}
}
