package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/greenloop/waste-platform/internal/api/middleware"
	"github.com/greenloop/waste-platform/internal/core/domain"
	"github.com/greenloop/waste-platform/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]any
// @Failure      500   {object}  map[string]string
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Location: req.Location,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{User: toUserResponse(res.User), Token: res.Token})
}

// Login authenticates a user and returns a JWT.
//
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]any
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{User: toUserResponse(res.User), Token: res.Token})
}

// Me returns the caller's profile and the dashboard route for their role.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	session := middleware.SessionFrom(c)
	if session == nil || session.User == nil {
		return domain.ErrUnauthenticated
	}

	return c.JSON(http.StatusOK, meResponse{
		User:      toUserResponse(session.User),
		Dashboard: session.Role().Dashboard(),
	})
}
