package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/greenloop/waste-platform/internal/api/middleware"
	"github.com/greenloop/waste-platform/internal/core/domain"
	"github.com/greenloop/waste-platform/internal/core/ports"
)

// UserHandler serves profile reads and gamification updates.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Get handles GET /api/users/:id.
//
// @Summary      Get a user profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userEnvelope
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.service.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userEnvelope{User: toUserResponse(user)})
}

// UpdateStats handles PUT /api/users/:id/stats.
//
// @Summary      Merge gamification stats
// @Description  Accepts greenCredits, level, points and modulesCompleted. Counters never decrease.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "User id"
// @Param        body  body      updateStatsRequest  true  "Partial stats"
// @Success      200   {object}  userEnvelope
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/users/{id}/stats [put]
func (h *UserHandler) UpdateStats(c echo.Context) error {
	var req updateStatsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	patch, err := decodeStatsPatch(req.Stats)
	if err != nil {
		return err
	}

	user, err := h.service.UpdateStats(c.Request().Context(), actor(c), c.Param("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userEnvelope{User: toUserResponse(user)})
}

// CompleteModule handles POST /api/users/:id/complete-module.
//
// @Summary      Mark a module completed
// @Description  Credits points and green credits once per module; repeats are no-ops.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "User id"
// @Param        body  body      completeModuleRequest  true  "Module and points"
// @Success      200   {object}  userEnvelope
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/users/{id}/complete-module [post]
func (h *UserHandler) CompleteModule(c echo.Context) error {
	var req completeModuleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.CompleteModule(c.Request().Context(), actor(c), ports.CompleteModuleInput{
		TargetID:   c.Param("id"),
		ModuleSlug: req.ModuleSlug,
		Points:     req.Points,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userEnvelope{User: toUserResponse(user)})
}

// Activity handles GET /api/users/:id/activity.
//
// @Summary      Recent stats activity
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true   "User id"
// @Param        limit  query     int     false  "Max entries (1-100, default 20)"
// @Success      200    {object}  activityEnvelope
// @Failure      403    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /api/users/{id}/activity [get]
func (h *UserHandler) Activity(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return fmt.Errorf("%w: limit must be a positive integer", domain.ErrValidation)
		}
		limit = n
	}

	items, err := h.service.ListActivity(c.Request().Context(), actor(c), c.Param("id"), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, activityEnvelope{Activity: toActivityResponse(items)})
}

func actor(c echo.Context) *domain.User {
	if s := middleware.SessionFrom(c); s != nil {
		return s.User
	}
	return nil
}

func decodeStatsPatch(raw json.RawMessage) (ports.StatsPatch, error) {
	var body statsPatchRequest
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		return ports.StatsPatch{}, fmt.Errorf("%w: stats: %v", domain.ErrValidation, err)
	}
	return ports.StatsPatch{
		GreenCredits:     body.GreenCredits,
		Level:            body.Level,
		Points:           body.Points,
		ModulesCompleted: body.ModulesCompleted,
	}, nil
}
