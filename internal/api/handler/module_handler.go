package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/greenloop/waste-platform/internal/core/ports"
)

// ModuleHandler serves the training catalog.
type ModuleHandler struct {
	service ports.ModuleService
}

func NewModuleHandler(service ports.ModuleService) *ModuleHandler {
	return &ModuleHandler{service: service}
}

// List handles GET /api/modules.
//
// @Summary      List published modules
// @Tags         modules
// @Produce      json
// @Success      200  {object}  modulesEnvelope
// @Failure      500  {object}  map[string]string
// @Router       /api/modules [get]
func (h *ModuleHandler) List(c echo.Context) error {
	modules, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, modulesEnvelope{Modules: modules})
}

// Create handles POST /api/modules.
//
// @Summary      Create a module
// @Tags         modules
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createModuleRequest  true  "Module definition"
// @Success      201   {object}  moduleEnvelope
// @Failure      400   {object}  map[string]any
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/modules [post]
func (h *ModuleHandler) Create(c echo.Context) error {
	var req createModuleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	m, err := h.service.Create(c.Request().Context(), ports.CreateModuleInput{
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		Difficulty:  req.Difficulty,
		Topics:      req.Topics,
		Points:      req.Points,
		Path:        req.Path,
		Published:   req.Published,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, moduleEnvelope{Module: *m})
}
