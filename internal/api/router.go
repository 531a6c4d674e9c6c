package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/greenloop/waste-platform/docs" // registers the OpenAPI document
	"github.com/greenloop/waste-platform/internal/api/handler"
	"github.com/greenloop/waste-platform/internal/api/middleware"
	"github.com/greenloop/waste-platform/internal/core/domain"
	"github.com/greenloop/waste-platform/internal/core/ports"
)

// Deps carries everything the HTTP layer needs. Services are built by the
// caller so the router stays free of storage concerns.
type Deps struct {
	Auth    ports.AuthService
	Users   ports.UserService
	Modules ports.ModuleService

	// Health maps dependency names to readiness checks.
	Health map[string]handler.Pinger

	Log         zerolog.Logger
	CORSOrigins []string

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: origins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: d.Registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	userHandler := handler.NewUserHandler(d.Users)
	moduleHandler := handler.NewModuleHandler(d.Modules)
	healthHandler := handler.NewHealthHandler(d.Health)
	requireAuth := middleware.Auth(d.Auth)

	// --- Operational routes (no auth required) ---
	e.GET("/ping", healthHandler.Ping)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	api.GET("/health", healthHandler.Liveness)
	api.GET("/health/ready", healthHandler.Readiness)

	// --- Auth routes ---
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authHandler.Me, requireAuth)

	// --- User routes ---
	users := api.Group("/users", requireAuth)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id/stats", userHandler.UpdateStats)
	users.POST("/:id/complete-module", userHandler.CompleteModule)
	users.GET("/:id/activity", userHandler.Activity)

	// --- Module routes ---
	modules := api.Group("/modules")
	modules.GET("", moduleHandler.List)
	modules.POST("", moduleHandler.Create, requireAuth, middleware.RBAC(domain.RoleChampion, domain.RoleGovernment))

	return e
}
