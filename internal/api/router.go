package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/itdesk/helpdesk-api/docs"
	"github.com/itdesk/helpdesk-api/internal/api/handler"
	"github.com/itdesk/helpdesk-api/internal/api/middleware"
	"github.com/itdesk/helpdesk-api/internal/core/policy"
	"github.com/itdesk/helpdesk-api/internal/core/ports"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Auth   ports.AuthService
	Users  ports.UserService
	Tokens ports.TokenValidator
	// Principals resolves token subjects to users on every request.
	Principals ports.UserRepository
	Readiness  map[string]handler.Pinger
	Log        zerolog.Logger

	// Registry receives the echo request metrics and is served on /metrics.
	// Nil means the prometheus default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	// --- Metrics ---
	promMW := echoprometheus.MiddlewareConfig{Subsystem: "helpdesk"}
	promHandler := echoprometheus.HandlerConfig{}
	if d.Registry != nil {
		promMW.Registerer = d.Registry
		promHandler.Gatherer = d.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(promMW))
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(promHandler))

	// --- API docs ---
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Health probes (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(d.Readiness).Readiness)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth)
	e.POST("/token", authHandler.Token)
	e.POST("/register", authHandler.Register)

	// --- Protected routes ---
	userHandler := handler.NewUserHandler(d.Users)
	requireAuth := middleware.Auth(d.Tokens, d.Principals)
	managers := middleware.Require(policy.Managers)
	admins := middleware.Require(policy.AdminsOnly)

	users := e.Group("/users", requireAuth, middleware.Require(policy.Authenticated))
	users.GET("/me", userHandler.Me)
	users.GET("", userHandler.List, managers)
	users.POST("", userHandler.Create, managers)
	users.GET("/:id", userHandler.Get, managers)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete, admins)

	e.GET("/audit", userHandler.Audit, requireAuth, admins)

	return e
}
