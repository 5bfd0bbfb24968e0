package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/api/http/handlers"
	"github.com/spec-kit/account-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	BasePath       string
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Metrics        *handlers.MetricsHandler // nil leaves /metrics unmounted
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	api := app.Group(cfg.BasePath)

	api.Get("/live", cfg.Health.Live)
	api.Get("/ready", cfg.Health.Ready)
	api.Get("/health", cfg.Health.Health)
	if cfg.Metrics != nil {
		api.Get("/metrics", cfg.Metrics.Get)
	}

	api.Post("/auth/token", cfg.Auth.Token)

	users := api.Group("/users")
	users.Post("", cfg.Users.Register)
	users.Get("/me", cfg.AuthMiddleware.Handle, cfg.Users.Me)
}
