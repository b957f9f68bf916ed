package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/http/handlers"
	"github.com/spec-kit/issue-tracker/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Issues         *handlers.IssuesHandler
	AuthMiddleware *auth.AuthMiddleware
	AuthLimiter    *RateLimiter
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health", cfg.Health.Health)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("/api")

	users := api.Group("/users")
	users.Post("/register", cfg.AuthLimiter.Handle, cfg.Users.Register)
	users.Post("/login", cfg.AuthLimiter.Handle, cfg.Users.Login)
	users.Get("/me", cfg.AuthMiddleware.Handle, cfg.Users.Me)
	users.Put("/me", cfg.AuthMiddleware.Handle, cfg.Users.UpdateMe)

	issues := api.Group("/issues", cfg.AuthMiddleware.Handle)
	issues.Post("/", cfg.Issues.CreateIssue)
	issues.Get("/", cfg.Issues.ListIssues)
	issues.Get("/stats", cfg.Issues.Stats)
	issues.Get("/:id", cfg.Issues.GetIssue)
	issues.Put("/:id", cfg.Issues.UpdateIssue)
	issues.Delete("/:id", cfg.Issues.DeleteIssue)
}
