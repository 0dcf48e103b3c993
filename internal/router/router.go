package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/admin-audit-api/internal/config"
	"github.com/noah-isme/admin-audit-api/internal/handler"
	"github.com/noah-isme/admin-audit-api/internal/middleware"
	"github.com/noah-isme/admin-audit-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler     *handler.AuthHandler
	UserHandler     *handler.UserHandler
	ActivityHandler *handler.ActivityHandler
	JWTMiddleware   fiber.Handler
	TrackAccess     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.TrackAccess != nil {
		app.Use(deps.TrackAccess)
	}

	// Authentication
	if deps.AuthHandler != nil {
		auth := app.Group("/api/auth", middleware.RateLimit("auth", 20, time.Minute))
		protected := auth.Group("", jwtMiddleware)
		deps.AuthHandler.Register(auth, protected)
	}

	// Admin panel: user management and audit viewer
	admin := app.Group("/api/admin", jwtMiddleware, middleware.RequireRole("admin"))
	if deps.UserHandler != nil {
		deps.UserHandler.Register(admin.Group("/users"))
	}
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(admin.Group("/activities"))
	}
}
