package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/admin-audit-api/internal/events"
	"github.com/noah-isme/admin-audit-api/internal/service"
)

// skipPrefixes lists paths excluded from access tracking: internal
// assets, the scrape and health endpoints, and the authentication pages
// already covered by dedicated audit bridges.
var skipPrefixes = []string{
	"/assets/",
	"/static/",
	"/favicon.ico",
	"/metrics",
	"/api/v1/health",
	"/api/auth/",
}

// TrackAccess records an activity entry for every tracked request after
// the response is computed. Audit failures never surface to the client:
// the recorder swallows its own errors and this middleware guards the
// rest.
func TrackAccess(recorder *service.ActivityLogger, logger zerolog.Logger) fiber.Handler {
	trackLogger := logger.With().Str("component", "track_access").Logger()

	return func(c *fiber.Ctx) error {
		err := c.Next()

		if shouldSkipTracking(c.Path()) {
			return err
		}

		actor := ActorFromContext(c)
		request := service.AccessRequest{
			Method:    c.Method(),
			Path:      c.Path(),
			FullURL:   c.BaseURL() + c.OriginalURL(),
			Query:     c.Queries(),
			Referrer:  c.Get(fiber.HeaderReferer),
			IP:        c.IP(),
			UserAgent: c.Get(fiber.HeaderUserAgent),
		}
		status := c.Response().StatusCode()

		func() {
			defer func() {
				if r := recover(); r != nil {
					trackLogger.Error().Interface("panic", r).Msg("access tracking panicked")
				}
			}()
			recorder.LogAccess(c.UserContext(), actor, request, status)
		}()

		return err
	}
}

func shouldSkipTracking(path string) bool {
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// ActorFromContext builds the current actor from the JWT claims the
// auth middleware stored on the request, or nil for anonymous traffic.
func ActorFromContext(c *fiber.Ctx) *events.Actor {
	id, ok := c.Locals("user_id").(uint)
	if !ok || id == 0 {
		return nil
	}
	actor := events.Actor{ID: id}
	if name, ok := c.Locals("user_name").(string); ok {
		actor.Name = name
	}
	if email, ok := c.Locals("user_email").(string); ok {
		actor.Email = email
	}
	return &actor
}

// RequestMetaFromContext extracts the explicit request metadata passed
// into services and events.
func RequestMetaFromContext(c *fiber.Ctx) events.RequestMeta {
	return events.RequestMeta{
		IP:        c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}
