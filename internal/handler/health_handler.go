package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/admin-audit-api/internal/config"
	"github.com/noah-isme/admin-audit-api/internal/utils"
)

var processStart = time.Now()

// HealthResponse is the payload returned by the health endpoint. Uptime
// is reported so operators can spot silent restarts of the audit
// pipeline between scrapes.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	Uptime      string    `json:"uptime"`
}

// HealthCheck reports liveness for the service.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Uptime:      time.Since(processStart).Round(time.Second).String(),
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
