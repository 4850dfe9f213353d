package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gp-maquinas/maintenance-service/internal/persistence"
)

// HealthHandler exposes liveness and readiness probes.
type HealthHandler struct {
	pg    *persistence.Postgres
	redis *persistence.Redis
}

// NewHealthHandler constructs handler.
func NewHealthHandler(pg *persistence.Postgres, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{pg: pg, redis: redis}
}

// Live handles GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready handles GET /health/ready. Redis is best-effort and reported but
// never fails readiness; postgres does.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	status := fiber.Map{"status": "ok", "postgres": "ok", "redis": "ok"}
	code := http.StatusOK

	if h.pg == nil || h.pg.Pool == nil {
		status["postgres"] = "not configured"
		status["status"] = "degraded"
		code = http.StatusServiceUnavailable
	} else if err := h.pg.Pool.Ping(ctx); err != nil {
		status["postgres"] = "unreachable"
		status["status"] = "degraded"
		code = http.StatusServiceUnavailable
	}

	if h.redis == nil || h.redis.Ping(ctx) != nil {
		status["redis"] = "unreachable"
	}

	return c.Status(code).JSON(status)
}
