package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const healthTimeout = 2 * time.Second

// HealthHandler reports whether the store is reachable.
type HealthHandler struct {
	ping func(ctx context.Context) error
	log  logrus.FieldLogger
}

func NewHealthHandler(ping func(ctx context.Context) error, log logrus.FieldLogger) *HealthHandler {
	return &HealthHandler{ping: ping, log: log}
}

// Health handles GET /health
// @Summary Health check
// @Tags health
// @Success 200 "Store reachable"
// @Failure 503 "Store unreachable"
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	if err := h.ping(ctx); err != nil {
		h.log.WithError(err).Warn("health check failed")
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}
	return c.SendStatus(fiber.StatusOK)
}
