package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/residential-history/internal/usecase/dto"
)

// HealthChecker reports the state of external dependencies
type HealthChecker interface {
	Health(ctx context.Context) map[string]string
}

// HealthHandler - проверка состояния сервиса
type HealthHandler struct {
	checker HealthChecker
}

func NewHealthHandler(checker HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// Health godoc
// @Summary Health check
// @Description Состояние сервиса и зависимостей (postgres, redis). Отключённая зависимость не делает сервис нездоровым.
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /api/v1/health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	resp := dto.HealthResponse{
		Status: "healthy",
		Time:   time.Now(),
	}

	if h.checker != nil {
		resp.Dependencies = h.checker.Health(c.Context())
		for _, state := range resp.Dependencies {
			if state == "down" {
				resp.Status = "degraded"
				return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
			}
		}
	}

	return c.JSON(resp)
}
