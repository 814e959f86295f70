package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sarenasr/Rappi-Dashboard/internal/models"
)

// Health handles health check requests. The service stays healthy before the
// first load; Loaded tells callers whether views can be served yet.
func (h *Handler) Health(c *fiber.Ctx) error {
	resp := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   Version,
	}
	if h.dataset != nil {
		if snap, err := h.dataset.Current(); err == nil {
			resp.Loaded = true
			resp.Generation = snap.Generation
		}
	}
	return c.JSON(resp)
}

// NotFound handles 404 errors
func (h *Handler) NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "NOT_FOUND",
			Message: "Route not found",
			Path:    c.Path(),
		},
	})
}
