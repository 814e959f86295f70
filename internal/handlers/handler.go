package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/sarenasr/Rappi-Dashboard/internal/logging"
	"github.com/sarenasr/Rappi-Dashboard/internal/models"
	"github.com/sarenasr/Rappi-Dashboard/internal/services"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Handler contains all HTTP handlers
type Handler struct {
	logger    *logging.Logger
	dataset   *services.DatasetService
	analytics *services.AnalyticsService
}

// New creates a new handler instance
func New(logger *logging.Logger, dataset *services.DatasetService, analytics *services.AnalyticsService) *Handler {
	return &Handler{
		logger:    logger,
		dataset:   dataset,
		analytics: analytics,
	}
}

// sendError renders err as an ErrorResponse
func (h *Handler) sendError(c *fiber.Ctx, err error) error {
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		status := svcErr.HTTPStatus()
		if status >= fiber.StatusInternalServerError {
			h.logger.Error("Request failed",
				"path", c.Path(),
				"code", svcErr.Code,
				"error", svcErr.Message)
		}
		return c.Status(status).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    svcErr.Code,
				Message: svcErr.Message,
				Path:    c.Path(),
				Details: svcErr.Details,
			},
		})
	}

	h.logger.Error("Request failed", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    services.CodeViewFailed,
			Message: err.Error(),
			Path:    c.Path(),
		},
	})
}
