package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/sarenasr/Rappi-Dashboard/internal/models"
	"github.com/sarenasr/Rappi-Dashboard/internal/utils"
)

// Reload re-reads the dataset and announces it to the other instances
// POST /admin/reload
func (h *Handler) Reload(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), utils.ReloadTimeout)
	defer cancel()

	if _, err := h.dataset.Reload(ctx); err != nil {
		return h.sendError(c, err)
	}

	dataset, err := h.analytics.Dataset()
	if err != nil {
		return h.sendError(c, err)
	}
	h.logger.Info("Dataset reloaded on request",
		"generation", dataset.Generation,
		"samples", dataset.Samples,
		"ip", c.IP())

	return c.JSON(models.ReloadResponse{
		Success: true,
		Dataset: dataset,
	})
}

// Dataset describes the loaded dataset
// GET /v1/dataset
func (h *Handler) Dataset(c *fiber.Ctx) error {
	dataset, err := h.analytics.Dataset()
	if err != nil {
		return h.sendError(c, err)
	}
	return c.JSON(dataset)
}
