package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/sarenasr/Rappi-Dashboard/internal/logging"
	"github.com/sarenasr/Rappi-Dashboard/internal/models"
	"github.com/sarenasr/Rappi-Dashboard/internal/services"
)

// ErrorHandler renders errors that reach fiber as an ErrorResponse. Service
// errors keep their code; fiber errors keep their status.
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		detail := models.ErrorDetail{
			Code:    "ERROR",
			Message: "Internal Server Error",
			Path:    c.Path(),
		}

		var svcErr *services.ServiceError
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &svcErr):
			status = svcErr.HTTPStatus()
			detail.Code = svcErr.Code
			detail.Message = svcErr.Message
			detail.Details = svcErr.Details
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
			detail.Message = fiberErr.Message
		}

		if status >= fiber.StatusInternalServerError {
			logger.Error("Request error",
				"path", c.Path(),
				"method", c.Method(),
				"status", status,
				"error", err,
			)
		} else {
			logger.Debug("Request rejected",
				"path", c.Path(),
				"method", c.Method(),
				"status", status,
				"error", err,
			)
		}

		return c.Status(status).JSON(models.ErrorResponse{Error: detail})
	}
}
