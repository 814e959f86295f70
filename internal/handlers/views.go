package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/sarenasr/Rappi-Dashboard/internal/engine"
	"github.com/sarenasr/Rappi-Dashboard/internal/models"
	"github.com/sarenasr/Rappi-Dashboard/internal/services"
)

type viewFunc func(context.Context, engine.Query) ([]byte, error)

// view parses the query string, runs the view and writes its encoding.
// Views are already encoded by the service so cache hits skip marshalling.
func (h *Handler) view(c *fiber.Ctx, run viewFunc, contentType string) error {
	var req models.ViewRequest
	if err := c.QueryParser(&req); err != nil {
		return h.sendError(c, services.NewServiceErrorWithDetails(
			services.CodeInvalidRequest,
			"Failed to parse query parameters",
			map[string]interface{}{"error": err.Error()},
		))
	}

	q, err := h.analytics.ParseQuery(&req)
	if err != nil {
		return h.sendError(c, err)
	}

	data, err := run(c.UserContext(), q)
	if err != nil {
		return h.sendError(c, err)
	}

	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}

func (h *Handler) jsonView(run viewFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return h.view(c, run, fiber.MIMEApplicationJSONCharsetUTF8)
	}
}

// Series returns the filtered, resampled series
// GET /v1/series
func (h *Handler) Series(c *fiber.Ctx) error {
	return h.jsonView(h.analytics.Series)(c)
}

// KPIs returns latest, peak, mean, min, variation and the previous-period delta
// GET /v1/kpis
func (h *Handler) KPIs(c *fiber.Ctx) error {
	return h.jsonView(h.analytics.KPIs)(c)
}

// Rolling returns the rolling mean and standard deviation
// GET /v1/rolling
func (h *Handler) Rolling(c *fiber.Ctx) error {
	return h.jsonView(h.analytics.Rolling)(c)
}

// Anomalies returns the z-score detector output
// GET /v1/anomalies
func (h *Handler) Anomalies(c *fiber.Ctx) error {
	return h.jsonView(h.analytics.Anomalies)(c)
}

// Daily returns per-day statistics
// GET /v1/daily
func (h *Handler) Daily(c *fiber.Ctx) error {
	return h.jsonView(h.analytics.Daily)(c)
}

// Hourly returns the typical-day profile
// GET /v1/hourly
func (h *Handler) Hourly(c *fiber.Ctx) error {
	return h.jsonView(h.analytics.Hourly)(c)
}

// Heatmap returns per-hour means for every day
// GET /v1/heatmap
func (h *Handler) Heatmap(c *fiber.Ctx) error {
	return h.jsonView(h.analytics.Heatmap)(c)
}

// Weekdays returns the day-of-week profile
// GET /v1/weekdays
func (h *Handler) Weekdays(c *fiber.Ctx) error {
	return h.jsonView(h.analytics.Weekdays)(c)
}

// Velocity returns consecutive changes
// GET /v1/velocity
func (h *Handler) Velocity(c *fiber.Ctx) error {
	return h.jsonView(h.analytics.Velocity)(c)
}

// Distribution returns the value histogram
// GET /v1/distribution
func (h *Handler) Distribution(c *fiber.Ctx) error {
	return h.jsonView(h.analytics.Distribution)(c)
}

// Compare returns the weekday/weekend or day-over-day comparison
// GET /v1/compare?mode=weekday_weekend
func (h *Handler) Compare(c *fiber.Ctx) error {
	return h.jsonView(h.analytics.Compare)(c)
}

// Boxes returns hourly box statistics
// GET /v1/boxes
func (h *Handler) Boxes(c *fiber.Ctx) error {
	return h.jsonView(h.analytics.Boxes)(c)
}

// Digest returns the bounded summary
// GET /v1/digest
func (h *Handler) Digest(c *fiber.Ctx) error {
	return h.jsonView(h.analytics.Digest)(c)
}

// DigestText returns the bounded summary as plain text
// GET /v1/digest/text
func (h *Handler) DigestText(c *fiber.Ctx) error {
	return h.view(c, h.analytics.DigestText, fiber.MIMETextPlainCharsetUTF8)
}
