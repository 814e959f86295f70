package logging

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

// MiddlewareConfig defines configuration for logging middleware
type MiddlewareConfig struct {
	// SkipPaths defines paths to skip logging
	SkipPaths []string
}

// DefaultMiddlewareConfig returns default middleware configuration
func DefaultMiddlewareConfig() MiddlewareConfig {
	return MiddlewareConfig{
		SkipPaths: []string{"/health"},
	}
}

// FiberMiddleware returns a Fiber middleware that assigns a request ID,
// stores the logger in the request context and logs every completed request
func FiberMiddleware(logger *Logger, cfg MiddlewareConfig) fiber.Handler {
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDHeader, requestID)

		ctx := WithLogger(WithRequestID(c.UserContext(), requestID), logger)
		c.SetUserContext(ctx)

		if skip[c.Path()] {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		fields := []interface{}{
			"method", c.Method(),
			"path", c.Path(),
			"query", string(c.Request().URI().QueryString()),
			"ip", c.IP(),
			"status", c.Response().StatusCode(),
			"duration_ms", duration.Milliseconds(),
			"request_id", requestID,
		}

		if err != nil {
			fields = append(fields, "error", err)
			logger.Error("Request failed", fields...)
			return err
		}

		switch status := c.Response().StatusCode(); {
		case status >= 500:
			logger.Error("Server error", fields...)
		case status >= 400:
			logger.Warn("Client error", fields...)
		default:
			logger.Info("Request completed", fields...)
		}
		return nil
	}
}
