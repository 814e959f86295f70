package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sarenasr/Rappi-Dashboard/internal/logging"
	"github.com/sarenasr/Rappi-Dashboard/internal/models"
)

// MinAPIKeyLength is the minimum required length for API keys
const MinAPIKeyLength = 32

// ValidateAPIKey checks if an API key meets the security requirements
func ValidateAPIKey(key string) bool {
	if len(key) < MinAPIKeyLength {
		return false
	}
	return strings.TrimSpace(key) != ""
}

// APIKeyAuth creates an API key authentication middleware for one route
// group. scope names the group in logs ("api", "admin").
func APIKeyAuth(logger *logging.Logger, scope string, apiKeys []string, enabled bool) fiber.Handler {
	if !enabled {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	keys := make([][]byte, 0, len(apiKeys))
	for _, key := range apiKeys {
		if key == "" {
			continue
		}
		if !ValidateAPIKey(key) {
			logger.Warn("API key does not meet security requirements",
				"scope", scope,
				"key_length", len(key),
				"min_required", MinAPIKeyLength,
				"key_prefix", maskAPIKey(key),
			)
			continue
		}
		keys = append(keys, []byte(key))
	}

	if len(keys) == 0 {
		logger.Error("No valid API keys configured, every request will be rejected",
			"scope", scope,
			"total_keys", len(apiKeys),
			"min_required_length", MinAPIKeyLength,
		)
	}

	return func(c *fiber.Ctx) error {
		apiKey := requestKey(c)
		if apiKey == "" {
			logger.Warn("API key missing",
				"scope", scope,
				"path", c.Path(),
				"ip", c.IP(),
			)
			return unauthorized(c, "API key is required. Provide it via X-API-Key header or Authorization header.")
		}

		if !matchKey(keys, apiKey) {
			logger.Warn("Invalid API key",
				"scope", scope,
				"path", c.Path(),
				"ip", c.IP(),
				"api_key_prefix", maskAPIKey(apiKey),
			)
			return unauthorized(c, "Invalid API key.")
		}

		return c.Next()
	}
}

// requestKey reads the key from X-API-Key, "Authorization: Bearer <key>" or a
// bare Authorization header
func requestKey(c *fiber.Ctx) string {
	if key := c.Get("X-API-Key"); key != "" {
		return key
	}
	auth := c.Get(fiber.HeaderAuthorization)
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return after
	}
	return auth
}

// matchKey compares in constant time against every configured key
func matchKey(keys [][]byte, candidate string) bool {
	c := []byte(candidate)
	found := 0
	for _, k := range keys {
		found |= subtle.ConstantTimeCompare(k, c)
	}
	return found == 1
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "UNAUTHORIZED",
			Message: message,
			Path:    c.Path(),
		},
	})
}

// maskAPIKey masks API key for logging (show only first 4 chars)
func maskAPIKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return key[:4] + "****"
}
