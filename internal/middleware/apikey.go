package middleware

import (
	"crypto/subtle"
	"log"

	"github.com/gofiber/fiber/v2"
)

// APIKeyMiddleware requires the X-API-Key header to match key.
// An empty key disables the check.
func APIKeyMiddleware(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if key == "" {
			return c.Next()
		}

		provided := c.Get("X-API-Key")
		if provided == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing API key. Include X-API-Key header.",
			})
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
			log.Printf("❌ [APIKEY-AUTH] Invalid key attempt from %s", c.IP())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid API key",
			})
		}

		c.Locals("auth_type", "api_key")
		return c.Next()
	}
}
