package middleware

import (
	"github.com/gofiber/fiber/v3"
)

const userIDKey = "userID"

// RequireUser rejects requests that arrive without the gateway-injected
// X-User-ID header. The gateway has already verified the JWT; this service
// trusts its headers.
func RequireUser() fiber.Handler {
	return func(c fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing user identity",
			})
		}
		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// UserID returns the authenticated user id set by RequireUser.
func UserID(c fiber.Ctx) string {
	if id, ok := c.Locals(userIDKey).(string); ok {
		return id
	}
	return ""
}
