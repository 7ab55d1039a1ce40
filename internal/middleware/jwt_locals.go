package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/rojgarhq/rojgar-backend/internal/utils"
)

// AttachJWTLocals copies the validated claims into the locals the
// handlers read (userId, role).
func AttachJWTLocals() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("user").(*utils.Claims)
		if !ok || claims == nil {
			return fiber.ErrUnauthorized
		}

		uid := strings.TrimSpace(claims.UserID)
		if uid == "" {
			return fiber.ErrUnauthorized
		}

		c.Locals("userId", uid)
		c.Locals("role", strings.ToLower(strings.TrimSpace(claims.Role)))

		return c.Next()
	}
}
