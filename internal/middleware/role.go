package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/rojgarhq/rojgar-backend/internal/utils"
)

// RequireRoles gates a route group on the account's current side of the
// marketplace ("client", "freelancer"). Accounts can switch sides, so
// the check always reads the role claim of the session in hand.
func RequireRoles(allowed ...string) fiber.Handler {
	allowedSet := map[string]bool{}
	for _, r := range allowed {
		allowedSet[strings.ToLower(r)] = true
	}

	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("user").(*utils.Claims)
		if !ok || claims == nil {
			return fiber.ErrUnauthorized
		}

		role := strings.ToLower(strings.TrimSpace(claims.Role))
		if !allowedSet[role] {
			return fiber.NewError(fiber.StatusForbidden,
				"this action is not available to "+role+" accounts")
		}

		return c.Next()
	}
}
