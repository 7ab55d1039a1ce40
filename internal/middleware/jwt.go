package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/rojgarhq/rojgar-backend/internal/utils"
)

// RequireJWT reads the session token from the cookie or, failing that,
// from the Authorization header, and stores the validated claims.
func RequireJWT(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := c.Cookies("rg_token")
		if tokenStr == "" {
			auth := c.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				tokenStr = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if tokenStr == "" {
			return fiber.ErrUnauthorized
		}

		claims, err := utils.ParseJWT(secret, tokenStr)
		if err != nil {
			return fiber.ErrUnauthorized
		}

		c.Locals("user", claims)
		return c.Next()
	}
}
