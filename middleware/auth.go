package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"basketball-tournament-api/auth"
)

const principalKey = "principal"

// RequireAuth verifies the bearer token and attaches the Principal to the
// request context. Every verification failure is a plain 401; the specific
// reason stays in the log.
func RequireAuth(tokens *auth.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		tokenStr := strings.TrimPrefix(header, "Bearer ")
		if header == "" || tokenStr == header {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing bearer token",
			})
		}

		p, err := tokens.Verify(tokenStr)
		if err != nil {
			log.Printf("[AUTH] token rejected for %s: %v", c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}

		c.Locals(principalKey, p)
		return c.Next()
	}
}

// Principal returns the verified identity for this request. The zero value
// means unauthenticated and is denied by every policy predicate, so
// handlers on optional-auth routes can use it directly.
func Principal(c *fiber.Ctx) auth.Principal {
	if p, ok := c.Locals(principalKey).(auth.Principal); ok {
		return p
	}
	return auth.Principal{}
}
