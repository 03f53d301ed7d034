package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"basketball-tournament-api/services"
)

func SetupAuthRoutes(app *fiber.App, userService *services.UserService) {
	api := app.Group("/api/auth")

	api.Post("/register", func(c *fiber.Ctx) error {
		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		result, err := userService.Register(c.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(201).JSON(result)
	})

	api.Post("/login", func(c *fiber.Ctx) error {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		result, err := userService.Authenticate(c.Context(), req.Email, req.Password)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(result)
	})

	// A refreshed token is just a new token with the same claims; nothing is
	// stored or revoked server-side.
	api.Post("/refresh", func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		tokenStr := strings.TrimPrefix(header, "Bearer ")
		if header == "" || tokenStr == header {
			return c.Status(401).JSON(fiber.Map{"error": "missing bearer token"})
		}
		result, err := userService.Refresh(tokenStr)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(result)
	})
}
