package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"basketball-tournament-api/middleware"
	"basketball-tournament-api/models"
	"basketball-tournament-api/services"
)

func SetupUserRoutes(app *fiber.App, userService *services.UserService, authMW fiber.Handler) {
	app.Get("/api/status/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "UP",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	secured := app.Group("/api/users", authMW)

	secured.Get("/", func(c *fiber.Ctx) error {
		users, err := userService.ListAll(c.Context(), middleware.Principal(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(users)
	})

	secured.Get("/me", func(c *fiber.Ctx) error {
		user, err := userService.GetByID(c.Context(), middleware.Principal(c).UserID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(user)
	})

	secured.Get("/:id", func(c *fiber.Ctx) error {
		user, err := userService.GetByID(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(user)
	})

	secured.Patch("/:id/role", func(c *fiber.Ctx) error {
		var req struct {
			Role models.Role `json:"role"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		user, err := userService.UpdateRole(c.Context(), middleware.Principal(c), c.Params("id"), req.Role)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(user)
	})
}
