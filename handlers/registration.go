package handlers

import (
	"github.com/gofiber/fiber/v2"

	"basketball-tournament-api/middleware"
	"basketball-tournament-api/models"
	"basketball-tournament-api/services"
)

func SetupRegistrationRoutes(app *fiber.App, registrationService *services.RegistrationService, authMW fiber.Handler) {
	secured := app.Group("/api/registrations", authMW)

	secured.Get("/", func(c *fiber.Ctx) error {
		regs, err := registrationService.ListAll(c.Context(), middleware.Principal(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(regs)
	})

	secured.Get("/captain", func(c *fiber.Ctx) error {
		regs, err := registrationService.ListByCaptain(c.Context(), middleware.Principal(c).UserID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(regs)
	})

	secured.Get("/player", func(c *fiber.Ctx) error {
		regs, err := registrationService.ListByPlayer(c.Context(), middleware.Principal(c).UserID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(regs)
	})

	secured.Get("/tournament/:tournamentId", func(c *fiber.Ctx) error {
		if status := c.Query("status"); status != "" {
			regs, err := registrationService.ListByTournamentAndStatus(c.Context(), c.Params("tournamentId"), models.TeamStatus(status))
			if err != nil {
				return fail(c, err)
			}
			return c.JSON(regs)
		}
		regs, err := registrationService.ListByTournament(c.Context(), c.Params("tournamentId"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(regs)
	})

	secured.Get("/:id", func(c *fiber.Ctx) error {
		reg, err := registrationService.GetByID(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(reg)
	})

	secured.Put("/:id/status", func(c *fiber.Ctx) error {
		var req struct {
			Status models.TeamStatus `json:"status"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		reg, err := registrationService.UpdateStatus(c.Context(), middleware.Principal(c), c.Params("id"), req.Status)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(reg)
	})

	secured.Post("/:id/players", func(c *fiber.Ctx) error {
		var req struct {
			PlayerID string `json:"player_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		reg, err := registrationService.AddPlayer(c.Context(), middleware.Principal(c), c.Params("id"), req.PlayerID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(reg)
	})

	secured.Delete("/:id/players/:playerId", func(c *fiber.Ctx) error {
		reg, err := registrationService.RemovePlayer(c.Context(), middleware.Principal(c), c.Params("id"), c.Params("playerId"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(reg)
	})

	secured.Delete("/:id", func(c *fiber.Ctx) error {
		if err := registrationService.Delete(c.Context(), middleware.Principal(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "registration deleted"})
	})
}
