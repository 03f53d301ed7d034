package handlers

import (
	"github.com/gofiber/fiber/v2"

	"basketball-tournament-api/middleware"
	"basketball-tournament-api/models"
	"basketball-tournament-api/services"
)

func SetupTournamentRoutes(app *fiber.App, tournamentService *services.TournamentService, registrationService *services.RegistrationService, authMW fiber.Handler) {
	// Public reads
	app.Get("/api/tournaments", func(c *fiber.Ctx) error {
		status := models.TournamentStatus(c.Query("status"))
		tournaments, err := tournamentService.List(c.Context(), status)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(tournaments)
	})

	app.Get("/api/tournaments/:id", func(c *fiber.Ctx) error {
		t, err := tournamentService.GetByID(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(t)
	})

	// Authenticated routes. The middleware is attached per route so the
	// public reads above and the public team routes under the same prefix
	// stay open.
	app.Post("/api/tournaments", authMW, func(c *fiber.Ctx) error {
		var in services.TournamentInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		t, err := tournamentService.Create(c.Context(), middleware.Principal(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(201).JSON(t)
	})

	app.Put("/api/tournaments/:id", authMW, func(c *fiber.Ctx) error {
		var in services.TournamentInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		t, err := tournamentService.Update(c.Context(), middleware.Principal(c), c.Params("id"), in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(t)
	})

	app.Delete("/api/tournaments/:id", authMW, func(c *fiber.Ctx) error {
		if err := tournamentService.Delete(c.Context(), middleware.Principal(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "tournament deleted"})
	})

	app.Patch("/api/tournaments/:id/status", authMW, func(c *fiber.Ctx) error {
		var req struct {
			Status models.TournamentStatus `json:"status"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		t, err := tournamentService.UpdateStatus(c.Context(), middleware.Principal(c), c.Params("id"), req.Status)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(t)
	})

	app.Post("/api/tournaments/:id/results", authMW, func(c *fiber.Ctx) error {
		var req struct {
			Positions map[string]int `json:"positions"` // team id -> final placement
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		t, err := tournamentService.SetResults(c.Context(), middleware.Principal(c), c.Params("id"), req.Positions)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(t)
	})

	app.Post("/api/tournaments/:id/image", authMW, func(c *fiber.Ctx) error {
		file, err := c.FormFile("image")
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "image file required"})
		}
		t, err := tournamentService.UploadImage(c.Context(), middleware.Principal(c), c.Params("id"), file)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(t)
	})

	// Team registration; the captain is whoever presents the token.
	app.Post("/api/tournaments/:id/register", authMW, func(c *fiber.Ctx) error {
		var req struct {
			TeamName  string   `json:"team_name"`
			PlayerIDs []string `json:"player_ids"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
		}
		reg, err := registrationService.Register(c.Context(), middleware.Principal(c), c.Params("id"), req.TeamName, req.PlayerIDs)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(201).JSON(reg)
	})
}
