package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"basketball-tournament-api/middleware"
	"basketball-tournament-api/models"
	"basketball-tournament-api/services"
)

func SetupTeamRoutes(app *fiber.App, teamService *services.TeamService, authMW fiber.Handler) {
	// Public reads
	app.Get("/api/teams/search", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		teams, err := teamService.Search(c.Context(), c.Query("q"), limit)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(teams)
	})

	app.Get("/api/teams/top", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "10"))
		teams, err := teamService.TopTeams(c.Context(), limit)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(teams)
	})

	app.Get("/api/teams/:id", func(c *fiber.Ctx) error {
		team, err := teamService.GetByID(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(team)
	})

	app.Get("/api/tournaments/:id/teams", func(c *fiber.Ctx) error {
		status := models.TeamStatus(c.Query("status"))
		teams, err := teamService.ListByTournament(c.Context(), c.Params("id"), status)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(teams)
	})

	app.Post("/api/teams/:id/logo", authMW, func(c *fiber.Ctx) error {
		file, err := c.FormFile("logo")
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "logo file required"})
		}
		team, err := teamService.UploadLogo(c.Context(), middleware.Principal(c), c.Params("id"), file)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(team)
	})
}
