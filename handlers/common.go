package handlers

import (
	"github.com/gofiber/fiber/v2"

	"basketball-tournament-api/apperrors"
)

// fail maps a service error to its HTTP status and a JSON error body.
func fail(c *fiber.Ctx, err error) error {
	return c.Status(apperrors.StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
}
