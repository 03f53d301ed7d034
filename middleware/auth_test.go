package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basketball-tournament-api/auth"
	"basketball-tournament-api/models"
)

func protectedApp(tokens *auth.TokenIssuer) *fiber.App {
	app := fiber.New()
	app.Get("/protected", RequireAuth(tokens), func(c *fiber.Ctx) error {
		p := Principal(c)
		return c.JSON(fiber.Map{"user_id": p.UserID, "role": p.Role})
	})
	return app
}

func TestRequireAuth(t *testing.T) {
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	app := protectedApp(tokens)

	t.Run("missing header", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("not a bearer token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Basic abc123")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := auth.NewTokenIssuer("other-secret", time.Hour)
		token, _, err := other.Issue("u1", models.RoleUser)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid token reaches handler", func(t *testing.T) {
		token, _, err := tokens.Issue("u1", models.RoleAdmin)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "u1", body["user_id"])
		assert.Equal(t, "admin", body["role"])
	})
}
