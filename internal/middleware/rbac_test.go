package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lumora-api/internal/models"
)

type staticGuard map[string]models.Role

func (g staticGuard) Require(ctx context.Context, userID string, minimum models.Role) (models.Role, error) {
	role := g[userID]
	if !role.AtLeast(minimum) {
		return role, errors.New("insufficient permissions")
	}
	return role, nil
}

func newGuardedApp(userID string, minimum models.Role) *fiber.App {
	guard := staticGuard{"h1": models.RoleHeadAdmin, "a1": models.RoleAdmin}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if userID != "" {
			c.Locals("user_id", userID)
		}
		return c.Next()
	})
	app.Use(RequireRole(guard, minimum))
	app.Get("/admin", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("user_role").(string))
	})
	return app
}

func TestRequireRoleAllowsSufficientRoles(t *testing.T) {
	for _, userID := range []string{"h1", "a1"} {
		resp, err := newGuardedApp(userID, models.RoleAdmin).Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}

func TestRequireRoleRejectsInsufficientRoles(t *testing.T) {
	resp, err := newGuardedApp("a1", models.RoleHeadAdmin).Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = newGuardedApp("student", models.RoleAdmin).Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireRoleRequiresIdentity(t *testing.T) {
	resp, err := newGuardedApp("", models.RoleAdmin).Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
