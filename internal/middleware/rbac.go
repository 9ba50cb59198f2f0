package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/lumora-api/internal/models"
	"github.com/noah-isme/lumora-api/internal/utils"
)

// RoleGuard resolves an identity's role and rejects it when below minimum.
type RoleGuard interface {
	Require(ctx context.Context, userID string, minimum models.Role) (models.Role, error)
}

// RequireUser rejects requests that carry no authenticated identity.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUserID(c) == "" {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}
		return c.Next()
	}
}

// RequireRole ensures the authenticated identity holds at least minimum. The role is read from
// the role store on every request; token claims are not trusted for privilege.
func RequireRole(guard RoleGuard, minimum models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := currentUserID(c)
		if userID == "" {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}

		role, err := guard.Require(c.UserContext(), userID, minimum)
		if err != nil {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}

		c.Locals("user_role", role.String())
		return c.Next()
	}
}

func currentUserID(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return strings.TrimSpace(id)
	}
	return ""
}
