package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/lumora-api/internal/dto"
	"github.com/noah-isme/lumora-api/internal/service"
	"github.com/noah-isme/lumora-api/internal/utils"
)

// RoleHandler reports the caller's privilege tier.
type RoleHandler struct {
	resolver service.RoleResolver
}

// NewRoleHandler constructs the role handler.
func NewRoleHandler(resolver service.RoleResolver) *RoleHandler {
	return &RoleHandler{resolver: resolver}
}

// Register binds the role routes.
func (h *RoleHandler) Register(router fiber.Router) {
	router.Get("/role", h.me)
}

func (h *RoleHandler) me(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	role := h.resolver.Resolve(requestContext(c), userID)
	return utils.SendSuccess(c, "role resolved", dto.NewRoleResponse(role))
}
