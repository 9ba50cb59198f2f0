package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lumora-api/internal/service"
	"github.com/noah-isme/lumora-api/internal/utils"
)

// PresenceHandler records heartbeats and answers online checks.
type PresenceHandler struct {
	service service.PresenceService
	logger  zerolog.Logger
}

// NewPresenceHandler constructs the presence handler.
func NewPresenceHandler(service service.PresenceService, logger zerolog.Logger) *PresenceHandler {
	return &PresenceHandler{
		service: service,
		logger:  logger.With().Str("component", "presence_handler").Logger(),
	}
}

// Register binds presence routes.
func (h *PresenceHandler) Register(router fiber.Router) {
	router.Post("/heartbeat", h.heartbeat)
	router.Post("/offline", h.offline)
	router.Get("/:userId", h.check)
}

func (h *PresenceHandler) heartbeat(c *fiber.Ctx) error {
	if err := h.service.Heartbeat(requestContext(c), userIDFromContext(c)); err != nil {
		return writeServiceError(c, h.logger, err, "failed to record heartbeat")
	}
	return utils.SendSuccess(c, "heartbeat recorded", nil)
}

func (h *PresenceHandler) offline(c *fiber.Ctx) error {
	h.service.MarkOffline(requestContext(c), userIDFromContext(c))
	return utils.SendSuccess(c, "marked offline", nil)
}

func (h *PresenceHandler) check(c *fiber.Ctx) error {
	userID := strings.TrimSpace(c.Params("userId"))
	if userID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "user id required")
	}

	presence, err := h.service.IsOnline(requestContext(c), userID)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to check presence")
	}
	return utils.SendSuccess(c, "presence", presence)
}
