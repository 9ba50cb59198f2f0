package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lumora-api/internal/dto"
	"github.com/noah-isme/lumora-api/internal/service"
	"github.com/noah-isme/lumora-api/internal/utils"
)

// SpaceHandler serves department space membership.
type SpaceHandler struct {
	service   service.SpaceService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSpaceHandler constructs the space handler.
func NewSpaceHandler(service service.SpaceService, validate *validator.Validate, logger zerolog.Logger) *SpaceHandler {
	return &SpaceHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "space_handler").Logger(),
	}
}

// Register binds space routes.
func (h *SpaceHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/actions", h.dispatch)
}

func (h *SpaceHandler) list(c *fiber.Ctx) error {
	spaces, err := h.service.GetUserSpaces(requestContext(c), userIDFromContext(c))
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to load spaces")
	}
	return utils.OK(c, spaces, "spaces", dto.PaginationMeta{Count: len(spaces)})
}

func (h *SpaceHandler) dispatch(c *fiber.Ctx) error {
	var req dto.SpaceActionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validator.Struct(req); err != nil {
		return writeServiceError(c, h.logger, err, "invalid payload")
	}

	action, err := service.DecodeSpaceAction(req)
	if err != nil {
		return writeServiceError(c, h.logger, err, "invalid space action")
	}

	result, err := h.service.Dispatch(requestContext(c), userIDFromContext(c), action)
	if err != nil {
		return writeServiceError(c, h.logger, err, "space action failed")
	}
	return utils.SendSuccess(c, "space action completed", result)
}
