package handler

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lumora-api/internal/dto"
	"github.com/noah-isme/lumora-api/internal/service"
	"github.com/noah-isme/lumora-api/internal/utils"
)

// AdGateHandler drives the two-stage ad unlock flow.
type AdGateHandler struct {
	service   service.AdGateService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAdGateHandler constructs the ad gate handler.
func NewAdGateHandler(service service.AdGateService, validate *validator.Validate, logger zerolog.Logger) *AdGateHandler {
	return &AdGateHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "ad_gate_handler").Logger(),
	}
}

// Register binds ad gate routes.
func (h *AdGateHandler) Register(router fiber.Router) {
	router.Get("/status", h.status)
	router.Post("/stages/:stage/start", h.start)
	router.Post("/stages/:stage/complete", h.complete)
}

func (h *AdGateHandler) status(c *fiber.Ctx) error {
	status, err := h.service.Status(requestContext(c), userIDFromContext(c))
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to load ad progress")
	}
	return utils.SendSuccess(c, "ad progress", status)
}

func (h *AdGateHandler) start(c *fiber.Ctx) error {
	stage, err := strconv.Atoi(c.Params("stage"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid stage")
	}

	response, err := h.service.StartStage(requestContext(c), userIDFromContext(c), stage)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to start ad stage")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "ad stage started", response)
}

func (h *AdGateHandler) complete(c *fiber.Ctx) error {
	stage, err := strconv.Atoi(c.Params("stage"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid stage")
	}

	var req dto.AdGateCompleteRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validator.Struct(req); err != nil {
		return writeServiceError(c, h.logger, err, "invalid payload")
	}

	status, err := h.service.CompleteStage(requestContext(c), userIDFromContext(c), stage, req.Token)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to complete ad stage")
	}
	return utils.SendSuccess(c, "ad stage completed", status)
}
