package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lumora-api/internal/dto"
	"github.com/noah-isme/lumora-api/internal/service"
	"github.com/noah-isme/lumora-api/internal/utils"
)

// AuditHandler serves the admin audit trail.
type AuditHandler struct {
	service service.AuditService
	logger  zerolog.Logger
}

// NewAuditHandler constructs the audit handler.
func NewAuditHandler(service service.AuditService, logger zerolog.Logger) *AuditHandler {
	return &AuditHandler{
		service: service,
		logger:  logger.With().Str("component", "audit_handler").Logger(),
	}
}

// Register binds audit routes.
func (h *AuditHandler) Register(router fiber.Router) {
	router.Get("/audit-logs", h.list)
}

func (h *AuditHandler) list(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	records, err := h.service.ListRecent(requestContext(c), dto.AuditListRequest{
		Limit:      limit,
		ActionType: c.Query("action_type"),
	})
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to load audit logs")
	}

	return utils.OK(c, records, "audit logs", dto.PaginationMeta{Limit: limit, Count: len(records)})
}
