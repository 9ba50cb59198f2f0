package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lumora-api/internal/service"
	"github.com/noah-isme/lumora-api/internal/utils"
	"github.com/noah-isme/lumora-api/pkg/ai"
)

// writeServiceError maps service sentinels to HTTP statuses. Unclassified errors are logged and hidden.
func writeServiceError(c *fiber.Ctx, logger zerolog.Logger, err error, fallback string) error {
	switch {
	case isValidationError(err):
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", validationDetails(err))
	case errors.Is(err, service.ErrInvalidInput):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, ai.ErrRateLimited):
		return utils.SendError(c, fiber.StatusTooManyRequests, "rate limit exceeded, please try again later")
	case errors.Is(err, ai.ErrQuotaExhausted):
		return utils.SendError(c, fiber.StatusPaymentRequired, "ai credits exhausted")
	case errors.Is(err, ai.ErrUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "ai service unavailable")
	}

	requestLogger(logger, c).Error().Err(err).Msg(fallback)
	return utils.SendError(c, fiber.StatusInternalServerError, fallback)
}
