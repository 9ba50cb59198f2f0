package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lumora-api/internal/dto"
	"github.com/noah-isme/lumora-api/internal/service"
	"github.com/noah-isme/lumora-api/internal/utils"
	"github.com/noah-isme/lumora-api/pkg/ai"
)

// AssistantHandler streams course assistant completions as server-sent events.
type AssistantHandler struct {
	service   service.AssistantService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAssistantHandler constructs the assistant handler.
func NewAssistantHandler(service service.AssistantService, validate *validator.Validate, logger zerolog.Logger) *AssistantHandler {
	return &AssistantHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "assistant_handler").Logger(),
	}
}

// Register binds assistant routes.
func (h *AssistantHandler) Register(router fiber.Router) {
	router.Post("/chat", h.chat)
}

func (h *AssistantHandler) chat(c *fiber.Ctx) error {
	var req dto.AssistantChatRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validator.Struct(req); err != nil {
		return writeServiceError(c, h.logger, err, "invalid payload")
	}

	userID := userIDFromContext(c)
	// The stream outlives the handler, so it must not inherit the request context.
	ctx, cancel := context.WithCancel(context.Background())
	stream, err := h.service.Stream(ctx, userID, req)
	if err != nil {
		cancel()
		if errors.Is(err, ai.ErrRateLimited) || errors.Is(err, ai.ErrQuotaExhausted) || errors.Is(err, ai.ErrUnavailable) {
			requestLogger(h.logger, c).Warn().Err(err).Str("user_id", userID).Msg("assistant gateway refused request")
		}
		return writeServiceError(c, h.logger, err, "assistant request failed")
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	logger := h.logger
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer func() {
			_ = stream.Close()
			cancel()
		}()

		for {
			chunk, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				logger.Warn().Err(err).Str("user_id", userID).Msg("assistant stream interrupted")
				_ = writeSSEData(w, fiber.Map{"error": "assistant stream interrupted"})
				return
			}
			if err := writeSSEData(w, chunk); err != nil {
				logger.Debug().Err(err).Msg("client closed assistant stream")
				return
			}
		}

		if _, err := fmt.Fprint(w, "data: [DONE]\n\n"); err == nil {
			_ = w.Flush()
		}
	})

	return nil
}

func writeSSEData(w *bufio.Writer, payload interface{}) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", encoded); err != nil {
		return err
	}
	return w.Flush()
}
