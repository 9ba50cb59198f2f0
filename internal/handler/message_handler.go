package handler

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lumora-api/internal/dto"
	"github.com/noah-isme/lumora-api/internal/service"
	"github.com/noah-isme/lumora-api/internal/utils"
)

const inboxPingInterval = 30 * time.Second

// MessageHandler exposes private messaging and the realtime inbox socket.
type MessageHandler struct {
	actions   service.AdminActionService
	inbox     service.InboxService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewMessageHandler creates a message handler instance.
func NewMessageHandler(actions service.AdminActionService, inbox service.InboxService, validate *validator.Validate, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		actions:   actions,
		inbox:     inbox,
		validator: validate,
		logger:    logger.With().Str("component", "message_handler").Logger(),
	}
}

// Register binds message routes under the provided router group.
func (h *MessageHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/ws", websocket.New(h.handleConnection))
	router.Get("/", h.list)
	router.Post("/", h.send)
	router.Patch("/:id/read", h.markRead)
}

func (h *MessageHandler) send(c *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	req.RecipientEmail = strings.TrimSpace(req.RecipientEmail)
	if err := h.validator.Struct(req); err != nil {
		return writeServiceError(c, h.logger, err, "invalid payload")
	}

	action := service.SendMessage{RecipientEmail: req.RecipientEmail, Body: req.Message}
	result, err := h.actions.Execute(requestContext(c), userIDFromContext(c), action)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to send message")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "message sent", result.Resource)
}

func (h *MessageHandler) list(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	messages, err := h.inbox.List(requestContext(c), userID, limit, offset)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to load messages")
	}

	return utils.OK(c, messages, "messages", dto.PaginationMeta{Limit: limit, Offset: offset, Count: len(messages)})
}

func (h *MessageHandler) markRead(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid message id")
	}

	message, err := h.inbox.MarkRead(requestContext(c), id, userID)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to update message")
	}

	return utils.SendSuccess(c, "message marked as read", message)
}

func (h *MessageHandler) handleConnection(conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(string)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "user id missing"))
		_ = conn.Close()
		return
	}

	stream, cleanup := h.inbox.Subscribe(userID)
	defer cleanup()

	// The read loop only exists to notice the peer going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(inboxPingInterval)
	defer ticker.Stop()

	h.logger.Info().Str("user_id", userID).Msg("inbox websocket connected")
	defer h.logger.Info().Str("user_id", userID).Msg("inbox websocket disconnected")

	for {
		select {
		case message, ok := <-stream:
			if !ok {
				return
			}
			if err := conn.WriteJSON(message); err != nil {
				h.logger.Debug().Err(err).Msg("failed to write inbox message")
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
