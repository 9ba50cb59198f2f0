package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lumora-api/internal/dto"
	"github.com/noah-isme/lumora-api/internal/service"
	"github.com/noah-isme/lumora-api/internal/utils"
)

// LeaderboardHandler serves quiz score submission and rankings.
type LeaderboardHandler struct {
	service   service.LeaderboardService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewLeaderboardHandler constructs the leaderboard handler.
func NewLeaderboardHandler(service service.LeaderboardService, validate *validator.Validate, logger zerolog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "leaderboard_handler").Logger(),
	}
}

// Register binds leaderboard routes.
func (h *LeaderboardHandler) Register(router fiber.Router) {
	router.Get("/", h.top)
	router.Post("/scores", h.submit)
}

func (h *LeaderboardHandler) top(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	board, err := h.service.Top(requestContext(c), limit)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to load leaderboard")
	}
	if board.CacheHit {
		c.Set("X-Cache", "HIT")
	} else {
		c.Set("X-Cache", "MISS")
	}
	return utils.SendSuccess(c, "leaderboard", board)
}

func (h *LeaderboardHandler) submit(c *fiber.Ctx) error {
	var req dto.ScoreSubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validator.Struct(req); err != nil {
		return writeServiceError(c, h.logger, err, "invalid payload")
	}

	entry, err := h.service.SubmitScore(requestContext(c), userIDFromContext(c), service.ScoreSubmission{
		QuizID: req.QuizID,
		Score:  req.Score,
		Total:  req.Total,
	})
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to submit score")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "score recorded", entry)
}
