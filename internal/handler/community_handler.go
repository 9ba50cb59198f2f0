package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lumora-api/internal/dto"
	"github.com/noah-isme/lumora-api/internal/service"
	"github.com/noah-isme/lumora-api/internal/utils"
)

// CommunityHandler exposes posts and replies inside department spaces.
type CommunityHandler struct {
	service   service.CommunityService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCommunityHandler constructs the community handler.
func NewCommunityHandler(service service.CommunityService, validate *validator.Validate, logger zerolog.Logger) *CommunityHandler {
	return &CommunityHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "community_handler").Logger(),
	}
}

// Register binds post routes under the spaces group and reply routes under the posts group.
func (h *CommunityHandler) Register(spaces, posts fiber.Router) {
	spaces.Get("/:id/posts", h.listPosts)
	spaces.Post("/:id/posts", h.createPost)
	posts.Get("/:id/replies", h.listReplies)
	posts.Post("/:id/replies", h.createReply)
}

func (h *CommunityHandler) listPosts(c *fiber.Ctx) error {
	spaceID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid space id")
	}
	limit, offset, err := pageParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	posts, err := h.service.ListPosts(requestContext(c), userIDFromContext(c), spaceID, limit, offset)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to load posts")
	}
	return utils.OK(c, posts, "posts", dto.PaginationMeta{Limit: limit, Offset: offset, Count: len(posts)})
}

func (h *CommunityHandler) createPost(c *fiber.Ctx) error {
	spaceID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid space id")
	}

	var req dto.CommunityPostCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validator.Struct(req); err != nil {
		return writeServiceError(c, h.logger, err, "invalid payload")
	}

	post, err := h.service.CreatePost(requestContext(c), userIDFromContext(c), spaceID, req)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to create post")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "post created", post)
}

func (h *CommunityHandler) listReplies(c *fiber.Ctx) error {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid post id")
	}
	limit, offset, err := pageParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	replies, err := h.service.ListReplies(requestContext(c), userIDFromContext(c), postID, limit, offset)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to load replies")
	}
	return utils.OK(c, replies, "replies", dto.PaginationMeta{Limit: limit, Offset: offset, Count: len(replies)})
}

func (h *CommunityHandler) createReply(c *fiber.Ctx) error {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid post id")
	}

	var req dto.CommunityReplyCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validator.Struct(req); err != nil {
		return writeServiceError(c, h.logger, err, "invalid payload")
	}

	reply, err := h.service.CreateReply(requestContext(c), userIDFromContext(c), postID, req)
	if err != nil {
		return writeServiceError(c, h.logger, err, "failed to create reply")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "reply created", reply)
}
