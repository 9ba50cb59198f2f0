package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/lumora-api/internal/dto"
	"github.com/noah-isme/lumora-api/internal/models"
	"github.com/noah-isme/lumora-api/internal/repository"
)

var (
	// ErrNotSpaceMember indicates the caller does not belong to the department space.
	ErrNotSpaceMember = fmt.Errorf("%w: not a member of this space", ErrUnauthorized)
	// ErrPostNotFound indicates the community post does not exist.
	ErrPostNotFound = fmt.Errorf("%w: community post", ErrNotFound)
)

// CommunityService manages discussion inside department spaces.
type CommunityService interface {
	ListPosts(ctx context.Context, userID string, spaceID uint, limit, offset int) ([]dto.CommunityPostResponse, error)
	CreatePost(ctx context.Context, userID string, spaceID uint, req dto.CommunityPostCreateRequest) (dto.CommunityPostResponse, error)
	ListReplies(ctx context.Context, userID string, postID uint, limit, offset int) ([]dto.CommunityReplyResponse, error)
	CreateReply(ctx context.Context, userID string, postID uint, req dto.CommunityReplyCreateRequest) (dto.CommunityReplyResponse, error)
}

type communityService struct {
	repo      repository.CommunityRepository
	spaces    SpaceService
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewCommunityService constructs the community discussion service.
func NewCommunityService(repo repository.CommunityRepository, spaces SpaceService, logger zerolog.Logger) CommunityService {
	return &communityService{
		repo:      repo,
		spaces:    spaces,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger.With().Str("component", "community_service").Logger(),
	}
}

func (s *communityService) ListPosts(ctx context.Context, userID string, spaceID uint, limit, offset int) ([]dto.CommunityPostResponse, error) {
	if _, err := s.spaces.Membership(ctx, spaceID, userID); err != nil {
		return nil, err
	}

	posts, err := s.repo.ListPosts(ctx, spaceID, limit, offset)
	if err != nil {
		return nil, persistenceError(err)
	}

	responses := make([]dto.CommunityPostResponse, 0, len(posts))
	for _, post := range posts {
		responses = append(responses, dto.NewCommunityPostResponse(post))
	}
	return responses, nil
}

func (s *communityService) CreatePost(ctx context.Context, userID string, spaceID uint, req dto.CommunityPostCreateRequest) (dto.CommunityPostResponse, error) {
	if _, err := s.spaces.Membership(ctx, spaceID, userID); err != nil {
		return dto.CommunityPostResponse{}, err
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(req.Content))
	if content == "" {
		return dto.CommunityPostResponse{}, invalidInput("content is required")
	}

	post := models.CommunityPost{SpaceID: spaceID, AuthorID: userID, Content: content}
	if err := s.repo.CreatePost(ctx, &post); err != nil {
		return dto.CommunityPostResponse{}, persistenceError(err)
	}

	s.logger.Info().Uint("space_id", spaceID).Uint("post_id", post.ID).Str("author_id", userID).Msg("community post created")
	return dto.NewCommunityPostResponse(post), nil
}

func (s *communityService) ListReplies(ctx context.Context, userID string, postID uint, limit, offset int) ([]dto.CommunityReplyResponse, error) {
	if _, err := s.authorizePost(ctx, userID, postID); err != nil {
		return nil, err
	}

	replies, err := s.repo.ListReplies(ctx, postID, limit, offset)
	if err != nil {
		return nil, persistenceError(err)
	}

	responses := make([]dto.CommunityReplyResponse, 0, len(replies))
	for _, reply := range replies {
		responses = append(responses, dto.NewCommunityReplyResponse(reply))
	}
	return responses, nil
}

func (s *communityService) CreateReply(ctx context.Context, userID string, postID uint, req dto.CommunityReplyCreateRequest) (dto.CommunityReplyResponse, error) {
	if _, err := s.authorizePost(ctx, userID, postID); err != nil {
		return dto.CommunityReplyResponse{}, err
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(req.Content))
	if content == "" {
		return dto.CommunityReplyResponse{}, invalidInput("content is required")
	}

	reply := models.CommunityReply{PostID: postID, AuthorID: userID, Content: content}
	if err := s.repo.CreateReply(ctx, &reply); err != nil {
		return dto.CommunityReplyResponse{}, persistenceError(err)
	}
	return dto.NewCommunityReplyResponse(reply), nil
}

func (s *communityService) authorizePost(ctx context.Context, userID string, postID uint) (models.CommunityPost, error) {
	post, err := s.repo.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.CommunityPost{}, ErrPostNotFound
		}
		return models.CommunityPost{}, persistenceError(err)
	}
	if _, err := s.spaces.Membership(ctx, post.SpaceID, userID); err != nil {
		return models.CommunityPost{}, err
	}
	return post, nil
}
