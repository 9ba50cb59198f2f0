package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/lumora-api/internal/dto"
	"github.com/noah-isme/lumora-api/internal/models"
	"github.com/noah-isme/lumora-api/internal/repository"
)

var (
	// ErrSpaceCodeMismatch indicates the join code does not match the space.
	ErrSpaceCodeMismatch = fmt.Errorf("%w: join code does not match", ErrUnauthorized)
	// ErrSpaceNotFound indicates the department space does not exist.
	ErrSpaceNotFound = fmt.Errorf("%w: department space", ErrNotFound)
)

// SpaceAction is one operation of the department-space endpoint.
type SpaceAction interface {
	spaceAction()
}

// GetUserSpaces lists the caller's memberships.
type GetUserSpaces struct{}

// CreateOrJoinSpace creates the space identified by the scope or joins it with the code.
type CreateOrJoinSpace struct {
	School     string
	Department string
	Level      string
	Code       string
}

func (GetUserSpaces) spaceAction()     {}
func (CreateOrJoinSpace) spaceAction() {}

// DecodeSpaceAction maps the discriminated request onto its variant.
func DecodeSpaceAction(req dto.SpaceActionRequest) (SpaceAction, error) {
	switch strings.TrimSpace(req.Action) {
	case "get_user_spaces":
		return GetUserSpaces{}, nil
	case "create_or_join":
		return CreateOrJoinSpace{
			School:     req.School,
			Department: req.Department,
			Level:      req.Level,
			Code:       req.Code,
		}, nil
	default:
		return nil, invalidInput("unknown space action")
	}
}

// SpaceService manages department spaces and their memberships.
type SpaceService interface {
	Dispatch(ctx context.Context, userID string, action SpaceAction) (interface{}, error)
	GetUserSpaces(ctx context.Context, userID string) ([]dto.SpaceResponse, error)
	CreateOrJoin(ctx context.Context, userID string, req CreateOrJoinSpace) (dto.SpaceJoinResponse, error)
	Membership(ctx context.Context, spaceID uint, userID string) (models.SpaceMembership, error)
}

type spaceService struct {
	repo   repository.SpaceRepository
	logger zerolog.Logger
}

// NewSpaceService constructs the department space service.
func NewSpaceService(repo repository.SpaceRepository, logger zerolog.Logger) SpaceService {
	return &spaceService{
		repo:   repo,
		logger: logger.With().Str("component", "space_service").Logger(),
	}
}

func (s *spaceService) Dispatch(ctx context.Context, userID string, action SpaceAction) (interface{}, error) {
	switch a := action.(type) {
	case GetUserSpaces:
		return s.GetUserSpaces(ctx, userID)
	case CreateOrJoinSpace:
		return s.CreateOrJoin(ctx, userID, a)
	default:
		return nil, invalidInput("unsupported space action")
	}
}

func (s *spaceService) GetUserSpaces(ctx context.Context, userID string) ([]dto.SpaceResponse, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	memberships, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, persistenceError(err)
	}

	responses := make([]dto.SpaceResponse, 0, len(memberships))
	for _, membership := range memberships {
		responses = append(responses, dto.NewSpaceResponse(membership))
	}
	return responses, nil
}

func (s *spaceService) CreateOrJoin(ctx context.Context, userID string, req CreateOrJoinSpace) (dto.SpaceJoinResponse, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return dto.SpaceJoinResponse{}, ErrUnauthorized
	}

	school, department, level := normalizeScope(req.School), normalizeScope(req.Department), normalizeScope(req.Level)
	code := strings.TrimSpace(req.Code)
	if school == "" || department == "" || level == "" {
		return dto.SpaceJoinResponse{}, invalidInput("school, department and level are required")
	}
	if code == "" {
		return dto.SpaceJoinResponse{}, invalidInput("code is required")
	}

	space, err := s.repo.FindByScope(ctx, school, department, level)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.create(ctx, userID, school, department, level, code)
	}
	if err != nil {
		return dto.SpaceJoinResponse{}, persistenceError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(space.CodeHash), []byte(code)); err != nil {
		s.logger.Warn().Uint("space_id", space.ID).Str("user_id", userID).Msg("space join code mismatch")
		return dto.SpaceJoinResponse{}, ErrSpaceCodeMismatch
	}

	existing, err := s.repo.FindMembership(ctx, space.ID, userID)
	if err == nil {
		return dto.SpaceJoinResponse{Space: dto.NewSpaceResponse(existing)}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SpaceJoinResponse{}, persistenceError(err)
	}

	membership := models.SpaceMembership{
		SpaceID: space.ID,
		UserID:  userID,
		Role:    models.SpaceRoleMember,
	}
	if err := s.repo.AddMember(ctx, &membership); err != nil {
		return dto.SpaceJoinResponse{}, persistenceError(err)
	}
	membership.Space = space

	s.logger.Info().Uint("space_id", space.ID).Str("user_id", userID).Msg("user joined department space")
	return dto.SpaceJoinResponse{Space: dto.NewSpaceResponse(membership), Joined: true}, nil
}

func (s *spaceService) create(ctx context.Context, userID, school, department, level, code string) (dto.SpaceJoinResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return dto.SpaceJoinResponse{}, fmt.Errorf("hash space code: %w", err)
	}

	space := models.DepartmentSpace{
		School:     school,
		Department: department,
		Level:      level,
		CodeHash:   string(hash),
		CreatedBy:  userID,
	}
	membership, err := s.repo.CreateWithOwner(ctx, &space, userID)
	if err != nil {
		return dto.SpaceJoinResponse{}, persistenceError(err)
	}

	s.logger.Info().Uint("space_id", space.ID).Str("user_id", userID).Msg("department space created")
	return dto.SpaceJoinResponse{Space: dto.NewSpaceResponse(membership), Created: true, Joined: true}, nil
}

func (s *spaceService) Membership(ctx context.Context, spaceID uint, userID string) (models.SpaceMembership, error) {
	membership, err := s.repo.FindMembership(ctx, spaceID, strings.TrimSpace(userID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.SpaceMembership{}, ErrNotSpaceMember
		}
		return models.SpaceMembership{}, persistenceError(err)
	}
	return membership, nil
}

func normalizeScope(value string) string {
	return strings.ToLower(strings.Join(strings.Fields(value), " "))
}
