package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/lumora-api/internal/dto"
	"github.com/noah-isme/lumora-api/internal/models"
	"github.com/noah-isme/lumora-api/internal/repository"
)

// AdminDirectoryService serves the admin-only identity lookups.
type AdminDirectoryService interface {
	ListAdmins(ctx context.Context) ([]dto.AdminAssignmentResponse, error)
	FindUser(ctx context.Context, email string) (dto.UserLookupResponse, error)
	ListUsersWithEmails(ctx context.Context) ([]dto.UserWithEmailResponse, error)
}

type adminDirectoryService struct {
	users    repository.UserRepository
	roles    repository.RoleRepository
	profiles repository.ProfileRepository
	logger   zerolog.Logger
}

// NewAdminDirectoryService constructs the directory service.
func NewAdminDirectoryService(users repository.UserRepository, roles repository.RoleRepository, profiles repository.ProfileRepository, logger zerolog.Logger) AdminDirectoryService {
	return &adminDirectoryService{
		users:    users,
		roles:    roles,
		profiles: profiles,
		logger:   logger.With().Str("component", "admin_directory_service").Logger(),
	}
}

func (s *adminDirectoryService) ListAdmins(ctx context.Context) ([]dto.AdminAssignmentResponse, error) {
	assignments, err := s.roles.List(ctx)
	if err != nil {
		return nil, persistenceError(err)
	}

	ids := make([]string, 0, len(assignments))
	for _, assignment := range assignments {
		ids = append(ids, assignment.UserID)
	}

	emails := make(map[string]string, len(ids))
	if len(ids) > 0 {
		users, err := s.users.ListByIDs(ctx, ids)
		if err != nil {
			s.logger.Warn().Err(err).Msg("failed to resolve admin emails")
		}
		for _, user := range users {
			emails[user.ID] = user.Email
		}
	}

	responses := make([]dto.AdminAssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, dto.AdminAssignmentResponse{
			ID:        assignment.ID,
			UserID:    assignment.UserID,
			Email:     emails[assignment.UserID],
			Role:      models.ParseRole(string(assignment.Role)),
			CreatedBy: assignment.CreatedBy,
			CreatedAt: assignment.CreatedAt,
		})
	}
	return responses, nil
}

func (s *adminDirectoryService) FindUser(ctx context.Context, email string) (dto.UserLookupResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return dto.UserLookupResponse{}, invalidInput("email is required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return dto.UserLookupResponse{}, notFoundOr(err, ErrIdentityNotFound)
	}
	return dto.NewUserLookupResponse(user), nil
}

// ListUsersWithEmails merges every identity with its profile. Identities without a profile keep empty profile fields.
func (s *adminDirectoryService) ListUsersWithEmails(ctx context.Context) ([]dto.UserWithEmailResponse, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, persistenceError(err)
	}
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, persistenceError(err)
	}

	byUser := make(map[string]models.Profile, len(profiles))
	for _, profile := range profiles {
		byUser[profile.UserID] = profile
	}

	responses := make([]dto.UserWithEmailResponse, 0, len(users))
	for _, user := range users {
		profile := byUser[user.ID]
		responses = append(responses, dto.UserWithEmailResponse{
			UserID:     user.ID,
			Email:      user.Email,
			FullName:   user.FullName,
			Username:   profile.Username,
			School:     profile.School,
			Department: profile.Department,
			Level:      profile.Level,
			IsOnline:   profile.IsOnline,
			LastSeenAt: profile.LastSeenAt,
			CreatedAt:  user.CreatedAt,
		})
	}
	return responses, nil
}
