package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/lumora-api/internal/models"
	"github.com/noah-isme/lumora-api/internal/repository"
)

// RoleResolver determines the privilege tier of an identity and guards privileged operations.
type RoleResolver interface {
	Resolve(ctx context.Context, userID string) models.Role
	Require(ctx context.Context, userID string, minimum models.Role) (models.Role, error)
}

type roleResolver struct {
	roles  repository.RoleRepository
	logger zerolog.Logger
}

// NewRoleResolver constructs the resolver.
func NewRoleResolver(roles repository.RoleRepository, logger zerolog.Logger) RoleResolver {
	return &roleResolver{
		roles:  roles,
		logger: logger.With().Str("component", "role_resolver").Logger(),
	}
}

// Resolve returns the role of the most recent assignment. Lookup faults resolve to RoleNone.
func (r *roleResolver) Resolve(ctx context.Context, userID string) models.Role {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.RoleNone
	}

	assignment, err := r.roles.LatestForUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Warn().Err(err).Str("user_id", userID).Msg("role lookup failed, treating as unprivileged")
		}
		return models.RoleNone
	}

	return models.ParseRole(string(assignment.Role))
}

func (r *roleResolver) Require(ctx context.Context, userID string, minimum models.Role) (models.Role, error) {
	role := r.Resolve(ctx, userID)
	if !role.AtLeast(minimum) {
		return role, ErrUnauthorized
	}
	return role, nil
}
