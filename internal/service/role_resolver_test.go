package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lumora-api/internal/models"
	"github.com/noah-isme/lumora-api/internal/repository"
)

type failingRoleRepo struct {
	repository.RoleRepository
}

func (failingRoleRepo) LatestForUser(ctx context.Context, userID string) (models.RoleAssignment, error) {
	return models.RoleAssignment{}, errors.New("connection reset")
}

func TestRoleResolverWithoutAssignments(t *testing.T) {
	db := setupServiceDB(t)
	resolver := NewRoleResolver(repository.NewRoleRepository(db), testLogger())

	require.Equal(t, models.RoleNone, resolver.Resolve(context.Background(), "u1"))
	require.Equal(t, models.RoleNone, resolver.Resolve(context.Background(), ""))
}

func TestRoleResolverLatestAssignmentWins(t *testing.T) {
	db := setupServiceDB(t)
	resolver := NewRoleResolver(repository.NewRoleRepository(db), testLogger())

	grantRole(t, db, "u1", models.RoleHeadAdmin)
	grantRole(t, db, "u1", models.RoleAdmin)
	require.Equal(t, models.RoleAdmin, resolver.Resolve(context.Background(), "u1"))

	grantRole(t, db, "u1", models.RoleHeadAdmin)
	require.Equal(t, models.RoleHeadAdmin, resolver.Resolve(context.Background(), "u1"))
}

func TestRoleResolverFailsClosed(t *testing.T) {
	resolver := NewRoleResolver(failingRoleRepo{}, testLogger())

	require.Equal(t, models.RoleNone, resolver.Resolve(context.Background(), "u1"))

	role, err := resolver.Require(context.Background(), "u1", models.RoleAdmin)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, models.RoleNone, role)
}

func TestRoleResolverRequire(t *testing.T) {
	db := setupServiceDB(t)
	resolver := NewRoleResolver(repository.NewRoleRepository(db), testLogger())
	grantRole(t, db, "admin-1", models.RoleAdmin)

	_, err := resolver.Require(context.Background(), "admin-1", models.RoleAdmin)
	require.NoError(t, err)

	_, err = resolver.Require(context.Background(), "admin-1", models.RoleHeadAdmin)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = resolver.Require(context.Background(), "nobody", models.RoleNone)
	require.NoError(t, err)
}
