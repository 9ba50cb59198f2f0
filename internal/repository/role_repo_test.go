package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/lumora-api/internal/models"
)

func TestRoleRepositoryLatestForUserPrefersNewestRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoleRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	older := models.RoleAssignment{UserID: "u1", Role: models.RoleHeadAdmin, CreatedBy: "system", CreatedAt: now.Add(-time.Hour)}
	newer := models.RoleAssignment{UserID: "u1", Role: models.RoleAdmin, CreatedBy: "h1", CreatedAt: now}
	require.NoError(t, repo.Create(ctx, &older))
	require.NoError(t, repo.Create(ctx, &newer))

	latest, err := repo.LatestForUser(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, newer.ID, latest.ID)
	require.Equal(t, models.RoleAdmin, latest.Role)

	_, err = repo.LatestForUser(ctx, "nobody")
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRoleRepositoryDeleteReportsMissingRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoleRepository(db)
	ctx := context.Background()

	assignment := models.RoleAssignment{UserID: "u2", Role: models.RoleAdmin, CreatedBy: "h1"}
	require.NoError(t, repo.Create(ctx, &assignment))

	loaded, err := repo.Get(ctx, assignment.ID)
	require.NoError(t, err)
	require.Equal(t, "u2", loaded.UserID)

	require.NoError(t, repo.Delete(ctx, assignment.ID))
	_, err = repo.Get(ctx, assignment.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.ErrorIs(t, repo.Delete(ctx, assignment.ID), gorm.ErrRecordNotFound)

	exists, err := repo.ExistsWithRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	require.False(t, exists)
}
