package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/lumora-api/internal/models"
)

// SpaceRepository persists department spaces and their memberships.
type SpaceRepository interface {
	FindByScope(ctx context.Context, school, department, level string) (models.DepartmentSpace, error)
	CreateWithOwner(ctx context.Context, space *models.DepartmentSpace, owner string) (models.SpaceMembership, error)
	FindMembership(ctx context.Context, spaceID uint, userID string) (models.SpaceMembership, error)
	AddMember(ctx context.Context, membership *models.SpaceMembership) error
	ListForUser(ctx context.Context, userID string) ([]models.SpaceMembership, error)
}

type spaceRepository struct {
	db *gorm.DB
}

// NewSpaceRepository constructs the department space repository.
func NewSpaceRepository(db *gorm.DB) SpaceRepository {
	return &spaceRepository{db: db}
}

func (r *spaceRepository) FindByScope(ctx context.Context, school, department, level string) (models.DepartmentSpace, error) {
	var space models.DepartmentSpace
	err := r.db.WithContext(ctx).
		Where("school = ? AND department = ? AND level = ?", school, department, level).
		Take(&space).Error
	if err != nil {
		return models.DepartmentSpace{}, err
	}
	return space, nil
}

func (r *spaceRepository) CreateWithOwner(ctx context.Context, space *models.DepartmentSpace, owner string) (models.SpaceMembership, error) {
	var membership models.SpaceMembership
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(space).Error; err != nil {
			return err
		}

		membership = models.SpaceMembership{
			SpaceID: space.ID,
			UserID:  owner,
			Role:    models.SpaceRoleOwner,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return models.SpaceMembership{}, err
	}

	membership.Space = *space
	return membership, nil
}

func (r *spaceRepository) FindMembership(ctx context.Context, spaceID uint, userID string) (models.SpaceMembership, error) {
	var membership models.SpaceMembership
	err := r.db.WithContext(ctx).
		Preload("Space").
		Where("space_id = ? AND user_id = ?", spaceID, userID).
		Take(&membership).Error
	if err != nil {
		return models.SpaceMembership{}, err
	}
	return membership, nil
}

func (r *spaceRepository) AddMember(ctx context.Context, membership *models.SpaceMembership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

func (r *spaceRepository) ListForUser(ctx context.Context, userID string) ([]models.SpaceMembership, error) {
	var memberships []models.SpaceMembership
	if err := r.db.WithContext(ctx).
		Preload("Space").
		Where("user_id = ?", userID).
		Order("joined_at DESC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}
