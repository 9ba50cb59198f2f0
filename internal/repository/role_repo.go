package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/lumora-api/internal/models"
)

// RoleRepository persists role assignments.
type RoleRepository interface {
	LatestForUser(ctx context.Context, userID string) (models.RoleAssignment, error)
	Get(ctx context.Context, id uint) (models.RoleAssignment, error)
	Create(ctx context.Context, assignment *models.RoleAssignment) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]models.RoleAssignment, error)
	ExistsWithRole(ctx context.Context, role models.Role) (bool, error)
}

type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository constructs the role assignment repository.
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) LatestForUser(ctx context.Context, userID string) (models.RoleAssignment, error) {
	var assignment models.RoleAssignment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Take(&assignment).Error
	if err != nil {
		return models.RoleAssignment{}, err
	}
	return assignment, nil
}

func (r *roleRepository) Get(ctx context.Context, id uint) (models.RoleAssignment, error) {
	var assignment models.RoleAssignment
	if err := r.db.WithContext(ctx).Take(&assignment, id).Error; err != nil {
		return models.RoleAssignment{}, err
	}
	return assignment, nil
}

func (r *roleRepository) Create(ctx context.Context, assignment *models.RoleAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

// Delete hard-deletes the assignment. It reports gorm.ErrRecordNotFound when no row matched.
func (r *roleRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.RoleAssignment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *roleRepository) List(ctx context.Context) ([]models.RoleAssignment, error) {
	var assignments []models.RoleAssignment
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *roleRepository) ExistsWithRole(ctx context.Context, role models.Role) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.RoleAssignment{}).Where("role = ?", role).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
