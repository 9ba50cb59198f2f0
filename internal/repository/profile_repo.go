package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/lumora-api/internal/models"
)

// ProfileRepository persists identity extensions and presence columns.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	SetPresence(ctx context.Context, userID string, online bool, seenAt time.Time) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository constructs the profile repository.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Get(ctx context.Context, userID string) (models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

func (r *profileRepository) List(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := r.db.WithContext(ctx).Order("updated_at DESC").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *profileRepository) SetPresence(ctx context.Context, userID string, online bool, seenAt time.Time) error {
	profile := models.Profile{
		UserID:     userID,
		IsOnline:   online,
		LastSeenAt: &seenAt,
		UpdatedAt:  seenAt,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_online", "last_seen_at", "updated_at"}),
	}).Create(&profile).Error
}
