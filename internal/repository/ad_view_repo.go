package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/lumora-api/internal/models"
)

// AdViewRepository persists ad-gate progress, one row per user.
type AdViewRepository interface {
	FindByUser(ctx context.Context, userID string) (models.AdViewState, error)
	Upsert(ctx context.Context, state *models.AdViewState) error
}

type adViewRepository struct {
	db *gorm.DB
}

// NewAdViewRepository constructs the ad view repository.
func NewAdViewRepository(db *gorm.DB) AdViewRepository {
	return &adViewRepository{db: db}
}

func (r *adViewRepository) FindByUser(ctx context.Context, userID string) (models.AdViewState, error) {
	var state models.AdViewState
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&state).Error; err != nil {
		return models.AdViewState{}, err
	}
	return state, nil
}

// Upsert inserts the row on first use and updates it in place afterwards.
func (r *adViewRepository) Upsert(ctx context.Context, state *models.AdViewState) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"video_1_watched", "video_2_watched", "last_watched_at"}),
	}).Create(state).Error
}
