package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/lumora-api/internal/models"
)

// QuizAttempt is one finished quiz as submitted by a user.
type QuizAttempt struct {
	UserID      string
	DisplayName string
	QuizID      string
	Score       int
	Total       int
	Percentage  float64
	At          time.Time
}

// LeaderboardRepository persists accumulated quiz results.
type LeaderboardRepository interface {
	Get(ctx context.Context, userID string) (models.LeaderboardEntry, error)
	RecordAttempt(ctx context.Context, attempt QuizAttempt) (models.LeaderboardEntry, error)
	Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

type leaderboardRepository struct {
	db *gorm.DB
}

// NewLeaderboardRepository constructs the leaderboard repository.
func NewLeaderboardRepository(db *gorm.DB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func (r *leaderboardRepository) Get(ctx context.Context, userID string) (models.LeaderboardEntry, error) {
	var entry models.LeaderboardEntry
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&entry).Error; err != nil {
		return models.LeaderboardEntry{}, err
	}
	return entry, nil
}

// RecordAttempt folds an attempt into the user's totals. A quiz counts once: a resubmission only adds
// the points by which it beats the stored best score. Totals are incremented in SQL under a row
// lock on the quiz result, so concurrent submissions do not overwrite each other.
func (r *leaderboardRepository) RecordAttempt(ctx context.Context, attempt QuizAttempt) (models.LeaderboardEntry, error) {
	var entry models.LeaderboardEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := models.LeaderboardEntry{UserID: attempt.UserID, DisplayName: attempt.DisplayName, UpdatedAt: attempt.At}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}

		fresh := models.QuizResult{UserID: attempt.UserID, QuizID: attempt.QuizID, Total: attempt.Total, UpdatedAt: attempt.At}
		inserted := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&fresh)
		if inserted.Error != nil {
			return inserted.Error
		}
		firstAttempt := inserted.RowsAffected == 1

		var result models.QuizResult
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND quiz_id = ?", attempt.UserID, attempt.QuizID).
			Take(&result).Error; err != nil {
			return err
		}

		gain := 0
		resultUpdates := map[string]interface{}{
			"attempts":   gorm.Expr("attempts + 1"),
			"updated_at": attempt.At,
		}
		if attempt.Score > result.BestScore {
			gain = attempt.Score - result.BestScore
			resultUpdates["best_score"] = attempt.Score
			resultUpdates["total"] = attempt.Total
		}
		if err := tx.Model(&models.QuizResult{}).
			Where("user_id = ? AND quiz_id = ?", attempt.UserID, attempt.QuizID).
			Updates(resultUpdates).Error; err != nil {
			return err
		}

		taken := 0
		if firstAttempt {
			taken = 1
		}
		if err := tx.Model(&models.LeaderboardEntry{}).
			Where("user_id = ?", attempt.UserID).
			Updates(map[string]interface{}{
				"display_name":    attempt.DisplayName,
				"total_score":     gorm.Expr("total_score + ?", gain),
				"quizzes_taken":   gorm.Expr("quizzes_taken + ?", taken),
				"best_percentage": gorm.Expr("CASE WHEN best_percentage < ? THEN ? ELSE best_percentage END", attempt.Percentage, attempt.Percentage),
				"updated_at":      attempt.At,
			}).Error; err != nil {
			return err
		}

		return tx.Where("user_id = ?", attempt.UserID).Take(&entry).Error
	})
	if err != nil {
		return models.LeaderboardEntry{}, err
	}
	return entry, nil
}

func (r *leaderboardRepository) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	var entries []models.LeaderboardEntry
	if err := r.db.WithContext(ctx).
		Order("total_score DESC").
		Order("best_percentage DESC").
		Order("updated_at ASC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
