package dto

import (
	"time"

	"github.com/noah-isme/lumora-api/internal/models"
)

// ScoreSubmitRequest records one finished quiz.
type ScoreSubmitRequest struct {
	QuizID string `json:"quiz_id" validate:"required,max=128"`
	Score  int    `json:"score" validate:"gte=0"`
	Total  int    `json:"total" validate:"required,gt=0,gtefield=Score"`
}

// LeaderboardEntryResponse is a ranked leaderboard row.
type LeaderboardEntryResponse struct {
	Rank           int       `json:"rank"`
	UserID         string    `json:"user_id"`
	DisplayName    string    `json:"display_name"`
	TotalScore     int       `json:"total_score"`
	QuizzesTaken   int       `json:"quizzes_taken"`
	BestPercentage float64   `json:"best_percentage"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LeaderboardResponse wraps the ranked rows.
type LeaderboardResponse struct {
	Entries     []LeaderboardEntryResponse `json:"entries"`
	GeneratedAt time.Time                  `json:"generated_at"`
	CacheHit    bool                       `json:"cache_hit"`
}

// NewLeaderboardEntryResponse converts a model into a ranked DTO.
func NewLeaderboardEntryResponse(rank int, entry models.LeaderboardEntry) LeaderboardEntryResponse {
	return LeaderboardEntryResponse{
		Rank:           rank,
		UserID:         entry.UserID,
		DisplayName:    entry.DisplayName,
		TotalScore:     entry.TotalScore,
		QuizzesTaken:   entry.QuizzesTaken,
		BestPercentage: entry.BestPercentage,
		UpdatedAt:      entry.UpdatedAt,
	}
}
