package models

import "time"

// LeaderboardEntry accumulates quiz results per user.
type LeaderboardEntry struct {
	UserID         string    `gorm:"primaryKey;size:64" json:"user_id"`
	DisplayName    string    `gorm:"size:255" json:"display_name"`
	TotalScore     int       `gorm:"not null;default:0;index" json:"total_score"`
	QuizzesTaken   int       `gorm:"not null;default:0" json:"quizzes_taken"`
	BestPercentage float64   `gorm:"not null;default:0" json:"best_percentage"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// QuizResult keeps the best score a user reached on one quiz. Only improvements reach the leaderboard.
type QuizResult struct {
	UserID    string    `gorm:"primaryKey;size:64" json:"user_id"`
	QuizID    string    `gorm:"primaryKey;size:128" json:"quiz_id"`
	BestScore int       `gorm:"not null" json:"best_score"`
	Total     int       `gorm:"not null" json:"total"`
	Attempts  int       `gorm:"not null" json:"attempts"`
	UpdatedAt time.Time `json:"updated_at"`
}
