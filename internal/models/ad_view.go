package models

import "time"

// AdGateTokenAudience marks stage tokens issued by the ad gate. Session middleware refuses them.
const AdGateTokenAudience = "lumora-ad-gate"

// AdViewState tracks a user's progress through the two-video unlock flow.
type AdViewState struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        string     `gorm:"size:64;uniqueIndex;not null" json:"user_id"`
	Video1Watched bool       `gorm:"column:video_1_watched;not null;default:false" json:"video_1_watched"`
	Video2Watched bool       `gorm:"column:video_2_watched;not null;default:false" json:"video_2_watched"`
	LastWatchedAt *time.Time `json:"last_watched_at"`
}

// TableName keeps the table name used by the hosted schema.
func (AdViewState) TableName() string {
	return "ad_views"
}

// Unlocked reports whether both stages are complete.
func (s AdViewState) Unlocked() bool {
	return s.Video1Watched && s.Video2Watched
}
