package models

import (
	"time"

	"gorm.io/datatypes"
)

// User mirrors an identity owned by the authentication provider. Rows are read-only for this service.
type User struct {
	ID        string            `gorm:"primaryKey;size:64" json:"id"`
	Email     string            `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FullName  string            `gorm:"size:255" json:"full_name"`
	AvatarURL string            `gorm:"size:512" json:"avatar_url"`
	Metadata  datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
}

// DisplayLabel returns the human-readable identity used in listings.
func (u User) DisplayLabel() string {
	if u.Email != "" {
		return u.Email
	}
	return u.FullName
}

// Profile extends an identity with platform specific attributes and presence.
type Profile struct {
	UserID     string     `gorm:"primaryKey;size:64" json:"user_id"`
	Username   string     `gorm:"size:128" json:"username"`
	School     string     `gorm:"size:255" json:"school"`
	Department string     `gorm:"size:255" json:"department"`
	Level      string     `gorm:"size:32" json:"level"`
	IsOnline   bool       `gorm:"not null;default:false" json:"is_online"`
	LastSeenAt *time.Time `json:"last_seen_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
