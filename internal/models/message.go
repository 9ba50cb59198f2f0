package models

import "time"

// PrivateMessage is a direct message between two identities.
type PrivateMessage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SenderID    string    `gorm:"size:64;index;not null" json:"sender_id"`
	RecipientID string    `gorm:"size:64;index;not null" json:"recipient_id"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	Read        bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
