package models

import "time"

// Space membership roles.
const (
	SpaceRoleOwner  = "owner"
	SpaceRoleMember = "member"
)

// DepartmentSpace groups users of one school, department and level.
type DepartmentSpace struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	School     string    `gorm:"size:255;not null;uniqueIndex:idx_space_scope" json:"school"`
	Department string    `gorm:"size:255;not null;uniqueIndex:idx_space_scope" json:"department"`
	Level      string    `gorm:"size:32;not null;uniqueIndex:idx_space_scope" json:"level"`
	CodeHash   string    `gorm:"size:255;not null" json:"-"`
	CreatedBy  string    `gorm:"size:64" json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// SpaceMembership links an identity to a department space.
type SpaceMembership struct {
	ID       uint            `gorm:"primaryKey" json:"id"`
	SpaceID  uint            `gorm:"not null;uniqueIndex:idx_space_member" json:"space_id"`
	UserID   string          `gorm:"size:64;not null;uniqueIndex:idx_space_member" json:"user_id"`
	Role     string          `gorm:"size:16;not null" json:"role"`
	JoinedAt time.Time       `gorm:"autoCreateTime" json:"joined_at"`
	Space    DepartmentSpace `gorm:"foreignKey:SpaceID" json:"space"`
}

// CommunityPost is a discussion post published inside a department space.
type CommunityPost struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	SpaceID   uint             `gorm:"index;not null" json:"space_id"`
	AuthorID  string           `gorm:"size:64;index;not null" json:"author_id"`
	Content   string           `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Replies   []CommunityReply `gorm:"foreignKey:PostID" json:"replies,omitempty"`
}

// CommunityReply answers a community post.
type CommunityReply struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"index;not null" json:"post_id"`
	AuthorID  string    `gorm:"size:64;index;not null" json:"author_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
