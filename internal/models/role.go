package models

import (
	"strings"
	"time"
)

// Role is the closed set of privilege tiers an identity can hold.
type Role string

const (
	RoleNone      Role = "user"
	RoleAdmin     Role = "admin"
	RoleHeadAdmin Role = "head_admin"
)

// ParseRole maps a stored value onto a known role. Unknown values collapse to RoleNone.
func ParseRole(value string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleHeadAdmin:
		return RoleHeadAdmin
	default:
		return RoleNone
	}
}

func (r Role) rank() int {
	switch r {
	case RoleHeadAdmin:
		return 2
	case RoleAdmin:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether r is the same as or above minimum.
func (r Role) AtLeast(minimum Role) bool {
	return r.rank() >= minimum.rank()
}

// IsAdmin is true for admin and head_admin.
func (r Role) IsAdmin() bool {
	return r.AtLeast(RoleAdmin)
}

// IsHeadAdmin is true only for head_admin.
func (r Role) IsHeadAdmin() bool {
	return r == RoleHeadAdmin
}

func (r Role) String() string {
	return string(r)
}

// RoleAssignment grants an elevated role to an identity. The newest row per user wins.
type RoleAssignment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:64;index;not null" json:"user_id"`
	Role      Role      `gorm:"size:32;not null" json:"role"`
	CreatedBy string    `gorm:"size:64" json:"created_by"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName keeps the table name used by the hosted schema.
func (RoleAssignment) TableName() string {
	return "user_roles"
}
