package dto

import (
	"time"

	"github.com/noah-isme/lumora-api/internal/models"
)

// UnknownActorLabel is shown when an audit actor cannot be resolved.
const UnknownActorLabel = "Unknown"

// AddAdminRequest is the payload for granting the admin role.
type AddAdminRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// SendMessageRequest is the payload for sending a private message.
type SendMessageRequest struct {
	RecipientEmail string `json:"recipient_email" validate:"required,email,max=255"`
	Message        string `json:"message" validate:"required,min=1,max=4000"`
}

// AuditListRequest captures audit trail query parameters.
type AuditListRequest struct {
	Limit      int
	ActionType string
}

// AuditRecordResponse is an audit record enriched with the actor's display label.
type AuditRecordResponse struct {
	ID         uint                   `json:"id"`
	AdminID    string                 `json:"admin_id"`
	AdminLabel string                 `json:"admin_label"`
	ActionType string                 `json:"action_type"`
	TargetID   *string                `json:"target_id"`
	TargetType *string                `json:"target_type"`
	Details    map[string]interface{} `json:"details"`
	CreatedAt  time.Time              `json:"created_at"`
}

// NewAuditRecordResponse converts an audit model to its DTO.
func NewAuditRecordResponse(record models.AuditRecord, label string) AuditRecordResponse {
	details := map[string]interface{}{}
	for key, value := range record.Details {
		details[key] = value
	}
	if label == "" {
		label = UnknownActorLabel
	}

	return AuditRecordResponse{
		ID:         record.ID,
		AdminID:    record.AdminID,
		AdminLabel: label,
		ActionType: record.ActionType,
		TargetID:   record.TargetID,
		TargetType: record.TargetType,
		Details:    details,
		CreatedAt:  record.CreatedAt,
	}
}

// AdminAssignmentResponse lists an admin role assignment with the assignee's email.
type AdminAssignmentResponse struct {
	ID        uint        `json:"id"`
	UserID    string      `json:"user_id"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CreatedBy string      `json:"created_by"`
	CreatedAt time.Time   `json:"created_at"`
}

// UserLookupResponse is returned by the find-user lookup.
type UserLookupResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// NewUserLookupResponse converts an identity to its lookup DTO.
func NewUserLookupResponse(user models.User) UserLookupResponse {
	return UserLookupResponse{ID: user.ID, Email: user.Email, FullName: user.FullName}
}

// UserWithEmailResponse merges a profile row with the identity email.
type UserWithEmailResponse struct {
	UserID     string     `json:"user_id"`
	Email      string     `json:"email"`
	FullName   string     `json:"full_name"`
	Username   string     `json:"username"`
	School     string     `json:"school"`
	Department string     `json:"department"`
	Level      string     `json:"level"`
	IsOnline   bool       `json:"is_online"`
	LastSeenAt *time.Time `json:"last_seen_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

// AdminActionResponse summarises the outcome of a privileged action.
type AdminActionResponse struct {
	Action   string `json:"action"`
	AuditID  uint   `json:"audit_id"`
	TargetID string `json:"target_id,omitempty"`
}

// PaginationMeta describes offset pagination of a listing.
type PaginationMeta struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}
