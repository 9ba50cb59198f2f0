package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit action tags written to AuditRecord.ActionType.
const (
	AuditActionAddAdmin           = "add_admin"
	AuditActionRemoveAdmin        = "remove_admin"
	AuditActionSendMessage        = "send_message"
	AuditActionUploadFile         = "upload_file"
	AuditActionBootstrapHeadAdmin = "bootstrap_head_admin"
)

// AuditRecord is an append-only trail entry for a privileged action.
type AuditRecord struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	AdminID    string            `gorm:"size:64;index;not null" json:"admin_id"`
	ActionType string            `gorm:"size:64;index;not null" json:"action_type"`
	TargetID   *string           `gorm:"size:64" json:"target_id"`
	TargetType *string           `gorm:"size:64" json:"target_type"`
	Details    datatypes.JSONMap `gorm:"type:json" json:"details"`
	CreatedAt  time.Time         `gorm:"index" json:"created_at"`
}

// TableName keeps the table name used by the hosted schema.
func (AuditRecord) TableName() string {
	return "admin_audit_logs"
}
