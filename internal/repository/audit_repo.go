package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/lumora-api/internal/models"
)

// AuditFilter narrows audit trail queries.
type AuditFilter struct {
	Limit      int
	ActionType string
}

// AuditRepository appends and reads audit records. Records are never updated or deleted.
type AuditRepository interface {
	Create(ctx context.Context, record *models.AuditRecord) error
	ListRecent(ctx context.Context, filter AuditFilter) ([]models.AuditRecord, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository constructs the audit trail repository.
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, record *models.AuditRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *auditRepository) ListRecent(ctx context.Context, filter AuditFilter) ([]models.AuditRecord, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditRecord{})

	if filter.ActionType != "" {
		query = query.Where("action_type = ?", filter.ActionType)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var records []models.AuditRecord
	if err := query.Order("created_at DESC").Order("id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
