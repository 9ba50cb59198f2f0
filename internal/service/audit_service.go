package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/lumora-api/internal/dto"
	"github.com/noah-isme/lumora-api/internal/models"
	"github.com/noah-isme/lumora-api/internal/repository"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 100
)

// AuditEntry captures the details required to persist an audit record.
type AuditEntry struct {
	AdminID    string
	ActionType string
	TargetID   string
	TargetType string
	Details    map[string]interface{}
}

// AuditService appends to and reads the audit trail.
type AuditService interface {
	Record(ctx context.Context, entry AuditEntry) (models.AuditRecord, error)
	ListRecent(ctx context.Context, req dto.AuditListRequest) ([]dto.AuditRecordResponse, error)
}

type auditService struct {
	repo   repository.AuditRepository
	users  repository.UserRepository
	logger zerolog.Logger
}

// NewAuditService constructs the audit trail service.
func NewAuditService(repo repository.AuditRepository, users repository.UserRepository, logger zerolog.Logger) AuditService {
	return &auditService{
		repo:   repo,
		users:  users,
		logger: logger.With().Str("component", "audit_service").Logger(),
	}
}

func (s *auditService) Record(ctx context.Context, entry AuditEntry) (models.AuditRecord, error) {
	return appendAudit(ctx, s.repo, entry)
}

// appendAudit writes one audit record through repo, which may be bound to a transaction.
func appendAudit(ctx context.Context, repo repository.AuditRepository, entry AuditEntry) (models.AuditRecord, error) {
	if strings.TrimSpace(entry.ActionType) == "" {
		return models.AuditRecord{}, invalidInput("action type is required")
	}
	if strings.TrimSpace(entry.AdminID) == "" {
		return models.AuditRecord{}, invalidInput("admin id is required")
	}

	record := models.AuditRecord{
		AdminID:    strings.TrimSpace(entry.AdminID),
		ActionType: strings.ToLower(strings.TrimSpace(entry.ActionType)),
		TargetID:   optionalString(entry.TargetID),
		TargetType: optionalString(entry.TargetType),
		Details:    sanitizeDetails(entry.Details),
	}

	if err := repo.Create(ctx, &record); err != nil {
		return models.AuditRecord{}, persistenceError(err)
	}
	return record, nil
}

func (s *auditService) ListRecent(ctx context.Context, req dto.AuditListRequest) ([]dto.AuditRecordResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	records, err := s.repo.ListRecent(ctx, repository.AuditFilter{
		Limit:      limit,
		ActionType: strings.TrimSpace(req.ActionType),
	})
	if err != nil {
		return nil, persistenceError(err)
	}

	labels := s.actorLabels(ctx, records)

	responses := make([]dto.AuditRecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, dto.NewAuditRecordResponse(record, labels[record.AdminID]))
	}
	return responses, nil
}

// actorLabels resolves display labels in one batch. A failed lookup leaves every actor unlabelled.
func (s *auditService) actorLabels(ctx context.Context, records []models.AuditRecord) map[string]string {
	labels := make(map[string]string)
	if s.users == nil || len(records) == 0 {
		return labels
	}

	seen := make(map[string]struct{}, len(records))
	ids := make([]string, 0, len(records))
	for _, record := range records {
		if _, ok := seen[record.AdminID]; ok {
			continue
		}
		seen[record.AdminID] = struct{}{}
		ids = append(ids, record.AdminID)
	}

	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to resolve audit actors")
		return labels
	}
	for _, user := range users {
		labels[user.ID] = user.DisplayLabel()
	}
	return labels
}

func sanitizeDetails(details map[string]interface{}) datatypes.JSONMap {
	sanitized := datatypes.JSONMap{}
	for key, value := range details {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "token") || strings.Contains(lower, "password") || strings.Contains(lower, "secret") {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
