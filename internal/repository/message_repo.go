package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/lumora-api/internal/models"
)

// MessageRepository handles persistence for private messages.
type MessageRepository interface {
	Create(ctx context.Context, message *models.PrivateMessage) error
	ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]models.PrivateMessage, error)
	MarkRead(ctx context.Context, id uint, recipientID string) (models.PrivateMessage, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository constructs a repository backed by GORM.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.PrivateMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) ListByRecipient(ctx context.Context, recipientID string, limit, offset int) ([]models.PrivateMessage, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var messages []models.PrivateMessage
	if err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, id uint, recipientID string) (models.PrivateMessage, error) {
	var message models.PrivateMessage
	if err := r.db.WithContext(ctx).Where("id = ? AND recipient_id = ?", id, recipientID).First(&message).Error; err != nil {
		return models.PrivateMessage{}, err
	}

	if message.Read {
		return message, nil
	}

	message.Read = true
	if err := r.db.WithContext(ctx).Save(&message).Error; err != nil {
		return models.PrivateMessage{}, err
	}

	return message, nil
}
