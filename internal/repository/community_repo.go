package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/lumora-api/internal/models"
)

// CommunityRepository persists space discussion posts and replies.
type CommunityRepository interface {
	ListPosts(ctx context.Context, spaceID uint, limit, offset int) ([]models.CommunityPost, error)
	GetPost(ctx context.Context, id uint) (models.CommunityPost, error)
	CreatePost(ctx context.Context, post *models.CommunityPost) error
	ListReplies(ctx context.Context, postID uint, limit, offset int) ([]models.CommunityReply, error)
	CreateReply(ctx context.Context, reply *models.CommunityReply) error
}

type communityRepository struct {
	db *gorm.DB
}

// NewCommunityRepository constructs a GORM-backed repository.
func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

func (r *communityRepository) ListPosts(ctx context.Context, spaceID uint, limit, offset int) ([]models.CommunityPost, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var posts []models.CommunityPost
	if err := r.db.WithContext(ctx).
		Where("space_id = ?", spaceID).
		Order("updated_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, err
	}

	return posts, nil
}

func (r *communityRepository) GetPost(ctx context.Context, id uint) (models.CommunityPost, error) {
	var post models.CommunityPost
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return models.CommunityPost{}, err
	}
	return post, nil
}

func (r *communityRepository) CreatePost(ctx context.Context, post *models.CommunityPost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *communityRepository) ListReplies(ctx context.Context, postID uint, limit, offset int) ([]models.CommunityReply, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var replies []models.CommunityReply
	if err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&replies).Error; err != nil {
		return nil, err
	}

	return replies, nil
}

// CreateReply stores the reply and bumps the parent post so active threads float up.
func (r *communityRepository) CreateReply(ctx context.Context, reply *models.CommunityReply) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reply).Error; err != nil {
			return err
		}
		return tx.Model(&models.CommunityPost{}).
			Where("id = ?", reply.PostID).
			Update("updated_at", reply.CreatedAt).Error
	})
}
