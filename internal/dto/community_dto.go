package dto

import (
	"time"

	"github.com/noah-isme/lumora-api/internal/models"
)

// CommunityPostCreateRequest is the payload for a new post.
type CommunityPostCreateRequest struct {
	Content string `json:"content" validate:"required,min=1,max=8000"`
}

// CommunityReplyCreateRequest is the payload for a new reply.
type CommunityReplyCreateRequest struct {
	Content string `json:"content" validate:"required,min=1,max=4000"`
}

// CommunityPostResponse is the serialized representation of a post.
type CommunityPostResponse struct {
	ID        uint      `json:"id"`
	SpaceID   uint      `json:"space_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommunityReplyResponse is the serialized representation of a reply.
type CommunityReplyResponse struct {
	ID        uint      `json:"id"`
	PostID    uint      `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCommunityPostResponse converts a post model to DTO.
func NewCommunityPostResponse(post models.CommunityPost) CommunityPostResponse {
	return CommunityPostResponse{
		ID:        post.ID,
		SpaceID:   post.SpaceID,
		AuthorID:  post.AuthorID,
		Content:   post.Content,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}

// NewCommunityReplyResponse converts a reply model to DTO.
func NewCommunityReplyResponse(reply models.CommunityReply) CommunityReplyResponse {
	return CommunityReplyResponse{
		ID:        reply.ID,
		PostID:    reply.PostID,
		AuthorID:  reply.AuthorID,
		Content:   reply.Content,
		CreatedAt: reply.CreatedAt,
	}
}
