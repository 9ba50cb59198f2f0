package dto

import (
	"time"

	"github.com/noah-isme/lumora-api/internal/models"
)

// SpaceActionRequest is the raw payload of the department-space function endpoint.
type SpaceActionRequest struct {
	Action     string `json:"action" validate:"required,oneof=get_user_spaces create_or_join"`
	School     string `json:"school"`
	Department string `json:"department"`
	Level      string `json:"level"`
	Code       string `json:"code"`
}

// CreateOrJoinSpaceRequest identifies a space and its join code.
type CreateOrJoinSpaceRequest struct {
	School     string `json:"school" validate:"required,max=255"`
	Department string `json:"department" validate:"required,max=255"`
	Level      string `json:"level" validate:"required,max=32"`
	Code       string `json:"code" validate:"required,min=4,max=64"`
}

// SpaceResponse is a department space as seen by a member.
type SpaceResponse struct {
	ID         uint      `json:"id"`
	School     string    `json:"school"`
	Department string    `json:"department"`
	Level      string    `json:"level"`
	Role       string    `json:"role"`
	JoinedAt   time.Time `json:"joined_at"`
}

// NewSpaceResponse converts a membership (with its space preloaded) into a DTO.
func NewSpaceResponse(membership models.SpaceMembership) SpaceResponse {
	return SpaceResponse{
		ID:         membership.SpaceID,
		School:     membership.Space.School,
		Department: membership.Space.Department,
		Level:      membership.Space.Level,
		Role:       membership.Role,
		JoinedAt:   membership.JoinedAt,
	}
}

// SpaceJoinResponse reports the outcome of create_or_join.
type SpaceJoinResponse struct {
	Space   SpaceResponse `json:"space"`
	Created bool          `json:"created"`
	Joined  bool          `json:"joined"`
}
