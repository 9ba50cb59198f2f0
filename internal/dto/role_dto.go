package dto

import "github.com/noah-isme/lumora-api/internal/models"

// RoleResponse reports the caller's resolved privilege tier.
type RoleResponse struct {
	Role        models.Role `json:"role"`
	IsAdmin     bool        `json:"is_admin"`
	IsHeadAdmin bool        `json:"is_head_admin"`
}

// NewRoleResponse derives the predicates from a role.
func NewRoleResponse(role models.Role) RoleResponse {
	return RoleResponse{
		Role:        role,
		IsAdmin:     role.IsAdmin(),
		IsHeadAdmin: role.IsHeadAdmin(),
	}
}
