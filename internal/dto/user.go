package dto

import "github.com/noah-isme/logistics-tracker-api/internal/models"

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Role     models.UserRole `form:"role" validate:"omitempty,oneof=sender staff admin"`
	Search   string          `form:"q" validate:"omitempty,max=100"`
	Page     int             `form:"page" validate:"omitempty,min=1"`
	PageSize int             `form:"pageSize" validate:"omitempty,min=1,max=200"`
}

// UpdateUserRoleRequest changes the role of an account.
type UpdateUserRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required,oneof=sender staff admin"`
}

// AuditLogFilter pages through the audit trail.
type AuditLogFilter struct {
	Limit  int `form:"limit" validate:"omitempty,min=1,max=500"`
	Offset int `form:"offset" validate:"omitempty,min=0"`
}
