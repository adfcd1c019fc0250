package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin          = "LOGIN"
	AuditActionLogout         = "LOGOUT"
	AuditActionRegister       = "REGISTER"
	AuditActionPasswordChange = "PASSWORD_CHANGE"
	AuditActionParcelDelete   = "PARCEL_DELETE"
	AuditActionRoleChange     = "ROLE_CHANGE"
	AuditActionParcelUpdate   = "PARCEL_UPDATE"
	AuditActionRouteCreate    = "ROUTE_CREATE"
	AuditActionRouteUpdate    = "ROUTE_UPDATE"
	AuditActionIssueCreate    = "ISSUE_CREATE"
	AuditActionIssueUpdate    = "ISSUE_UPDATE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *int      `db:"user_id" json:"userId,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resourceId,omitempty"`
	NewValues  []byte    `db:"new_values" json:"newValues,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ipAddress"`
	UserAgent  string    `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
