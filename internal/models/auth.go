package models

import "time"

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// RegisterRequest is the self-service sign-up payload.
type RegisterRequest struct {
	Username  string   `json:"username" validate:"required,min=3,max=64"`
	Password  string   `json:"password" validate:"required,min=6,max=72"`
	Email     string   `json:"email" validate:"required,email"`
	FullName  string   `json:"fullName" validate:"required"`
	Role      UserRole `json:"role" validate:"omitempty,oneof=sender staff admin"`
	Phone     *string  `json:"phone"`
	IP        string   `json:"-"`
	UserAgent string   `json:"-"`
}

// LoginResponse returns the authenticated user. The session id travels in a cookie only.
type LoginResponse struct {
	SessionID string    `json:"-"`
	User      UserInfo  `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ChangePasswordRequest payload for updating password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

// UpdateProfileRequest patches the caller's own profile.
type UpdateProfileRequest struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	FullName *string `json:"fullName" validate:"omitempty,min=1"`
	Phone    *string `json:"phone"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID       int      `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	FullName string   `json:"fullName"`
	Role     UserRole `json:"role"`
}

// NewUserInfo projects a user onto its public shape.
func NewUserInfo(u User) UserInfo {
	return UserInfo{ID: u.ID, Username: u.Username, Email: u.Email, FullName: u.FullName, Role: u.Role}
}

// RequestMeta carries client details recorded on audit entries and sessions.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// SessionClaims is the identity resolved from a session cookie and stored on the request context.
type SessionClaims struct {
	SessionID string
	UserID    int
	Username  string
	Role      UserRole
}
