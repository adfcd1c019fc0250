package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSender UserRole = "sender"
	RoleStaff  UserRole = "staff"
	RoleAdmin  UserRole = "admin"
)

// IsOperator reports whether the role may manage parcels, routes and issues on behalf of others.
func (r UserRole) IsOperator() bool {
	return r == RoleStaff || r == RoleAdmin
}

// User represents an account held in the in-memory user map.
type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      UserRole  `json:"role"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserInput carries the fields required to create a user. Password must already be hashed.
type UserInput struct {
	Username string
	Password string
	Email    string
	FullName string
	Role     UserRole
	Phone    *string
}

// UserPatch holds a shallow partial update for a user; nil fields are left untouched.
type UserPatch struct {
	Password *string
	Email    *string
	FullName *string
	Role     *UserRole
	Phone    *string
}

// Clone returns a deep copy of the user.
func (u User) Clone() User {
	u.Phone = cloneString(u.Phone)
	return u
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
