package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleStudent    UserRole = "student"
	RoleAmbassador UserRole = "ambassador"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r == RoleStudent || r == RoleAmbassador
}

// Profile is a participant or reviewer account stored in the profiles table.
type Profile struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	TotalPoints  int        `db:"total_points" json:"total_points"`
	IsRegistered bool       `db:"is_registered" json:"is_registered"`
	AvatarURL    *string    `db:"avatar_url" json:"avatar_url,omitempty"`
	University   *string    `db:"university" json:"university,omitempty"`
	LinkedInURL  *string    `db:"linkedin_url" json:"linkedin_url,omitempty"`
	FacebookURL  *string    `db:"facebook_url" json:"facebook_url,omitempty"`
	InstagramURL *string    `db:"instagram_url" json:"instagram_url,omitempty"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// ProfileFilter captures filtering criteria for listing profiles.
type ProfileFilter struct {
	Role         *UserRole
	IsRegistered *bool
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
