package dto

// CompleteProfileRequest finishes onboarding and enrols the participant.
type CompleteProfileRequest struct {
	FullName     string  `json:"full_name" validate:"required,max=120"`
	University   *string `json:"university" validate:"omitempty,max=200"`
	LinkedInURL  *string `json:"linkedin_url" validate:"omitempty,url"`
	FacebookURL  *string `json:"facebook_url" validate:"omitempty,url"`
	InstagramURL *string `json:"instagram_url" validate:"omitempty,url"`
}

// UpdateRoleRequest changes a profile's role.
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=student ambassador"`
}

// ProfileQuery captures listing filters.
type ProfileQuery struct {
	Role         string `form:"role"`
	IsRegistered *bool  `form:"is_registered"`
	Search       string `form:"search"`
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size"`
	SortBy       string `form:"sort_by"`
	SortOrder    string `form:"sort_order"`
}
