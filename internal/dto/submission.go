package dto

import "github.com/OB-39/Marathon-Chalenge-sub000/internal/models"

// CreateSubmissionRequest is the participant payload for a day's proof.
type CreateSubmissionRequest struct {
	DayNumber   int     `json:"day_number" validate:"required,min=1"`
	Platform    string  `json:"platform" validate:"required,oneof=linkedin facebook instagram"`
	PostLink    string  `json:"post_link" validate:"required,url,max=2048"`
	TextContent *string `json:"text_content" validate:"omitempty,max=10000"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url,max=2048"`
}

// ValidateSubmissionRequest carries the awarded score.
type ValidateSubmissionRequest struct {
	Score *int `json:"score" validate:"required"`
}

// RejectSubmissionRequest carries an optional reviewer comment.
type RejectSubmissionRequest struct {
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

// SubmissionQuery captures review queue filters from the query string.
type SubmissionQuery struct {
	Status    string `form:"status"`
	DayNumber int    `form:"day_number"`
	Platform  string `form:"platform"`
	UserID    string `form:"user_id"`
	Missed    *bool  `form:"missed"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}

// ProofUploadResponse returns where an uploaded image is served from.
type ProofUploadResponse struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// ProgressResponse is the participant's view of every day.
type ProgressResponse struct {
	UserID      string               `json:"user_id"`
	TotalPoints int                  `json:"total_points"`
	Days        []models.DayProgress `json:"days"`
}
