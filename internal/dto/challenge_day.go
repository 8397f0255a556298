package dto

import "time"

// UpdateChallengeDayRequest patches a day. The expiry latch is not writable.
type UpdateChallengeDayRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Deadline    *time.Time `json:"deadline"`
	IsActive    *bool      `json:"is_active"`
}
