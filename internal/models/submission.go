package models

import "time"

// Platform is the social network a proof post was published on.
type Platform string

const (
	PlatformLinkedIn  Platform = "linkedin"
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
)

// Valid reports whether p is a supported platform.
func (p Platform) Valid() bool {
	switch p {
	case PlatformLinkedIn, PlatformFacebook, PlatformInstagram:
		return true
	}
	return false
}

// SubmissionStatus is the review state of a submission.
type SubmissionStatus string

const (
	SubmissionPending   SubmissionStatus = "pending"
	SubmissionValidated SubmissionStatus = "validated"
	SubmissionRejected  SubmissionStatus = "rejected"
)

// MissedDeadlinePlatform fills the platform column of synthetic rows. Consumers
// must rely on MissedDeadline, never on this value.
const MissedDeadlinePlatform = PlatformLinkedIn

// Submission is one participant's attempt at one day.
type Submission struct {
	ID               string           `db:"id" json:"id"`
	UserID           string           `db:"user_id" json:"user_id"`
	DayNumber        int              `db:"day_number" json:"day_number"`
	Platform         Platform         `db:"platform" json:"platform"`
	PostLink         string           `db:"post_link" json:"post_link"`
	TextContent      *string          `db:"text_content" json:"text_content,omitempty"`
	ImageURL         *string          `db:"image_url" json:"image_url,omitempty"`
	Status           SubmissionStatus `db:"status" json:"status"`
	ScoreAwarded     *int             `db:"score_awarded" json:"score_awarded,omitempty"`
	RejectionComment *string          `db:"rejection_comment" json:"rejection_comment,omitempty"`
	MissedDeadline   bool             `db:"missed_deadline" json:"missed_deadline"`
	ReviewedBy       *string          `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time       `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

// Contribution is what the submission currently adds to its owner's ledger.
func (s Submission) Contribution() int {
	if s.Status != SubmissionValidated || s.ScoreAwarded == nil {
		return 0
	}
	return *s.ScoreAwarded
}

// SubmissionDetail joins the owner's display data for review queues.
type SubmissionDetail struct {
	Submission
	OwnerName   string  `db:"owner_name" json:"owner_name"`
	OwnerEmail  string  `db:"owner_email" json:"owner_email"`
	OwnerAvatar *string `db:"owner_avatar" json:"owner_avatar,omitempty"`
}

// SubmissionFilter narrows review queue listings.
type SubmissionFilter struct {
	Status    *SubmissionStatus
	DayNumber *int
	Platform  *Platform
	UserID    string
	Missed    *bool
	Page      int
	PageSize  int
}

// ReviewDecision is the reviewer action applied to a submission.
type ReviewDecision string

const (
	DecisionValidate ReviewDecision = "validate"
	DecisionReject   ReviewDecision = "reject"
)

// ReviewOutcome is the computed effect of a review on a locked submission row.
type ReviewOutcome struct {
	Status           SubmissionStatus
	ScoreAwarded     int
	RejectionComment *string
	PointDelta       int
	UnlockDay        *int
}

// ReviewResult reports the committed state after a review.
type ReviewResult struct {
	Submission     Submission       `json:"submission"`
	PreviousStatus SubmissionStatus `json:"previous_status"`
	PointDelta     int              `json:"point_delta"`
	TotalPoints    int              `json:"total_points"`
	UnlockedDay    *int             `json:"unlocked_day,omitempty"`
}
