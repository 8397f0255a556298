package models

import "time"

// DefaultTotalDays is the length of the program.
const DefaultTotalDays = 15

// ChallengeDay is one ordinal day of the program. IsActive and IsExpired are
// global flags; whether a given participant may submit is derived separately
// (see DayProgress).
type ChallengeDay struct {
	DayNumber   int       `db:"day_number" json:"day_number"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	Deadline    time.Time `db:"deadline" json:"deadline"`
	IsExpired   bool      `db:"is_expired" json:"is_expired"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// WindowOpen reports whether the day is open for everyone.
func (d ChallengeDay) WindowOpen() bool {
	return d.IsActive && !d.IsExpired
}

// MaxScore returns the highest score a submission for day may receive:
// 20 for days 4 through 15, 10 for every other day.
func MaxScore(day int) int {
	if day >= 4 && day <= 15 {
		return 20
	}
	return 10
}

// DayProgress is the per-participant view of one day.
type DayProgress struct {
	DayNumber      int               `json:"day_number"`
	Title          string            `json:"title"`
	Deadline       time.Time         `json:"deadline"`
	WindowOpen     bool              `json:"window_open"`
	Expired        bool              `json:"expired"`
	Unlocked       bool              `json:"unlocked"`
	CanSubmit      bool              `json:"can_submit"`
	MaxScore       int               `json:"max_score"`
	SubmissionID   *string           `json:"submission_id,omitempty"`
	Status         *SubmissionStatus `json:"status,omitempty"`
	ScoreAwarded   *int              `json:"score_awarded,omitempty"`
	MissedDeadline bool              `json:"missed_deadline"`
}
