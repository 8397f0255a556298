package dto

import "time"

// DeadlineDayReport describes one expired day.
type DeadlineDayReport struct {
	DayNumber int       `json:"day_number"`
	Deadline  time.Time `json:"deadline"`
	Missed    int       `json:"missed"`
}

// DeadlineRunReport is the outcome of one deadline expiry run.
type DeadlineRunReport struct {
	Success                  bool                `json:"success"`
	Message                  string              `json:"message"`
	ProcessedDays            int                 `json:"processed_days"`
	MissedSubmissionsCreated int                 `json:"missed_submissions_created"`
	Days                     []DeadlineDayReport `json:"days"`
	RanAt                    time.Time           `json:"ran_at"`
}
