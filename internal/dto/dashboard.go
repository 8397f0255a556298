package dto

import "github.com/OB-39/Marathon-Chalenge-sub000/internal/models"

// StatusCount is a submission count for one status.
type StatusCount struct {
	Status string `db:"status" json:"status"`
	Count  int    `db:"count" json:"count"`
}

// DayStat summarises submissions for one day.
type DayStat struct {
	DayNumber int `db:"day_number" json:"day_number"`
	Pending   int `db:"pending" json:"pending"`
	Validated int `db:"validated" json:"validated"`
	Rejected  int `db:"rejected" json:"rejected"`
	Missed    int `db:"missed" json:"missed"`
}

// ReviewerDashboard is the aggregated payload for ambassadors.
type ReviewerDashboard struct {
	ByStatus           []StatusCount             `json:"by_status"`
	ByDay              []DayStat                 `json:"by_day"`
	RegisteredStudents int                       `json:"registered_students"`
	TopParticipants    []models.LeaderboardEntry `json:"top_participants"`
	System             models.SystemMetrics      `json:"system"`
}
