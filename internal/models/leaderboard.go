package models

// LeaderboardEntry is one ranked participant.
type LeaderboardEntry struct {
	Rank           int     `db:"rank" json:"rank"`
	UserID         string  `db:"user_id" json:"user_id"`
	FullName       string  `db:"full_name" json:"full_name"`
	AvatarURL      *string `db:"avatar_url" json:"avatar_url,omitempty"`
	University     *string `db:"university" json:"university,omitempty"`
	TotalPoints    int     `db:"total_points" json:"total_points"`
	ValidatedCount int     `db:"validated_count" json:"validated_count"`
}

// ParticipantRank summarises one participant's standing.
type ParticipantRank struct {
	UserID            string `db:"user_id" json:"user_id"`
	Rank              int    `db:"rank" json:"rank"`
	TotalPoints       int    `db:"total_points" json:"total_points"`
	TotalParticipants int    `db:"total_participants" json:"total_participants"`
}
