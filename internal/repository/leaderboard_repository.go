package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
)

// LeaderboardRepository ranks registered students by accumulated points.
type LeaderboardRepository struct {
	db *sqlx.DB
}

// NewLeaderboardRepository constructs the repository.
func NewLeaderboardRepository(db *sqlx.DB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

const leaderboardSelect = `
SELECT
	DENSE_RANK() OVER (ORDER BY p.total_points DESC) AS rank,
	p.id AS user_id,
	p.full_name,
	p.avatar_url,
	p.university,
	p.total_points,
	COALESCE(v.validated_count, 0) AS validated_count
FROM profiles p
LEFT JOIN (
	SELECT user_id, COUNT(*) AS validated_count
	FROM submissions
	WHERE status = 'validated'
	GROUP BY user_id
) v ON v.user_id = p.id
WHERE p.role = 'student' AND p.is_registered = TRUE
ORDER BY p.total_points DESC, p.full_name ASC`

// List returns one page of the leaderboard. A non-positive limit returns every row.
func (r *LeaderboardRepository) List(ctx context.Context, limit, offset int) ([]models.LeaderboardEntry, int, error) {
	query := leaderboardSelect
	if limit > 0 {
		query += fmt.Sprintf("\nLIMIT %d OFFSET %d", limit, offset)
	}
	var entries []models.LeaderboardEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, 0, fmt.Errorf("list leaderboard: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM profiles WHERE role = 'student' AND is_registered = TRUE`); err != nil {
		return nil, 0, fmt.Errorf("count leaderboard: %w", err)
	}
	return entries, total, nil
}

// Rank returns the standing of one participant. sql.ErrNoRows means the
// profile is not part of the leaderboard.
func (r *LeaderboardRepository) Rank(ctx context.Context, userID string) (*models.ParticipantRank, error) {
	const query = `
SELECT ranked.user_id, ranked.rank, ranked.total_points, ranked.total_participants
FROM (
	SELECT
		p.id AS user_id,
		DENSE_RANK() OVER (ORDER BY p.total_points DESC) AS rank,
		p.total_points,
		COUNT(*) OVER () AS total_participants
	FROM profiles p
	WHERE p.role = 'student' AND p.is_registered = TRUE
) ranked
WHERE ranked.user_id = $1`
	var rank models.ParticipantRank
	if err := r.db.GetContext(ctx, &rank, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get participant rank: %w", err)
	}
	return &rank, nil
}
