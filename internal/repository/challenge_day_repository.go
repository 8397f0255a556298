package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
)

const challengeDayColumns = `day_number, title, description, is_active, deadline, is_expired, updated_at`

// ChallengeDayRepository persists the program calendar.
type ChallengeDayRepository struct {
	db *sqlx.DB
}

// NewChallengeDayRepository constructs the repository.
func NewChallengeDayRepository(db *sqlx.DB) *ChallengeDayRepository {
	return &ChallengeDayRepository{db: db}
}

// List returns every day ordered by day number.
func (r *ChallengeDayRepository) List(ctx context.Context) ([]models.ChallengeDay, error) {
	query := `SELECT ` + challengeDayColumns + ` FROM challenge_days ORDER BY day_number ASC`
	var days []models.ChallengeDay
	if err := r.db.SelectContext(ctx, &days, query); err != nil {
		return nil, fmt.Errorf("list challenge days: %w", err)
	}
	return days, nil
}

// Get returns a single day.
func (r *ChallengeDayRepository) Get(ctx context.Context, dayNumber int) (*models.ChallengeDay, error) {
	query := `SELECT ` + challengeDayColumns + ` FROM challenge_days WHERE day_number = $1`
	var day models.ChallengeDay
	if err := r.db.GetContext(ctx, &day, query, dayNumber); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get challenge day: %w", err)
	}
	return &day, nil
}

// ListDue returns unexpired days whose deadline is at or before now.
func (r *ChallengeDayRepository) ListDue(ctx context.Context, now time.Time) ([]models.ChallengeDay, error) {
	query := `SELECT ` + challengeDayColumns + ` FROM challenge_days WHERE deadline <= $1 AND is_expired = FALSE ORDER BY day_number ASC`
	var days []models.ChallengeDay
	if err := r.db.SelectContext(ctx, &days, query, now); err != nil {
		return nil, fmt.Errorf("list due challenge days: %w", err)
	}
	return days, nil
}

// Update writes the editable fields of a day. The expiry latch is never written here.
func (r *ChallengeDayRepository) Update(ctx context.Context, day *models.ChallengeDay) error {
	day.UpdatedAt = time.Now().UTC()
	const query = `UPDATE challenge_days SET title = :title, description = :description, deadline = :deadline, is_active = :is_active, updated_at = :updated_at WHERE day_number = :day_number`
	if _, err := r.db.NamedExecContext(ctx, query, day); err != nil {
		return fmt.Errorf("update challenge day: %w", err)
	}
	return nil
}

// ExpireDayParams holds values required to close one day.
type ExpireDayParams struct {
	DayNumber int
	TotalDays int
	Feedback  string
	Now       time.Time
	// Missing computes who has to receive a synthetic submission.
	Missing func(registered, submitted []string) []string
}

// ExpireDayResult reports what a single day expiry committed.
type ExpireDayResult struct {
	Skipped bool
	Created int
}

// ExpireDay closes one day in a single transaction guarded by an advisory
// lock on the day number: it re-checks the latch, inserts the synthetic
// missed submissions, latches is_expired and activates the next day.
func (r *ChallengeDayRepository) ExpireDay(ctx context.Context, params ExpireDayParams) (result ExpireDayResult, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin expire day transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryKey(params.DayNumber)); err != nil {
		return result, fmt.Errorf("lock challenge day %d: %w", params.DayNumber, err)
	}

	var expired bool
	if err = tx.GetContext(ctx, &expired, `SELECT is_expired FROM challenge_days WHERE day_number = $1 FOR UPDATE`, params.DayNumber); err != nil {
		return result, fmt.Errorf("load challenge day %d: %w", params.DayNumber, err)
	}
	if expired {
		result.Skipped = true
		if err = tx.Commit(); err != nil {
			return result, fmt.Errorf("commit skipped day %d: %w", params.DayNumber, err)
		}
		return result, nil
	}

	var registered []string
	if err = tx.SelectContext(ctx, &registered, `SELECT id FROM profiles WHERE role = 'student' AND is_registered = TRUE ORDER BY id`); err != nil {
		return result, fmt.Errorf("list registered students: %w", err)
	}
	var submitted []string
	if err = tx.SelectContext(ctx, &submitted, `SELECT user_id FROM submissions WHERE day_number = $1`, params.DayNumber); err != nil {
		return result, fmt.Errorf("list submitters for day %d: %w", params.DayNumber, err)
	}

	missing := params.Missing(registered, submitted)
	if len(missing) > 0 {
		ids := make([]string, len(missing))
		for i := range missing {
			ids[i] = newID()
		}
		const insertQuery = `INSERT INTO submissions (id, user_id, day_number, platform, post_link, status, score_awarded, rejection_comment, missed_deadline, created_at, updated_at)
SELECT t.id, t.user_id, $3, $4, '', 'rejected', 0, $5, TRUE, $6, $6
FROM unnest($1::uuid[], $2::uuid[]) AS t(id, user_id)
ON CONFLICT (user_id, day_number) DO NOTHING`
		res, execErr := tx.ExecContext(ctx, insertQuery, pqStringArray(ids), pqStringArray(missing), params.DayNumber, models.MissedDeadlinePlatform, params.Feedback, params.Now)
		if execErr != nil {
			err = execErr
			return result, fmt.Errorf("insert missed submissions for day %d: %w", params.DayNumber, err)
		}
		affected, rowsErr := res.RowsAffected()
		if rowsErr != nil {
			err = rowsErr
			return result, fmt.Errorf("count missed submissions for day %d: %w", params.DayNumber, err)
		}
		result.Created = int(affected)
	}

	if _, err = tx.ExecContext(ctx, `UPDATE challenge_days SET is_expired = TRUE, updated_at = $2 WHERE day_number = $1`, params.DayNumber, params.Now); err != nil {
		return result, fmt.Errorf("expire challenge day %d: %w", params.DayNumber, err)
	}
	if params.DayNumber < params.TotalDays {
		if _, err = tx.ExecContext(ctx, `UPDATE challenge_days SET is_active = TRUE, updated_at = $2 WHERE day_number = $1`, params.DayNumber+1, params.Now); err != nil {
			return result, fmt.Errorf("activate challenge day %d: %w", params.DayNumber+1, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return result, fmt.Errorf("commit expire day %d: %w", params.DayNumber, err)
	}
	return result, nil
}

// advisoryKey namespaces day numbers so they do not collide with other advisory locks.
func advisoryKey(dayNumber int) int64 {
	const namespace int64 = 0x4d43 << 32
	return namespace | int64(dayNumber)
}
