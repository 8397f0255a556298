package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/dto"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
)

const submissionColumns = `id, user_id, day_number, platform, post_link, text_content, image_url, status, score_awarded, rejection_comment, missed_deadline, reviewed_by, reviewed_at, created_at, updated_at`

// SubmissionRepository persists submissions and applies reviews.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// GetByID returns a submission by identifier.
func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return &submission, nil
}

// GetByUserDay returns the participant's submission for a day.
func (r *SubmissionRepository) GetByUserDay(ctx context.Context, userID string, dayNumber int) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE user_id = $1 AND day_number = $2`
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, userID, dayNumber); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get submission by day: %w", err)
	}
	return &submission, nil
}

// ListByUser returns every submission of a participant ordered by day.
func (r *SubmissionRepository) ListByUser(ctx context.Context, userID string) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE user_id = $1 ORDER BY day_number ASC`
	var submissions []models.Submission
	if err := r.db.SelectContext(ctx, &submissions, query, userID); err != nil {
		return nil, fmt.Errorf("list submissions by user: %w", err)
	}
	return submissions, nil
}

// List returns the review queue with owner details and the total count.
func (r *SubmissionRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]models.SubmissionDetail, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", len(args)))
	}
	if filter.DayNumber != nil {
		args = append(args, *filter.DayNumber)
		conditions = append(conditions, fmt.Sprintf("s.day_number = $%d", len(args)))
	}
	if filter.Platform != nil {
		args = append(args, *filter.Platform)
		conditions = append(conditions, fmt.Sprintf("s.platform = $%d", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("s.user_id = $%d", len(args)))
	}
	if filter.Missed != nil {
		args = append(args, *filter.Missed)
		conditions = append(conditions, fmt.Sprintf("s.missed_deadline = $%d", len(args)))
	}

	base := `FROM submissions s JOIN profiles p ON p.id = s.user_id WHERE 1=1`
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	listQuery := fmt.Sprintf(`SELECT s.id, s.user_id, s.day_number, s.platform, s.post_link, s.text_content, s.image_url, s.status, s.score_awarded, s.rejection_comment, s.missed_deadline, s.reviewed_by, s.reviewed_at, s.created_at, s.updated_at,
p.full_name AS owner_name, p.email AS owner_email, p.avatar_url AS owner_avatar
%s ORDER BY s.created_at ASC LIMIT %d OFFSET %d`, base, size, offset)

	var rows []models.SubmissionDetail
	if err := r.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}
	return rows, total, nil
}

// Create inserts a pending submission. A row for the same participant and day
// surfaces as ErrDuplicate.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		submission.ID = newID()
	}
	now := time.Now().UTC()
	submission.CreatedAt = now
	submission.UpdatedAt = now
	submission.Status = models.SubmissionPending

	const query = `INSERT INTO submissions (id, user_id, day_number, platform, post_link, text_content, image_url, status, missed_deadline, created_at, updated_at)
VALUES (:id, :user_id, :day_number, :platform, :post_link, :text_content, :image_url, :status, FALSE, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

// Resubmit rewrites a pending or participant-rejected row back to pending and
// clears the previous review. ErrStale is returned when the row has been
// validated or is a missed-deadline record.
func (r *SubmissionRepository) Resubmit(ctx context.Context, submission *models.Submission) error {
	submission.UpdatedAt = time.Now().UTC()
	submission.Status = models.SubmissionPending
	submission.ScoreAwarded = nil
	submission.RejectionComment = nil
	submission.ReviewedBy = nil
	submission.ReviewedAt = nil

	const query = `UPDATE submissions SET platform = :platform, post_link = :post_link, text_content = :text_content, image_url = :image_url,
status = 'pending', score_awarded = NULL, rejection_comment = NULL, reviewed_by = NULL, reviewed_at = NULL, updated_at = :updated_at
WHERE id = :id AND user_id = :user_id AND missed_deadline = FALSE AND status IN ('pending', 'rejected')`
	res, err := r.db.NamedExecContext(ctx, query, submission)
	if err != nil {
		return fmt.Errorf("resubmit submission: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("resubmit submission: %w", err)
	}
	if affected == 0 {
		return ErrStale
	}
	return nil
}

// DeletePending removes a submission only while it is still pending and owned by userID.
func (r *SubmissionRepository) DeletePending(ctx context.Context, id, userID string) error {
	const query = `DELETE FROM submissions WHERE id = $1 AND user_id = $2 AND status = 'pending'`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	if affected == 0 {
		return ErrStale
	}
	return nil
}

// ReviewParams holds values required to apply a review.
type ReviewParams struct {
	SubmissionID string
	ReviewerID   string
	ReviewedAt   time.Time
	// Decide computes the outcome from the locked row. Returning an error aborts the transaction.
	Decide func(current models.Submission) (models.ReviewOutcome, error)
}

// ApplyReview locks the submission row, computes the outcome and writes the
// submission, the owner's ledger and the optional day unlock in one transaction.
func (r *SubmissionRepository) ApplyReview(ctx context.Context, params ReviewParams) (result *models.ReviewResult, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin review transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current models.Submission
	selectQuery := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1 FOR UPDATE`
	if err = tx.GetContext(ctx, &current, selectQuery, params.SubmissionID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock submission: %w", err)
	}

	outcome, err := params.Decide(current)
	if err != nil {
		return nil, err
	}

	const updateQuery = `UPDATE submissions SET status = $2, score_awarded = $3, rejection_comment = $4, reviewed_by = $5, reviewed_at = $6, updated_at = $6 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, updateQuery, current.ID, outcome.Status, outcome.ScoreAwarded, outcome.RejectionComment, params.ReviewerID, params.ReviewedAt); err != nil {
		return nil, fmt.Errorf("update submission review: %w", err)
	}

	var totalPoints int
	const ledgerQuery = `UPDATE profiles SET total_points = GREATEST(0, total_points + $2), updated_at = $3 WHERE id = $1 RETURNING total_points`
	if err = tx.GetContext(ctx, &totalPoints, ledgerQuery, current.UserID, outcome.PointDelta, params.ReviewedAt); err != nil {
		return nil, fmt.Errorf("apply point delta: %w", err)
	}

	if outcome.UnlockDay != nil {
		const unlockQuery = `UPDATE challenge_days SET is_active = TRUE, updated_at = $2 WHERE day_number = $1 AND is_active = FALSE`
		if _, err = tx.ExecContext(ctx, unlockQuery, *outcome.UnlockDay, params.ReviewedAt); err != nil {
			return nil, fmt.Errorf("unlock challenge day: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit review: %w", err)
	}

	updated := current
	updated.Status = outcome.Status
	score := outcome.ScoreAwarded
	updated.ScoreAwarded = &score
	updated.RejectionComment = outcome.RejectionComment
	reviewer := params.ReviewerID
	updated.ReviewedBy = &reviewer
	reviewedAt := params.ReviewedAt
	updated.ReviewedAt = &reviewedAt
	updated.UpdatedAt = params.ReviewedAt

	return &models.ReviewResult{
		Submission:     updated,
		PreviousStatus: current.Status,
		PointDelta:     outcome.PointDelta,
		TotalPoints:    totalPoints,
		UnlockedDay:    outcome.UnlockDay,
	}, nil
}

// CountByStatus returns submission totals grouped by status.
func (r *SubmissionRepository) CountByStatus(ctx context.Context) ([]dto.StatusCount, error) {
	const query = `SELECT status, COUNT(*) AS count FROM submissions GROUP BY status ORDER BY status`
	var rows []dto.StatusCount
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count submissions by status: %w", err)
	}
	return rows, nil
}

// CountByDay returns per-day submission totals.
func (r *SubmissionRepository) CountByDay(ctx context.Context) ([]dto.DayStat, error) {
	const query = `SELECT day_number,
COUNT(*) FILTER (WHERE status = 'pending') AS pending,
COUNT(*) FILTER (WHERE status = 'validated') AS validated,
COUNT(*) FILTER (WHERE status = 'rejected' AND missed_deadline = FALSE) AS rejected,
COUNT(*) FILTER (WHERE missed_deadline = TRUE) AS missed
FROM submissions GROUP BY day_number ORDER BY day_number`
	var rows []dto.DayStat
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count submissions by day: %w", err)
	}
	return rows, nil
}
