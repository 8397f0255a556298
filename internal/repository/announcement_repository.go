package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
)

// AnnouncementRepository provides persistence for announcements.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository creates the repository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// audiencesFor maps a viewer role to the audiences it may read.
func audiencesFor(role *models.UserRole) []string {
	audiences := []string{string(models.AnnouncementAudienceAll)}
	if role == nil {
		return audiences
	}
	switch *role {
	case models.RoleStudent:
		audiences = append(audiences, string(models.AnnouncementAudienceStudents))
	case models.RoleAmbassador:
		audiences = append(audiences, string(models.AnnouncementAudienceStudents), string(models.AnnouncementAudienceAmbassadors))
	}
	return audiences
}

// List returns published, unexpired announcements visible to the viewer role.
func (r *AnnouncementRepository) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error) {
	base := "FROM announcements"
	where := []string{"published_at <= NOW()", "(expires_at IS NULL OR expires_at > NOW())"}
	args := []interface{}{pqStringArray(audiencesFor(filter.Role))}
	where = append(where, "audience = ANY($1)")
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, title, content, audience, priority, is_pinned, published_at, expires_at, created_by, created_at, updated_at
%s WHERE %s
ORDER BY is_pinned DESC, CASE priority WHEN 'HIGH' THEN 3 WHEN 'NORMAL' THEN 2 ELSE 1 END DESC, published_at DESC
LIMIT %d OFFSET %d`, base, whereClause, size, offset)
	var announcements []models.Announcement
	if err := r.db.SelectContext(ctx, &announcements, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list announcements: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count announcements: %w", err)
	}
	return announcements, total, nil
}

// GetByID returns an announcement by identifier.
func (r *AnnouncementRepository) GetByID(ctx context.Context, id string) (*models.Announcement, error) {
	const query = `SELECT id, title, content, audience, priority, is_pinned, published_at, expires_at, created_by, created_at, updated_at
FROM announcements WHERE id = $1`
	var announcement models.Announcement
	if err := r.db.GetContext(ctx, &announcement, query, id); err != nil {
		return nil, err
	}
	return &announcement, nil
}

// Create inserts a new announcement.
func (r *AnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	if announcement.ID == "" {
		announcement.ID = newID()
	}
	now := time.Now().UTC()
	if announcement.CreatedAt.IsZero() {
		announcement.CreatedAt = now
	}
	announcement.UpdatedAt = now
	query := `INSERT INTO announcements (id, title, content, audience, priority, is_pinned, published_at, expires_at, created_by, created_at, updated_at)
VALUES (:id, :title, :content, :audience, :priority, :is_pinned, :published_at, :expires_at, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, announcement); err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

// Update modifies an existing announcement.
func (r *AnnouncementRepository) Update(ctx context.Context, announcement *models.Announcement) error {
	announcement.UpdatedAt = time.Now().UTC()
	query := `UPDATE announcements SET title = :title, content = :content, audience = :audience,
priority = :priority, is_pinned = :is_pinned, published_at = :published_at, expires_at = :expires_at, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, announcement); err != nil {
		return fmt.Errorf("update announcement: %w", err)
	}
	return nil
}

// Delete removes an announcement.
func (r *AnnouncementRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM announcements WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
