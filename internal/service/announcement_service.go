package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
	appErrors "github.com/OB-39/Marathon-Chalenge-sub000/pkg/errors"
)

// EventAnnouncementPublished is pushed to every connected client when an announcement is created.
const EventAnnouncementPublished = "announcement.published"

type announcementRepository interface {
	List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error)
	GetByID(ctx context.Context, id string) (*models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement) error
	Update(ctx context.Context, announcement *models.Announcement) error
	Delete(ctx context.Context, id string) error
}

// AnnouncementService handles the public notice board.
type AnnouncementService struct {
	repo      announcementRepository
	publisher dayPublisher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAnnouncementService constructs the service.
func NewAnnouncementService(repo announcementRepository, publisher dayPublisher, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AnnouncementService{repo: repo, publisher: publisher, validator: validate, logger: logger}
	_ = svc.validator.RegisterValidation("audience", func(fl validator.FieldLevel) bool {
		switch models.AnnouncementAudience(strings.ToUpper(fl.Field().String())) {
		case models.AnnouncementAudienceAll, models.AnnouncementAudienceStudents, models.AnnouncementAudienceAmbassadors:
			return true
		default:
			return false
		}
	})
	_ = svc.validator.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		switch models.AnnouncementPriority(strings.ToUpper(fl.Field().String())) {
		case models.AnnouncementPriorityLow, models.AnnouncementPriorityNormal, models.AnnouncementPriorityHigh:
			return true
		default:
			return false
		}
	})
	return svc
}

// AnnouncementRequest is the create and update payload.
type AnnouncementRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Content     string     `json:"content" validate:"required"`
	Audience    string     `json:"audience" validate:"required,audience"`
	Priority    string     `json:"priority" validate:"required,priority"`
	IsPinned    bool       `json:"is_pinned"`
	PublishedAt *time.Time `json:"published_at"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// List returns the announcements visible to the viewer. A nil viewer sees
// only announcements addressed to everyone.
func (s *AnnouncementService) List(ctx context.Context, viewer *models.JWTClaims, page, pageSize int) ([]models.Announcement, *models.Pagination, error) {
	filter := models.AnnouncementFilter{Page: page, PageSize: pageSize}
	if viewer != nil {
		role := viewer.Role
		filter.Role = &role
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	if rows == nil {
		rows = []models.Announcement{}
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return rows, pagination, nil
}

// Get returns an announcement by id.
func (s *AnnouncementService) Get(ctx context.Context, id string) (*models.Announcement, error) {
	ann, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get announcement")
	}
	return ann, nil
}

// Create publishes a new announcement.
func (s *AnnouncementService) Create(ctx context.Context, actor *models.JWTClaims, req AnnouncementRequest) (*models.Announcement, error) {
	if err := requireAmbassador(actor); err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}
	announcement := &models.Announcement{CreatedBy: actor.UserID}
	applyAnnouncement(announcement, req)
	if err := s.repo.Create(ctx, announcement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create announcement")
	}
	if s.publisher != nil && !announcement.PublishedAt.After(time.Now()) {
		s.publisher.Broadcast(EventAnnouncementPublished, announcement)
	}
	return announcement, nil
}

// Update modifies an existing announcement.
func (s *AnnouncementService) Update(ctx context.Context, actor *models.JWTClaims, id string, req AnnouncementRequest) (*models.Announcement, error) {
	if err := requireAmbassador(actor); err != nil {
		return nil, err
	}
	if err := s.check(req); err != nil {
		return nil, err
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyAnnouncement(existing, req)
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update announcement")
	}
	return existing, nil
}

// Delete removes an announcement by id.
func (s *AnnouncementService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	if err := requireAmbassador(actor); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete announcement")
	}
	return nil
}

func (s *AnnouncementService) check(req AnnouncementRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if req.ExpiresAt != nil && req.PublishedAt != nil && req.ExpiresAt.Before(*req.PublishedAt) {
		return appErrors.Clone(appErrors.ErrValidation, "expires_at must be after published_at")
	}
	return nil
}

func applyAnnouncement(announcement *models.Announcement, req AnnouncementRequest) {
	announcement.Title = strings.TrimSpace(req.Title)
	announcement.Content = req.Content
	announcement.Audience = models.AnnouncementAudience(strings.ToUpper(req.Audience))
	announcement.Priority = models.AnnouncementPriority(strings.ToUpper(req.Priority))
	announcement.IsPinned = req.IsPinned
	if req.PublishedAt != nil {
		announcement.PublishedAt = req.PublishedAt.UTC()
	} else if announcement.PublishedAt.IsZero() {
		announcement.PublishedAt = time.Now().UTC()
	}
	announcement.ExpiresAt = req.ExpiresAt
}
