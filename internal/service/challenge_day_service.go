package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/dto"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
	appErrors "github.com/OB-39/Marathon-Chalenge-sub000/pkg/errors"
)

type challengeDayRepository interface {
	List(ctx context.Context) ([]models.ChallengeDay, error)
	Get(ctx context.Context, dayNumber int) (*models.ChallengeDay, error)
	Update(ctx context.Context, day *models.ChallengeDay) error
}

type dayPublisher interface {
	Broadcast(eventType string, data interface{})
}

// ChallengeDayService exposes the program calendar.
type ChallengeDayService struct {
	repo      challengeDayRepository
	audit     auditRecorder
	publisher dayPublisher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewChallengeDayService constructs the service.
func NewChallengeDayService(repo challengeDayRepository, audit auditRecorder, publisher dayPublisher, validate *validator.Validate, logger *zap.Logger) *ChallengeDayService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChallengeDayService{repo: repo, audit: audit, publisher: publisher, validator: validate, logger: logger}
}

// List returns every day.
func (s *ChallengeDayService) List(ctx context.Context) ([]models.ChallengeDay, error) {
	days, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list challenge days")
	}
	return days, nil
}

// Get returns one day.
func (s *ChallengeDayService) Get(ctx context.Context, dayNumber int) (*models.ChallengeDay, error) {
	day, err := s.repo.Get(ctx, dayNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "challenge day not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load challenge day")
	}
	return day, nil
}

// Update patches a day. is_expired is a one-way latch owned by the deadline
// job and cannot be changed here.
func (s *ChallengeDayService) Update(ctx context.Context, actor *models.JWTClaims, dayNumber int, req dto.UpdateChallengeDayRequest) (*models.ChallengeDay, error) {
	if err := requireAmbassador(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid challenge day payload")
	}
	day, err := s.Get(ctx, dayNumber)
	if err != nil {
		return nil, err
	}
	before, _ := json.Marshal(day)

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "title cannot be empty")
		}
		day.Title = title
	}
	if req.Description != nil {
		day.Description = *req.Description
	}
	if req.Deadline != nil {
		if day.IsExpired {
			return nil, appErrors.Clone(appErrors.ErrDeadlinePassed, "an expired day's deadline cannot be moved")
		}
		day.Deadline = req.Deadline.UTC()
	}
	if req.IsActive != nil {
		day.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, day); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update challenge day")
	}

	if s.audit != nil {
		after, _ := json.Marshal(day)
		resourceID := strconv.Itoa(dayNumber)
		actorID := actor.UserID
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     &actorID,
			Action:     models.AuditActionDayUpdate,
			Resource:   "challenge_day",
			ResourceID: &resourceID,
			OldValues:  before,
			NewValues:  after,
		}); err != nil {
			s.logger.Warn("failed to record day update audit log", zap.Int("day_number", dayNumber), zap.Error(err))
		}
	}
	if s.publisher != nil {
		s.publisher.Broadcast("day.updated", day)
	}
	return day, nil
}
