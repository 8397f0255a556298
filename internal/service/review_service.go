package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/dto"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/repository"
	appErrors "github.com/OB-39/Marathon-Chalenge-sub000/pkg/errors"
)

type reviewRepository interface {
	ApplyReview(ctx context.Context, params repository.ReviewParams) (*models.ReviewResult, error)
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.SubmissionDetail, int, error)
}

type auditRecorder interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type leaderboardInvalidator interface {
	Invalidate(ctx context.Context)
}

type reviewNotifier interface {
	SubmissionReviewed(result *models.ReviewResult, reviewerID string)
}

// ReviewConfig shapes review behaviour.
type ReviewConfig struct {
	TotalDays              int
	GlobalUnlockOnValidate bool
}

// ReviewServiceParams groups constructor dependencies.
type ReviewServiceParams struct {
	Repo        reviewRepository
	Audit       auditRecorder
	Leaderboard leaderboardInvalidator
	Notifier    reviewNotifier
	Metrics     *MetricsService
	Validator   *validator.Validate
	Logger      *zap.Logger
	Config      ReviewConfig
}

// ReviewService lets ambassadors validate and reject submissions. Every
// review runs in one transaction that also moves the owner's points.
type ReviewService struct {
	repo        reviewRepository
	audit       auditRecorder
	leaderboard leaderboardInvalidator
	notifier    reviewNotifier
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         ReviewConfig
	now         func() time.Time
}

// NewReviewService constructs the service.
func NewReviewService(params ReviewServiceParams) *ReviewService {
	cfg := params.Config
	if cfg.TotalDays <= 0 {
		cfg.TotalDays = models.DefaultTotalDays
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{
		repo:        params.Repo,
		audit:       params.Audit,
		leaderboard: params.Leaderboard,
		notifier:    params.Notifier,
		metrics:     params.Metrics,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Validate marks a submission validated with score and moves the owner's
// points by the difference from what the submission contributed before.
func (s *ReviewService) Validate(ctx context.Context, actor *models.JWTClaims, submissionID string, req dto.ValidateSubmissionRequest) (*models.ReviewResult, error) {
	if err := requireAmbassador(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}
	score := *req.Score
	return s.apply(ctx, actor, submissionID, models.DecisionValidate, func(current models.Submission) (models.ReviewOutcome, error) {
		return decideValidate(current, score, s.cfg.TotalDays, s.cfg.GlobalUnlockOnValidate)
	})
}

// Reject marks a submission rejected, forces its score to zero and withdraws
// what it contributed. The ledger never drops below zero.
func (s *ReviewService) Reject(ctx context.Context, actor *models.JWTClaims, submissionID string, req dto.RejectSubmissionRequest) (*models.ReviewResult, error) {
	if err := requireAmbassador(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}
	comment := req.Comment
	if comment != nil {
		trimmed := strings.TrimSpace(*comment)
		if trimmed == "" {
			comment = nil
		} else {
			comment = &trimmed
		}
	}
	return s.apply(ctx, actor, submissionID, models.DecisionReject, func(current models.Submission) (models.ReviewOutcome, error) {
		return decideReject(current, comment), nil
	})
}

func (s *ReviewService) apply(ctx context.Context, actor *models.JWTClaims, submissionID string, decision models.ReviewDecision, decide func(models.Submission) (models.ReviewOutcome, error)) (*models.ReviewResult, error) {
	if strings.TrimSpace(submissionID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "submission id is required")
	}
	start := time.Now()
	result, err := s.repo.ApplyReview(ctx, repository.ReviewParams{
		SubmissionID: submissionID,
		ReviewerID:   actor.UserID,
		ReviewedAt:   s.now().UTC(),
		Decide:       decide,
	})
	s.metrics.ObserveDBQuery("apply_review", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply review")
	}

	s.logger.Info("submission reviewed",
		zap.String("submission_id", submissionID),
		zap.String("decision", string(decision)),
		zap.String("reviewer_id", actor.UserID),
		zap.Int("point_delta", result.PointDelta),
	)
	s.metrics.RecordReview(decision)
	s.afterReview(ctx, actor, decision, result)
	return result, nil
}

// afterReview runs best-effort side effects. None of them can fail the review.
func (s *ReviewService) afterReview(ctx context.Context, actor *models.JWTClaims, decision models.ReviewDecision, result *models.ReviewResult) {
	if s.leaderboard != nil && result.PointDelta != 0 {
		s.leaderboard.Invalidate(ctx)
	}
	if s.notifier != nil {
		s.notifier.SubmissionReviewed(result, actor.UserID)
	}
	if s.audit != nil {
		action := models.AuditActionValidate
		if decision == models.DecisionReject {
			action = models.AuditActionReject
		}
		oldValues, _ := json.Marshal(map[string]interface{}{"status": result.PreviousStatus})
		newValues, _ := json.Marshal(map[string]interface{}{
			"status":        result.Submission.Status,
			"score_awarded": result.Submission.ScoreAwarded,
			"point_delta":   result.PointDelta,
		})
		submissionID := result.Submission.ID
		reviewerID := actor.UserID
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     &reviewerID,
			Action:     action,
			Resource:   "submission",
			ResourceID: &submissionID,
			OldValues:  oldValues,
			NewValues:  newValues,
		}); err != nil {
			s.logger.Warn("failed to record review audit log", zap.String("submission_id", submissionID), zap.Error(err))
		}
	}
}

// List returns the review queue.
func (s *ReviewService) List(ctx context.Context, actor *models.JWTClaims, query dto.SubmissionQuery) ([]models.SubmissionDetail, *models.Pagination, error) {
	if err := requireAmbassador(actor); err != nil {
		return nil, nil, err
	}
	filter := models.SubmissionFilter{
		Missed:   query.Missed,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.Status != "" {
		status := models.SubmissionStatus(strings.ToLower(query.Status))
		switch status {
		case models.SubmissionPending, models.SubmissionValidated, models.SubmissionRejected:
			filter.Status = &status
		default:
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown status filter")
		}
	}
	if query.UserID != "" {
		userID, err := uuid.Parse(query.UserID)
		if err != nil {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "user_id must be a valid UUID")
		}
		filter.UserID = userID.String()
	}
	if query.DayNumber != 0 {
		if query.DayNumber < 1 || query.DayNumber > s.cfg.TotalDays {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "day_number is outside the program")
		}
		day := query.DayNumber
		filter.DayNumber = &day
	}
	if query.Platform != "" {
		platform := models.Platform(strings.ToLower(query.Platform))
		if !platform.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown platform filter")
		}
		filter.Platform = &platform
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	return rows, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

func requireAmbassador(actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	if !actor.IsAmbassador() {
		return appErrors.Clone(appErrors.ErrForbidden, "only ambassadors can perform this action")
	}
	return nil
}
