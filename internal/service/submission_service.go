package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/dto"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/repository"
	appErrors "github.com/OB-39/Marathon-Chalenge-sub000/pkg/errors"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/storage"
)

type submissionRepository interface {
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	GetByUserDay(ctx context.Context, userID string, dayNumber int) (*models.Submission, error)
	ListByUser(ctx context.Context, userID string) ([]models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	Resubmit(ctx context.Context, submission *models.Submission) error
	DeletePending(ctx context.Context, id, userID string) error
}

type challengeDayReader interface {
	List(ctx context.Context) ([]models.ChallengeDay, error)
	Get(ctx context.Context, dayNumber int) (*models.ChallengeDay, error)
}

type profileFinder interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
}

// SubmissionServiceParams groups constructor dependencies.
type SubmissionServiceParams struct {
	Repo      submissionRepository
	Days      challengeDayReader
	Profiles  profileFinder
	Store     storage.ObjectStore
	Upload    UploadPolicy
	TotalDays int
	Validator *validator.Validate
	Logger    *zap.Logger
}

// SubmissionService implements participant self-service on submissions.
type SubmissionService struct {
	repo      submissionRepository
	days      challengeDayReader
	profiles  profileFinder
	store     storage.ObjectStore
	upload    UploadPolicy
	totalDays int
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubmissionService constructs the service.
func NewSubmissionService(params SubmissionServiceParams) *SubmissionService {
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	totalDays := params.TotalDays
	if totalDays <= 0 {
		totalDays = models.DefaultTotalDays
	}
	return &SubmissionService{
		repo:      params.Repo,
		days:      params.Days,
		profiles:  params.Profiles,
		store:     params.Store,
		upload:    params.Upload,
		totalDays: totalDays,
		validator: validate,
		logger:    logger,
	}
}

// Create records the participant's proof for a day. An existing pending or
// rejected row is rewritten back to pending; created reports whether a new
// row was inserted.
func (s *SubmissionService) Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateSubmissionRequest) (submission *models.Submission, created bool, err error) {
	if actor == nil {
		return nil, false, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	req.PostLink = strings.TrimSpace(req.PostLink)
	req.Platform = strings.ToLower(strings.TrimSpace(req.Platform))
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}
	if req.DayNumber > s.totalDays {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "day_number is outside the program")
	}
	if err := s.ensureParticipant(ctx, actor); err != nil {
		return nil, false, err
	}

	day, err := s.days.Get(ctx, req.DayNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "challenge day not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load challenge day")
	}
	if day.IsExpired {
		return nil, false, appErrors.Clone(appErrors.ErrDeadlinePassed, "the deadline for this day has passed")
	}

	unlocked, err := s.unlockedFor(ctx, actor.UserID, day.DayNumber)
	if err != nil {
		return nil, false, err
	}
	if !unlocked && !day.WindowOpen() {
		return nil, false, appErrors.Clone(appErrors.ErrDayLocked, "validate the previous day first")
	}

	existing, err := s.repo.GetByUserDay(ctx, actor.UserID, day.DayNumber)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}

	submission = &models.Submission{
		UserID:      actor.UserID,
		DayNumber:   day.DayNumber,
		Platform:    models.Platform(req.Platform),
		PostLink:    req.PostLink,
		TextContent: req.TextContent,
		ImageURL:    req.ImageURL,
	}

	if existing == nil {
		if err := s.repo.Create(ctx, submission); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, false, appErrors.Clone(appErrors.ErrConflict, "a submission for this day already exists")
			}
			return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create submission")
		}
		s.logger.Info("submission created", zap.String("submission_id", submission.ID), zap.String("user_id", actor.UserID), zap.Int("day_number", day.DayNumber))
		return submission, true, nil
	}

	if !resubmittable(existing) {
		return nil, false, appErrors.Clone(appErrors.ErrSubmissionLocked, "this day's submission can no longer be changed")
	}
	submission.ID = existing.ID
	submission.CreatedAt = existing.CreatedAt
	if err := s.repo.Resubmit(ctx, submission); err != nil {
		if errors.Is(err, repository.ErrStale) {
			return nil, false, appErrors.Clone(appErrors.ErrSubmissionLocked, "this day's submission can no longer be changed")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resubmit")
	}
	s.logger.Info("submission resubmitted", zap.String("submission_id", submission.ID), zap.String("user_id", actor.UserID), zap.Int("day_number", day.DayNumber))
	return submission, false, nil
}

// Delete removes the caller's own pending submission.
func (s *SubmissionService) Delete(ctx context.Context, actor *models.JWTClaims, submissionID string) error {
	if actor == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	existing, err := s.repo.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	if existing.UserID != actor.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "submission belongs to another participant")
	}
	if existing.Status != models.SubmissionPending {
		return appErrors.Clone(appErrors.ErrSubmissionLocked, "only pending submissions can be deleted")
	}
	if err := s.repo.DeletePending(ctx, submissionID, actor.UserID); err != nil {
		if errors.Is(err, repository.ErrStale) {
			return appErrors.Clone(appErrors.ErrSubmissionLocked, "only pending submissions can be deleted")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete submission")
	}
	return nil
}

// Get returns a submission visible to its owner or to ambassadors.
func (s *SubmissionService) Get(ctx context.Context, actor *models.JWTClaims, submissionID string) (*models.Submission, error) {
	if actor == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	submission, err := s.repo.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	if submission.UserID != actor.UserID && !actor.IsAmbassador() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "submission belongs to another participant")
	}
	return submission, nil
}

// ListMine returns the caller's submissions ordered by day.
func (s *SubmissionService) ListMine(ctx context.Context, userID string) ([]models.Submission, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	return rows, nil
}

// Progress builds the participant's per-day view. The global window and the
// participant's own unlock are reported separately.
func (s *SubmissionService) Progress(ctx context.Context, userID string) (*dto.ProgressResponse, error) {
	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	days, err := s.days.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list challenge days")
	}
	submissions, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	return &dto.ProgressResponse{
		UserID:      userID,
		TotalPoints: profile.TotalPoints,
		Days:        buildProgress(days, submissions),
	}, nil
}

// UploadProof stores a proof image for the caller and returns its public URL.
func (s *SubmissionService) UploadProof(ctx context.Context, userID string, upload Upload) (*dto.ProofUploadResponse, error) {
	return storeImage(ctx, s.store, s.upload, "proofs", userID, upload)
}

func (s *SubmissionService) ensureParticipant(ctx context.Context, actor *models.JWTClaims) error {
	if actor.Role != models.RoleStudent {
		return appErrors.Clone(appErrors.ErrForbidden, "only participants can submit")
	}
	profile, err := s.profiles.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	if !profile.IsRegistered {
		return appErrors.Clone(appErrors.ErrForbidden, "complete your profile before submitting")
	}
	return nil
}

// unlockedFor reports whether dayNumber is unlocked for the participant: day 1
// always is, later days need the previous day validated.
func (s *SubmissionService) unlockedFor(ctx context.Context, userID string, dayNumber int) (bool, error) {
	if dayNumber <= 1 {
		return true, nil
	}
	prev, err := s.repo.GetByUserDay(ctx, userID, dayNumber-1)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load previous submission")
	}
	return prev.Status == models.SubmissionValidated, nil
}

func resubmittable(s *models.Submission) bool {
	if s.MissedDeadline {
		return false
	}
	return s.Status == models.SubmissionPending || s.Status == models.SubmissionRejected
}

func buildProgress(days []models.ChallengeDay, submissions []models.Submission) []models.DayProgress {
	byDay := make(map[int]*models.Submission, len(submissions))
	for i := range submissions {
		byDay[submissions[i].DayNumber] = &submissions[i]
	}
	progress := make([]models.DayProgress, 0, len(days))
	for _, day := range days {
		entry := models.DayProgress{
			DayNumber:  day.DayNumber,
			Title:      day.Title,
			Deadline:   day.Deadline,
			WindowOpen: day.WindowOpen(),
			Expired:    day.IsExpired,
			MaxScore:   models.MaxScore(day.DayNumber),
		}
		if day.DayNumber <= 1 {
			entry.Unlocked = true
		} else if prev, ok := byDay[day.DayNumber-1]; ok && prev.Status == models.SubmissionValidated {
			entry.Unlocked = true
		}
		current, hasCurrent := byDay[day.DayNumber]
		if hasCurrent {
			id := current.ID
			status := current.Status
			entry.SubmissionID = &id
			entry.Status = &status
			entry.ScoreAwarded = current.ScoreAwarded
			entry.MissedDeadline = current.MissedDeadline
		}
		entry.CanSubmit = !day.IsExpired && (entry.Unlocked || entry.WindowOpen) && (!hasCurrent || resubmittable(current))
		progress = append(progress, entry)
	}
	return progress
}
