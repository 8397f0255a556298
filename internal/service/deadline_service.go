package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/dto"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/repository"
	appErrors "github.com/OB-39/Marathon-Chalenge-sub000/pkg/errors"
)

// DeadlineRunLockKey guards against concurrent deadline runs across instances.
const DeadlineRunLockKey = "lock:deadline-expiry"

type deadlineRepository interface {
	ListDue(ctx context.Context, now time.Time) ([]models.ChallengeDay, error)
	ExpireDay(ctx context.Context, params repository.ExpireDayParams) (repository.ExpireDayResult, error)
}

type runLocker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error)
}

type deadlineNotifier interface {
	DeadlineProcessed(report *dto.DeadlineRunReport)
}

// DeadlineConfig shapes the expiry job.
type DeadlineConfig struct {
	TotalDays int
	LockTTL   time.Duration
}

// DeadlineServiceParams groups constructor dependencies.
type DeadlineServiceParams struct {
	Repo     deadlineRepository
	Locker   runLocker
	Notifier deadlineNotifier
	Metrics  *MetricsService
	Logger   *zap.Logger
	Config   DeadlineConfig
}

// DeadlineService closes days whose deadline has passed.
type DeadlineService struct {
	repo     deadlineRepository
	locker   runLocker
	notifier deadlineNotifier
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      DeadlineConfig
	now      func() time.Time
}

// NewDeadlineService constructs the service.
func NewDeadlineService(params DeadlineServiceParams) *DeadlineService {
	cfg := params.Config
	if cfg.TotalDays <= 0 {
		cfg.TotalDays = models.DefaultTotalDays
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeadlineService{
		repo:     params.Repo,
		locker:   params.Locker,
		notifier: params.Notifier,
		metrics:  params.Metrics,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Run expires every due day. Each day commits on its own; an error stops the
// run and is returned, leaving already committed days in place. Running it
// again is a no-op for days that are already expired.
func (s *DeadlineService) Run(ctx context.Context) (*dto.DeadlineRunReport, error) {
	now := s.now().UTC()

	if s.locker != nil {
		release, ok, err := s.locker.Lock(ctx, DeadlineRunLockKey, s.cfg.LockTTL)
		if err != nil {
			s.metrics.RecordDeadlineRun("error", 0)
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire deadline lock")
		}
		if !ok {
			s.metrics.RecordDeadlineRun("busy", 0)
			return nil, appErrors.Clone(appErrors.ErrJobRunning, "a deadline run is already in progress")
		}
		defer release()
	}

	due, err := s.repo.ListDue(ctx, now)
	if err != nil {
		s.metrics.RecordDeadlineRun("error", 0)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list due days")
	}

	report := &dto.DeadlineRunReport{Success: true, Days: []dto.DeadlineDayReport{}, RanAt: now}
	if len(due) == 0 {
		report.Message = "no deadlines to process"
		s.metrics.RecordDeadlineRun("noop", 0)
		return report, nil
	}

	feedback := fmt.Sprintf("Deadline missed: no submission was received before the deadline. Processed at %s.", now.Format(time.RFC3339))
	for _, day := range due {
		start := time.Now()
		result, err := s.repo.ExpireDay(ctx, repository.ExpireDayParams{
			DayNumber: day.DayNumber,
			TotalDays: s.cfg.TotalDays,
			Feedback:  feedback,
			Now:       now,
			Missing:   missingParticipants,
		})
		s.metrics.ObserveDBQuery("expire_day", time.Since(start))
		if err != nil {
			s.logger.Error("deadline expiry failed", zap.Int("day_number", day.DayNumber), zap.Error(err))
			s.metrics.RecordDeadlineRun("error", report.MissedSubmissionsCreated)
			s.finish(report)
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to expire day %d", day.DayNumber))
		}
		if result.Skipped {
			continue
		}
		report.ProcessedDays++
		report.MissedSubmissionsCreated += result.Created
		report.Days = append(report.Days, dto.DeadlineDayReport{DayNumber: day.DayNumber, Deadline: day.Deadline, Missed: result.Created})
		s.logger.Info("challenge day expired", zap.Int("day_number", day.DayNumber), zap.Int("missed", result.Created))
	}

	report.Message = fmt.Sprintf("processed %d day(s), created %d missed submission(s)", report.ProcessedDays, report.MissedSubmissionsCreated)
	s.metrics.RecordDeadlineRun("success", report.MissedSubmissionsCreated)
	s.finish(report)
	return report, nil
}

// finish announces whatever was committed.
func (s *DeadlineService) finish(report *dto.DeadlineRunReport) {
	if report.ProcessedDays == 0 {
		return
	}
	if s.notifier != nil {
		s.notifier.DeadlineProcessed(report)
	}
}
