package worker

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/dto"
	appErrors "github.com/OB-39/Marathon-Chalenge-sub000/pkg/errors"
)

// TypeDeadlineRun is the task type that expires passed challenge days.
const TypeDeadlineRun = "deadline:run"

const deadlineQueue = "critical"

type deadlineRunner interface {
	Run(ctx context.Context) (*dto.DeadlineRunReport, error)
}

// NewDeadlineRunTask builds the task enqueued by the scheduler.
func NewDeadlineRunTask() *asynq.Task {
	return asynq.NewTask(TypeDeadlineRun, nil,
		asynq.Queue(deadlineQueue),
		asynq.MaxRetry(3),
		asynq.Timeout(5*time.Minute),
	)
}

// DeadlineHandler processes deadline:run tasks.
type DeadlineHandler struct {
	runner deadlineRunner
	logger *zap.Logger
}

// NewDeadlineHandler constructs the handler.
func NewDeadlineHandler(runner deadlineRunner, logger *zap.Logger) *DeadlineHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeadlineHandler{runner: runner, logger: logger}
}

// ProcessTask implements asynq.Handler. A run already held by another
// instance is treated as done; any other failure is retried by asynq.
func (h *DeadlineHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	start := time.Now()
	report, err := h.runner.Run(ctx)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrJobRunning) {
			h.logger.Info("deadline run skipped, another run holds the lock", zap.String("task_type", t.Type()))
			return nil
		}
		h.logger.Error("deadline run failed", zap.String("task_type", t.Type()), zap.Error(err))
		return err
	}

	h.logger.Info("deadline run finished",
		zap.Int("processed_days", report.ProcessedDays),
		zap.Int("missed_submissions_created", report.MissedSubmissionsCreated),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// Register mounts every task handler on mux.
func Register(mux *asynq.ServeMux, deadlines *DeadlineHandler) {
	mux.Handle(TypeDeadlineRun, deadlines)
}
