package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/config"
)

// RedisOpt converts the shared Redis settings into asynq connection options.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// NewServer creates the asynq server that executes scheduled tasks.
func NewServer(opt asynq.RedisConnOpt, logger *zap.Logger) *asynq.Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return asynq.NewServer(opt, asynq.Config{
		Concurrency:    2,
		RetryDelayFunc: asynq.DefaultRetryDelayFunc,
		Queues: map[string]int{
			deadlineQueue: 6,
			"default":     3,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error("asynq task failed", zap.String("task_type", task.Type()), zap.Error(err))
		}),
	})
}

// NewScheduler registers the periodic deadline task under cronspec
// (standard five-field cron or descriptors such as @hourly), evaluated in UTC.
func NewScheduler(opt asynq.RedisConnOpt, cronspec string, logger *zap.Logger) (*asynq.Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Location: time.UTC,
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				logger.Warn("failed to enqueue scheduled task", zap.Error(err))
				return
			}
			logger.Debug("scheduled task enqueued", zap.String("task_type", info.Type), zap.String("task_id", info.ID))
		},
	})
	if _, err := scheduler.Register(cronspec, NewDeadlineRunTask()); err != nil {
		return nil, fmt.Errorf("register deadline schedule %q: %w", cronspec, err)
	}
	return scheduler, nil
}
