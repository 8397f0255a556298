package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/repository"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/service"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/worker"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/cache"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/config"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/database"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/logger"
)

// The worker runs the scheduled deadline expiry. It needs Redis for both the
// task queue and the run lock shared with the API's manual trigger.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if !cfg.Redis.Enabled {
		logr.Fatal("worker requires REDIS_ENABLED=true")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Fatal("redis connection failed", zap.Error(err))
	}
	defer redisClient.Close()

	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(repository.NewCacheRepository(redisClient, logr), metrics, cfg.Leaderboard.CacheTTL, logr, true)
	deadlines := service.NewDeadlineService(service.DeadlineServiceParams{
		Repo:    repository.NewChallengeDayRepository(db),
		Locker:  cacheSvc,
		Metrics: metrics,
		Logger:  logr,
		Config:  service.DeadlineConfig{TotalDays: cfg.Challenge.TotalDays, LockTTL: cfg.Deadline.LockTTL},
	})

	redisOpt := worker.RedisOpt(cfg.Redis)
	srv := worker.NewServer(redisOpt, logr)
	mux := asynq.NewServeMux()
	worker.Register(mux, worker.NewDeadlineHandler(deadlines, logr))

	scheduler, err := worker.NewScheduler(redisOpt, cfg.Deadline.Cron, logr)
	if err != nil {
		logr.Fatal("scheduler init failed", zap.Error(err), zap.String("cron", cfg.Deadline.Cron))
	}

	if err := srv.Start(mux); err != nil {
		logr.Fatal("asynq server failed to start", zap.Error(err))
	}
	if err := scheduler.Start(); err != nil {
		srv.Shutdown()
		logr.Fatal("scheduler failed to start", zap.Error(err))
	}
	logr.Info("worker started", zap.String("cron", cfg.Deadline.Cron))

	<-ctx.Done()
	logr.Info("worker shutting down")
	scheduler.Shutdown()
	srv.Shutdown()
}
