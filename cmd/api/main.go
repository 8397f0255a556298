package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/OB-39/Marathon-Chalenge-sub000/api/swagger"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/handler"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/middleware"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/repository"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/service"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/cache"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/config"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/database"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/export"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/jobs"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/logger"
	corsmiddleware "github.com/OB-39/Marathon-Chalenge-sub000/pkg/middleware/cors"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/OB-39/Marathon-Chalenge-sub000/pkg/middleware/requestid"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/realtime"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/storage"
)

// @title Marathon Challenge API
// @version 1.0.0
// @description Fifteen-day social posting challenge: submissions, reviews, points and leaderboard.
// @BasePath /
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	var (
		redisClient *redis.Client
		cacheRepo   service.CacheRepository
	)
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("redis connection failed", "error", err)
		}
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		defer redisClient.Close()
	}

	validate := validator.New()
	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Leaderboard.CacheTTL, logr, cfg.Redis.Enabled)

	profileRepo := repository.NewProfileRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	dayRepo := repository.NewChallengeDayRepository(db)
	leaderboardRepo := repository.NewLeaderboardRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)

	hub := realtime.NewHub(logr, corsmiddleware.OriginChecker(cfg.CORS.AllowedOrigins))
	hub.OnConnectionsChanged(metrics.SetRealtimeConnections)

	notifications := service.NewNotificationService(hub, messageRepo, profileRepo, logr)
	mux := jobs.NewMux()
	notifications.Register(mux)
	queue := jobs.NewQueue("notifications", mux.Process, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		MaxRetries: cfg.Notifications.Retries,
		Logger:     logr,
	})
	notifications.SetQueue(queue)

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logr.Sugar().Fatalw("object storage init failed", "error", err)
	}
	upload := service.UploadPolicy{MaxBytes: cfg.Storage.MaxUploadBytes, AllowedMIMEs: cfg.Storage.AllowedMIMEs}

	authSvc := service.NewAuthService(profileRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	leaderboardSvc := service.NewLeaderboardService(leaderboardRepo, cacheSvc, cfg.Leaderboard.CacheTTL, logr)
	profileSvc := service.NewProfileService(profileRepo, store, upload, leaderboardSvc, validate, logr)
	daySvc := service.NewChallengeDayService(dayRepo, profileRepo, hub, validate, logr)
	submissionSvc := service.NewSubmissionService(service.SubmissionServiceParams{
		Repo:      submissionRepo,
		Days:      dayRepo,
		Profiles:  profileRepo,
		Store:     store,
		Upload:    upload,
		TotalDays: cfg.Challenge.TotalDays,
		Validator: validate,
		Logger:    logr,
	})
	reviewSvc := service.NewReviewService(service.ReviewServiceParams{
		Repo:        submissionRepo,
		Audit:       profileRepo,
		Leaderboard: leaderboardSvc,
		Notifier:    notifications,
		Metrics:     metrics,
		Validator:   validate,
		Logger:      logr,
		Config: service.ReviewConfig{
			TotalDays:              cfg.Challenge.TotalDays,
			GlobalUnlockOnValidate: cfg.Challenge.GlobalUnlockOnValidate,
		},
	})
	deadlineSvc := service.NewDeadlineService(service.DeadlineServiceParams{
		Repo:     dayRepo,
		Locker:   cacheSvc,
		Notifier: notifications,
		Metrics:  metrics,
		Logger:   logr,
		Config:   service.DeadlineConfig{TotalDays: cfg.Challenge.TotalDays, LockTTL: cfg.Deadline.LockTTL},
	})
	exportSvc := service.NewExportService(leaderboardSvc, export.NewRenderer(), logr)
	messageSvc := service.NewMessageService(messageRepo, profileRepo, notifications, validate, logr)
	announcementSvc := service.NewAnnouncementService(announcementRepo, hub, validate, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Stats:       submissionRepo,
		Leaderboard: leaderboardSvc,
		Metrics:     metrics,
		Cache:       cacheSvc,
		Logger:      logr,
	})

	checks := map[string]handler.ReadinessCheck{"database": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	handlers := handler.Handlers{
		Auth:         handler.NewAuthHandler(authSvc),
		Profile:      handler.NewProfileHandler(profileSvc),
		Days:         handler.NewChallengeDayHandler(daySvc),
		Submission:   handler.NewSubmissionHandler(submissionSvc),
		Review:       handler.NewReviewHandler(reviewSvc),
		Deadline:     handler.NewDeadlineHandler(deadlineSvc),
		Leaderboard:  handler.NewLeaderboardHandler(leaderboardSvc, exportSvc),
		Message:      handler.NewMessageHandler(messageSvc),
		Announcement: handler.NewAnnouncementHandler(announcementSvc),
		Dashboard:    handler.NewDashboardHandler(dashboardSvc),
		Realtime:     handler.NewRealtimeHandler(hub, logr),
		Metrics:      handler.NewMetricsHandler(metrics.Handler(), checks),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	handler.RegisterRoutes(r, handlers, handler.RouteOptions{
		APIPrefix:  cfg.APIPrefix,
		Tokens:     authSvc,
		CronSecret: cfg.Deadline.TriggerSecret,
		WriteLimit: ratelimit.NewIPLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Middleware(),
		Audit:      profileRepo,
		Logger:     logr,
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	queue.Start(ctx)
	defer queue.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		logr.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logr.Error("server stopped with error", zap.Error(err))
	}
}
