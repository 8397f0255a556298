package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/dto"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
	appErrors "github.com/OB-39/Marathon-Chalenge-sub000/pkg/errors"
)

const dashboardCacheKey = "dash:reviewer"

type submissionStats interface {
	CountByStatus(ctx context.Context) ([]dto.StatusCount, error)
	CountByDay(ctx context.Context) ([]dto.DayStat, error)
}

type topParticipants interface {
	List(ctx context.Context, page, pageSize int) ([]models.LeaderboardEntry, *models.Pagination, bool, error)
}

type systemSnapshotter interface {
	Snapshot() models.SystemMetrics
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
	TopLimit int
}

// DashboardService aggregates review statistics for ambassadors.
type DashboardService struct {
	stats       submissionStats
	leaderboard topParticipants
	metrics     systemSnapshotter
	cache       *CacheService
	logger      *zap.Logger
	cfg         DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Stats       submissionStats
	Leaderboard topParticipants
	Metrics     systemSnapshotter
	Cache       *CacheService
	Logger      *zap.Logger
	Config      DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	if cfg.TopLimit <= 0 {
		cfg.TopLimit = 5
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		stats:       params.Stats,
		leaderboard: params.Leaderboard,
		metrics:     params.Metrics,
		cache:       params.Cache,
		logger:      logger,
		cfg:         cfg,
	}
}

// Reviewer returns submission statistics and indicates cache utilisation.
// System metrics are always read live.
func (s *DashboardService) Reviewer(ctx context.Context, actor *models.JWTClaims) (*dto.ReviewerDashboard, bool, error) {
	if err := requireAmbassador(actor); err != nil {
		return nil, false, err
	}
	if summary, hit := s.tryCache(ctx); hit {
		s.attachSystem(summary)
		return summary, true, nil
	}

	summary, err := s.compose(ctx)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, summary)
	s.attachSystem(summary)
	return summary, false, nil
}

func (s *DashboardService) compose(ctx context.Context) (*dto.ReviewerDashboard, error) {
	summary := &dto.ReviewerDashboard{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.stats.CountByStatus(gctx)
		summary.ByStatus = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.stats.CountByDay(gctx)
		summary.ByDay = rows
		return err
	})
	if s.leaderboard != nil {
		g.Go(func() error {
			entries, pagination, _, err := s.leaderboard.List(gctx, 1, s.cfg.TopLimit)
			if err != nil {
				return err
			}
			summary.TopParticipants = entries
			if pagination != nil {
				summary.RegisteredStudents = pagination.TotalCount
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build dashboard")
	}
	if summary.ByStatus == nil {
		summary.ByStatus = []dto.StatusCount{}
	}
	if summary.ByDay == nil {
		summary.ByDay = []dto.DayStat{}
	}
	if summary.TopParticipants == nil {
		summary.TopParticipants = []models.LeaderboardEntry{}
	}
	return summary, nil
}

func (s *DashboardService) attachSystem(summary *dto.ReviewerDashboard) {
	if s.metrics != nil {
		summary.System = s.metrics.Snapshot()
	}
}

func (s *DashboardService) tryCache(ctx context.Context) (*dto.ReviewerDashboard, bool) {
	if s.cache == nil {
		return nil, false
	}
	var cached dto.ReviewerDashboard
	hit, err := s.cache.Get(ctx, dashboardCacheKey, &cached)
	if err != nil {
		s.logger.Warn("dashboard cache read failed", zap.Error(err))
		return nil, false
	}
	if !hit {
		return nil, false
	}
	return &cached, true
}

func (s *DashboardService) persistCache(ctx context.Context, value *dto.ReviewerDashboard) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, dashboardCacheKey, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", dashboardCacheKey), zap.Error(err))
	}
}
