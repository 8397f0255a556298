package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
	appErrors "github.com/OB-39/Marathon-Chalenge-sub000/pkg/errors"
)

const leaderboardCachePrefix = "leaderboard:"

type leaderboardRepository interface {
	List(ctx context.Context, limit, offset int) ([]models.LeaderboardEntry, int, error)
	Rank(ctx context.Context, userID string) (*models.ParticipantRank, error)
}

type leaderboardPage struct {
	Entries []models.LeaderboardEntry `json:"entries"`
	Total   int                       `json:"total"`
}

// LeaderboardService ranks participants and caches pages in Redis.
type LeaderboardService struct {
	repo   leaderboardRepository
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
}

// NewLeaderboardService constructs the service. cache may be nil.
func NewLeaderboardService(repo leaderboardRepository, cache *CacheService, ttl time.Duration, logger *zap.Logger) *LeaderboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &LeaderboardService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// List returns one page of the leaderboard and whether it was served from cache.
func (s *LeaderboardService) List(ctx context.Context, page, pageSize int) ([]models.LeaderboardEntry, *models.Pagination, bool, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	key := fmt.Sprintf("%spage:%d:%d", leaderboardCachePrefix, page, pageSize)

	var cached leaderboardPage
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached.Entries, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: cached.Total}, true, nil
	}

	entries, total, err := s.repo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leaderboard")
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	_ = s.cache.Set(ctx, key, leaderboardPage{Entries: entries, Total: total}, s.ttl)
	return entries, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, false, nil
}

// All returns the complete leaderboard, bypassing the cache.
func (s *LeaderboardService) All(ctx context.Context) ([]models.LeaderboardEntry, error) {
	entries, _, err := s.repo.List(ctx, 0, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leaderboard")
	}
	return entries, nil
}

// Rank returns one participant's standing.
func (s *LeaderboardService) Rank(ctx context.Context, userID string) (*models.ParticipantRank, error) {
	rank, err := s.repo.Rank(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "participant is not on the leaderboard")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rank")
	}
	return rank, nil
}

// Invalidate drops every cached leaderboard page.
func (s *LeaderboardService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, leaderboardCachePrefix+"*"); err != nil {
		s.logger.Warn("failed to invalidate leaderboard cache", zap.Error(err))
	}
}
