package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
	appErrors "github.com/OB-39/Marathon-Chalenge-sub000/pkg/errors"
)

type fakeLeaderboardRepo struct {
	entries []models.LeaderboardEntry
	calls   int
	err     error
}

func (f *fakeLeaderboardRepo) List(_ context.Context, limit, offset int) ([]models.LeaderboardEntry, int, error) {
	f.calls++
	if f.err != nil {
		return nil, 0, f.err
	}
	if limit <= 0 {
		return f.entries, len(f.entries), nil
	}
	end := offset + limit
	if offset > len(f.entries) {
		offset = len(f.entries)
	}
	if end > len(f.entries) {
		end = len(f.entries)
	}
	return f.entries[offset:end], len(f.entries), nil
}

func (f *fakeLeaderboardRepo) Rank(_ context.Context, userID string) (*models.ParticipantRank, error) {
	for _, entry := range f.entries {
		if entry.UserID == userID {
			return &models.ParticipantRank{UserID: userID, Rank: entry.Rank, TotalPoints: entry.TotalPoints, TotalParticipants: len(f.entries)}, nil
		}
	}
	return nil, sql.ErrNoRows
}

func sampleLeaderboard() []models.LeaderboardEntry {
	uni := "Universitas Indonesia"
	return []models.LeaderboardEntry{
		{Rank: 1, UserID: "u1", FullName: "Ayu", University: &uni, TotalPoints: 40, ValidatedCount: 3},
		{Rank: 1, UserID: "u2", FullName: "Bima", TotalPoints: 40, ValidatedCount: 3},
		{Rank: 2, UserID: "u3", FullName: "Citra", TotalPoints: 12, ValidatedCount: 1},
	}
}

func TestLeaderboardListCachesPages(t *testing.T) {
	repo := &fakeLeaderboardRepo{entries: sampleLeaderboard()}
	cache := NewCacheService(newMemCache(), nil, time.Minute, nil, true)
	svc := NewLeaderboardService(repo, cache, time.Minute, nil)

	entries, pagination, cached, err := svc.List(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, cached)
	require.Len(t, entries, 2)
	assert.Equal(t, 3, pagination.TotalCount)

	entries, _, cached, err = svc.List(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, "Ayu", entries[0].FullName)
	assert.Equal(t, 1, repo.calls)

	svc.Invalidate(context.Background())
	_, _, cached, err = svc.List(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, repo.calls)
}

func TestLeaderboardWithoutCache(t *testing.T) {
	repo := &fakeLeaderboardRepo{}
	svc := NewLeaderboardService(repo, nil, 0, nil)

	entries, pagination, cached, err := svc.List(context.Background(), 0, 500)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.NotNil(t, entries)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	svc.Invalidate(context.Background())
}

func TestLeaderboardRank(t *testing.T) {
	svc := NewLeaderboardService(&fakeLeaderboardRepo{entries: sampleLeaderboard()}, nil, 0, nil)

	rank, err := svc.Rank(context.Background(), "u3")
	require.NoError(t, err)
	assert.Equal(t, 2, rank.Rank)
	assert.Equal(t, 3, rank.TotalParticipants)

	_, err = svc.Rank(context.Background(), "ghost")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestLeaderboardErrors(t *testing.T) {
	svc := NewLeaderboardService(&fakeLeaderboardRepo{err: errors.New("boom")}, nil, 0, nil)
	_, _, _, err := svc.List(context.Background(), 1, 10)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	_, err = svc.All(context.Background())
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
