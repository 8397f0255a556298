package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/OB-39/Marathon-Chalenge-sub000/pkg/errors"
)

type memCache struct {
	mu    sync.Mutex
	items map[string][]byte
	locks map[string]string
	sets  int
}

func newMemCache() *memCache {
	return &memCache{items: make(map[string][]byte), locks: make(map[string]string)}
}

func (c *memCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = raw
	c.sets++
	return nil
}

func (c *memCache) DeleteByPattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
	return nil
}

func (c *memCache) AcquireLock(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, held := c.locks[key]; held {
		return "", false, nil
	}
	token := key + "-token"
	c.locks[key] = token
	return token, true, nil
}

func (c *memCache) ReleaseLock(_ context.Context, key, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locks[key] == token {
		delete(c.locks, key)
	}
	return nil
}

func (c *memCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func TestCacheServiceGetSetInvalidate(t *testing.T) {
	repo := newMemCache()
	metrics := NewMetricsService()
	cache := NewCacheService(repo, metrics, time.Minute, nil, true)

	var out map[string]int
	hit, err := cache.Get(context.Background(), "leaderboard:page:1:20", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(context.Background(), "leaderboard:page:1:20", map[string]int{"total": 3}, 0))
	hit, err = cache.Get(context.Background(), "leaderboard:page:1:20", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, out["total"])

	require.NoError(t, cache.Invalidate(context.Background(), "leaderboard:*"))
	assert.Zero(t, repo.size())

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
}

func TestCacheServiceLock(t *testing.T) {
	cache := NewCacheService(newMemCache(), nil, time.Minute, nil, true)

	release, ok, err := cache.Lock(context.Background(), DeadlineRunLockKey, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = cache.Lock(context.Background(), DeadlineRunLockKey, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	release()
	_, ok, err = cache.Lock(context.Background(), DeadlineRunLockKey, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCacheServiceDisabled(t *testing.T) {
	cache := NewCacheService(newMemCache(), nil, time.Minute, nil, false)
	assert.False(t, cache.Enabled())

	release, ok, err := cache.Lock(context.Background(), "any", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	release()

	var nilCache *CacheService
	hit, err := nilCache.Get(context.Background(), "k", &struct{}{})
	require.NoError(t, err)
	assert.False(t, hit)
}
