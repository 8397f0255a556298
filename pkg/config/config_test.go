package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 15, cfg.Challenge.TotalDays)
	assert.True(t, cfg.Challenge.GlobalUnlockOnValidate)
	assert.Equal(t, "@hourly", cfg.Deadline.Cron)
	assert.Equal(t, 10*time.Minute, cfg.Deadline.LockTTL)
	assert.Equal(t, []string{"image/jpeg", "image/png", "image/webp"}, cfg.Storage.AllowedMIMEs)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CHALLENGE_TOTAL_DAYS", "10")
	t.Setenv("DEADLINE_CRON", "*/30 * * * *")
	t.Setenv("LEADERBOARD_CACHE_TTL", "bogus")
	t.Setenv("STORAGE_DRIVER", "MINIO")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Challenge.TotalDays)
	assert.Equal(t, "*/30 * * * *", cfg.Deadline.Cron)
	assert.Equal(t, time.Minute, cfg.Leaderboard.CacheTTL)
	assert.Equal(t, "minio", cfg.Storage.Driver)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a, ,b "))
}
