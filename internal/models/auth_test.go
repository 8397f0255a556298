package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRefreshTokenActive(t *testing.T) {
	now := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	token := &RefreshToken{ExpiresAt: now.Add(time.Minute)}
	assert.True(t, token.Active(now))
	assert.False(t, token.Active(now.Add(time.Minute)))

	token.Revoked = true
	assert.False(t, token.Active(now))

	var missing *RefreshToken
	assert.False(t, missing.Active(now))
}
