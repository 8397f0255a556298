package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Clone(ErrDeadlinePassed, "day 3 closed"))
	got := FromError(wrapped)
	assert.Equal(t, ErrDeadlinePassed.Code, got.Code)
	assert.Equal(t, http.StatusConflict, got.Status)
	assert.Equal(t, "day 3 closed", got.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	cause := errors.New("connection reset")
	got := FromError(cause)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.ErrorIs(t, got, cause)
}

func TestCloneDoesNotMutateSentinel(t *testing.T) {
	_ = Clone(ErrInvalidScore, "score must be between 0 and 10")
	assert.Equal(t, "score out of range", ErrInvalidScore.Message)
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("run: %w", Clone(ErrJobRunning, "deadline run already in progress"))
	assert.True(t, Is(err, ErrJobRunning))
	assert.False(t, Is(err, ErrConflict))
	assert.False(t, Is(errors.New("plain"), ErrJobRunning))
	assert.False(t, Is(nil, ErrJobRunning))
}
