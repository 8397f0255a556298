package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/dto"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
	appErrors "github.com/OB-39/Marathon-Chalenge-sub000/pkg/errors"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/storage"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func newSubmissionFixture(t *testing.T) (*memStore, *SubmissionService) {
	t.Helper()
	store := newMemStore(models.DefaultTotalDays, time.Now().Add(24*time.Hour))
	store.addStudent("stu-1", true)
	store.addStudent("stu-2", true)
	store.addStudent("newbie", false)

	local, err := storage.NewLocalStorage(t.TempDir(), "http://cdn.test/uploads")
	require.NoError(t, err)

	svc := NewSubmissionService(SubmissionServiceParams{
		Repo:      store,
		Days:      memDays{store: store},
		Profiles:  store,
		Store:     local,
		Upload:    UploadPolicy{MaxBytes: 1024, AllowedMIMEs: []string{"image/png", "image/jpeg"}},
		TotalDays: models.DefaultTotalDays,
	})
	return store, svc
}

func submissionRequest(day int) dto.CreateSubmissionRequest {
	return dto.CreateSubmissionRequest{DayNumber: day, Platform: "LinkedIn", PostLink: " https://linkedin.com/posts/abc "}
}

func codeOf(err error) string {
	return appErrors.FromError(err).Code
}

func TestSubmissionCreateInsertsPending(t *testing.T) {
	_, svc := newSubmissionFixture(t)

	sub, created, err := svc.Create(context.Background(), student, submissionRequest(1))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.SubmissionPending, sub.Status)
	assert.Equal(t, models.PlatformLinkedIn, sub.Platform)
	assert.Equal(t, "https://linkedin.com/posts/abc", sub.PostLink)
}

func TestSubmissionResubmitRewritesToPending(t *testing.T) {
	store, svc := newSubmissionFixture(t)
	comment := "wrong link"
	id := store.addSubmission(models.Submission{UserID: "stu-1", DayNumber: 1, Status: models.SubmissionRejected, ScoreAwarded: intPtr(0), RejectionComment: &comment})

	sub, created, err := svc.Create(context.Background(), student, submissionRequest(1))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, sub.ID)

	stored := store.submission(id)
	assert.Equal(t, models.SubmissionPending, stored.Status)
	assert.Nil(t, stored.RejectionComment)
	assert.Nil(t, stored.ScoreAwarded)
	assert.Equal(t, 1, store.countForDay(1, false))
}

func TestSubmissionPendingCanBeEdited(t *testing.T) {
	store, svc := newSubmissionFixture(t)
	_, _, err := svc.Create(context.Background(), student, submissionRequest(1))
	require.NoError(t, err)

	req := submissionRequest(1)
	req.Platform = "instagram"
	sub, created, err := svc.Create(context.Background(), student, req)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, models.PlatformInstagram, store.submission(sub.ID).Platform)
}

func TestSubmissionLockedStates(t *testing.T) {
	store, svc := newSubmissionFixture(t)
	store.addSubmission(models.Submission{UserID: "stu-1", DayNumber: 1, Status: models.SubmissionValidated, ScoreAwarded: intPtr(10)})
	_, _, err := svc.Create(context.Background(), student, submissionRequest(1))
	assert.Equal(t, appErrors.ErrSubmissionLocked.Code, codeOf(err))

	other := &models.JWTClaims{UserID: "stu-2", Role: models.RoleStudent}
	store.addSubmission(models.Submission{UserID: "stu-2", DayNumber: 1, Status: models.SubmissionRejected, ScoreAwarded: intPtr(0), MissedDeadline: true})
	_, _, err = svc.Create(context.Background(), other, submissionRequest(1))
	assert.Equal(t, appErrors.ErrSubmissionLocked.Code, codeOf(err))
}

func TestSubmissionExpiredDay(t *testing.T) {
	store, svc := newSubmissionFixture(t)
	store.mu.Lock()
	store.days[1].IsExpired = true
	store.mu.Unlock()

	_, _, err := svc.Create(context.Background(), student, submissionRequest(1))
	assert.Equal(t, appErrors.ErrDeadlinePassed.Code, codeOf(err))
}

func TestSubmissionDayUnlocking(t *testing.T) {
	store, svc := newSubmissionFixture(t)

	_, _, err := svc.Create(context.Background(), student, submissionRequest(2))
	assert.Equal(t, appErrors.ErrDayLocked.Code, codeOf(err))

	store.addSubmission(models.Submission{UserID: "stu-1", DayNumber: 1, Status: models.SubmissionValidated, ScoreAwarded: intPtr(9)})
	_, created, err := svc.Create(context.Background(), student, submissionRequest(2))
	require.NoError(t, err)
	assert.True(t, created)

	// A globally open window lets anyone in regardless of their own progress.
	other := &models.JWTClaims{UserID: "stu-2", Role: models.RoleStudent}
	_, _, err = svc.Create(context.Background(), other, submissionRequest(2))
	assert.Equal(t, appErrors.ErrDayLocked.Code, codeOf(err))
	store.mu.Lock()
	store.days[2].IsActive = true
	store.mu.Unlock()
	_, _, err = svc.Create(context.Background(), other, submissionRequest(2))
	require.NoError(t, err)
}

func TestSubmissionCreateRejectsNonParticipants(t *testing.T) {
	_, svc := newSubmissionFixture(t)

	_, _, err := svc.Create(context.Background(), &models.JWTClaims{UserID: "newbie", Role: models.RoleStudent}, submissionRequest(1))
	assert.Equal(t, appErrors.ErrForbidden.Code, codeOf(err))

	_, _, err = svc.Create(context.Background(), ambassador, submissionRequest(1))
	assert.Equal(t, appErrors.ErrForbidden.Code, codeOf(err))

	_, _, err = svc.Create(context.Background(), nil, submissionRequest(1))
	assert.Equal(t, appErrors.ErrUnauthorized.Code, codeOf(err))
}

func TestSubmissionCreateValidation(t *testing.T) {
	_, svc := newSubmissionFixture(t)

	_, _, err := svc.Create(context.Background(), student, submissionRequest(16))
	assert.Equal(t, appErrors.ErrValidation.Code, codeOf(err))

	req := submissionRequest(1)
	req.Platform = "myspace"
	_, _, err = svc.Create(context.Background(), student, req)
	assert.Equal(t, appErrors.ErrValidation.Code, codeOf(err))

	req = submissionRequest(1)
	req.PostLink = "not a link"
	_, _, err = svc.Create(context.Background(), student, req)
	assert.Equal(t, appErrors.ErrValidation.Code, codeOf(err))
}

func TestSubmissionDeleteRules(t *testing.T) {
	store, svc := newSubmissionFixture(t)
	pending := store.addSubmission(models.Submission{UserID: "stu-1", DayNumber: 1, Status: models.SubmissionPending})
	validated := store.addSubmission(models.Submission{UserID: "stu-1", DayNumber: 2, Status: models.SubmissionValidated, ScoreAwarded: intPtr(5)})
	foreign := store.addSubmission(models.Submission{UserID: "stu-2", DayNumber: 1, Status: models.SubmissionPending})

	assert.Equal(t, appErrors.ErrNotFound.Code, codeOf(svc.Delete(context.Background(), student, "missing")))
	assert.Equal(t, appErrors.ErrForbidden.Code, codeOf(svc.Delete(context.Background(), student, foreign)))
	assert.Equal(t, appErrors.ErrSubmissionLocked.Code, codeOf(svc.Delete(context.Background(), student, validated)))

	require.NoError(t, svc.Delete(context.Background(), student, pending))
	_, err := store.GetByID(context.Background(), pending)
	assert.Error(t, err)
}

func TestSubmissionGetVisibility(t *testing.T) {
	store, svc := newSubmissionFixture(t)
	id := store.addSubmission(models.Submission{UserID: "stu-2", DayNumber: 1, Status: models.SubmissionPending})

	_, err := svc.Get(context.Background(), student, id)
	assert.Equal(t, appErrors.ErrForbidden.Code, codeOf(err))

	sub, err := svc.Get(context.Background(), ambassador, id)
	require.NoError(t, err)
	assert.Equal(t, "stu-2", sub.UserID)
}

func TestSubmissionProgress(t *testing.T) {
	store, svc := newSubmissionFixture(t)
	store.addSubmission(models.Submission{UserID: "stu-1", DayNumber: 1, Status: models.SubmissionValidated, ScoreAwarded: intPtr(10)})
	store.addSubmission(models.Submission{UserID: "stu-1", DayNumber: 2, Status: models.SubmissionRejected, ScoreAwarded: intPtr(0), MissedDeadline: true})
	store.mu.Lock()
	store.profiles["stu-1"].TotalPoints = 10
	store.days[2].IsExpired = true
	store.mu.Unlock()

	progress, err := svc.Progress(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, progress.Days, models.DefaultTotalDays)
	assert.Equal(t, 10, progress.TotalPoints)

	day1 := progress.Days[0]
	assert.True(t, day1.WindowOpen)
	assert.True(t, day1.Unlocked)
	assert.False(t, day1.CanSubmit)
	assert.Equal(t, 10, day1.MaxScore)

	day2 := progress.Days[1]
	assert.True(t, day2.Unlocked)
	assert.True(t, day2.Expired)
	assert.True(t, day2.MissedDeadline)
	assert.False(t, day2.CanSubmit)

	day3 := progress.Days[2]
	assert.False(t, day3.Unlocked)
	assert.False(t, day3.CanSubmit)

	assert.Equal(t, 20, progress.Days[3].MaxScore)

	_, err = svc.Progress(context.Background(), "ghost")
	assert.Equal(t, appErrors.ErrNotFound.Code, codeOf(err))
}

func TestSubmissionUploadProof(t *testing.T) {
	_, svc := newSubmissionFixture(t)

	res, err := svc.UploadProof(context.Background(), "stu-1", Upload{Filename: "shot.png", Size: int64(len(pngHeader)), Body: bytes.NewReader(pngHeader)})
	require.NoError(t, err)
	assert.Equal(t, "image/png", res.ContentType)
	assert.True(t, strings.HasPrefix(res.Key, "proofs/stu-1/"))
	assert.True(t, strings.HasSuffix(res.Key, ".png"))
	assert.True(t, strings.HasPrefix(res.URL, "http://cdn.test/uploads/proofs/stu-1/"))

	text := []byte("just some text")
	_, err = svc.UploadProof(context.Background(), "stu-1", Upload{Filename: "shot.png", Size: int64(len(text)), Body: bytes.NewReader(text)})
	assert.Equal(t, appErrors.ErrValidation.Code, codeOf(err))

	_, err = svc.UploadProof(context.Background(), "stu-1", Upload{Filename: "big.png", Size: 4096, Body: bytes.NewReader(pngHeader)})
	assert.Equal(t, appErrors.ErrPayloadTooLarge.Code, codeOf(err))
}
