package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
	appErrors "github.com/OB-39/Marathon-Chalenge-sub000/pkg/errors"
)

type fakeAnnouncementRepo struct {
	items      map[string]*models.Announcement
	lastFilter models.AnnouncementFilter
}

func (f *fakeAnnouncementRepo) List(_ context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error) {
	f.lastFilter = filter
	var rows []models.Announcement
	for _, a := range f.items {
		rows = append(rows, *a)
	}
	return rows, len(rows), nil
}

func (f *fakeAnnouncementRepo) GetByID(_ context.Context, id string) (*models.Announcement, error) {
	a, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAnnouncementRepo) Create(_ context.Context, a *models.Announcement) error {
	a.ID = "ann-1"
	cp := *a
	f.items[a.ID] = &cp
	return nil
}

func (f *fakeAnnouncementRepo) Update(_ context.Context, a *models.Announcement) error {
	cp := *a
	f.items[a.ID] = &cp
	return nil
}

func (f *fakeAnnouncementRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.items, id)
	return nil
}

func TestAnnouncementCreateAndPublish(t *testing.T) {
	repo := &fakeAnnouncementRepo{items: map[string]*models.Announcement{}}
	publisher := &recordingPublisher{}
	svc := NewAnnouncementService(repo, publisher, nil, nil)

	ann, err := svc.Create(context.Background(), ambassador, AnnouncementRequest{Title: " Kickoff ", Content: "Day 1 starts", Audience: "students", Priority: "high", IsPinned: true})
	require.NoError(t, err)
	assert.Equal(t, "Kickoff", ann.Title)
	assert.Equal(t, models.AnnouncementAudienceStudents, ann.Audience)
	assert.Equal(t, models.AnnouncementPriorityHigh, ann.Priority)
	assert.Equal(t, ambassador.UserID, ann.CreatedBy)
	assert.False(t, ann.PublishedAt.IsZero())
	assert.Equal(t, []string{EventAnnouncementPublished}, publisher.types())

	future := time.Now().Add(48 * time.Hour)
	_, err = svc.Create(context.Background(), ambassador, AnnouncementRequest{Title: "Later", Content: "c", Audience: "ALL", Priority: "LOW", PublishedAt: &future})
	require.NoError(t, err)
	assert.Len(t, publisher.types(), 1)
}

func TestAnnouncementValidation(t *testing.T) {
	svc := NewAnnouncementService(&fakeAnnouncementRepo{items: map[string]*models.Announcement{}}, nil, nil, nil)

	_, err := svc.Create(context.Background(), ambassador, AnnouncementRequest{Title: "t", Content: "c", Audience: "CLASS", Priority: "LOW"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	published := time.Now()
	expires := published.Add(-time.Hour)
	_, err = svc.Create(context.Background(), ambassador, AnnouncementRequest{Title: "t", Content: "c", Audience: "ALL", Priority: "LOW", PublishedAt: &published, ExpiresAt: &expires})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), student, AnnouncementRequest{Title: "t", Content: "c", Audience: "ALL", Priority: "LOW"})
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAnnouncementListScopesByViewer(t *testing.T) {
	repo := &fakeAnnouncementRepo{items: map[string]*models.Announcement{}}
	svc := NewAnnouncementService(repo, nil, nil, nil)

	rows, pagination, err := svc.List(context.Background(), nil, 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Nil(t, repo.lastFilter.Role)
	assert.Equal(t, 20, pagination.PageSize)

	_, _, err = svc.List(context.Background(), student, 2, 5)
	require.NoError(t, err)
	require.NotNil(t, repo.lastFilter.Role)
	assert.Equal(t, models.RoleStudent, *repo.lastFilter.Role)
	assert.Equal(t, 2, repo.lastFilter.Page)
}

func TestAnnouncementUpdateAndDelete(t *testing.T) {
	repo := &fakeAnnouncementRepo{items: map[string]*models.Announcement{}}
	svc := NewAnnouncementService(repo, nil, nil, nil)
	created, err := svc.Create(context.Background(), ambassador, AnnouncementRequest{Title: "t", Content: "c", Audience: "ALL", Priority: "NORMAL"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), ambassador, created.ID, AnnouncementRequest{Title: "t2", Content: "c2", Audience: "AMBASSADORS", Priority: "LOW"})
	require.NoError(t, err)
	assert.Equal(t, "t2", updated.Title)
	assert.Equal(t, created.PublishedAt, updated.PublishedAt)

	_, err = svc.Update(context.Background(), ambassador, "missing", AnnouncementRequest{Title: "t", Content: "c", Audience: "ALL", Priority: "LOW"})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Delete(context.Background(), ambassador, created.ID))
	err = svc.Delete(context.Background(), ambassador, created.ID)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
