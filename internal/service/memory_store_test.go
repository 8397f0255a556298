package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/repository"
)

// memStore mirrors the transactional behaviour of the SQL repositories so
// that service rules can be exercised end to end.
type memStore struct {
	mu          sync.Mutex
	profiles    map[string]*models.Profile
	days        map[int]*models.ChallengeDay
	submissions map[string]*models.Submission
	audits      []models.AuditLog
	seq         int
}

func newMemStore(totalDays int, deadline time.Time) *memStore {
	s := &memStore{
		profiles:    make(map[string]*models.Profile),
		days:        make(map[int]*models.ChallengeDay),
		submissions: make(map[string]*models.Submission),
	}
	for i := 1; i <= totalDays; i++ {
		s.days[i] = &models.ChallengeDay{
			DayNumber: i,
			Title:     fmt.Sprintf("Day %d", i),
			IsActive:  i == 1,
			Deadline:  deadline.Add(time.Duration(i-1) * 24 * time.Hour),
		}
	}
	return s
}

func (s *memStore) addStudent(id string, registered bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[id] = &models.Profile{ID: id, Email: id + "@example.com", FullName: id, Role: models.RoleStudent, IsRegistered: registered}
}

func (s *memStore) addSubmission(sub models.Submission) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.ID == "" {
		s.seq++
		sub.ID = fmt.Sprintf("sub-%d", s.seq)
	}
	s.submissions[sub.ID] = &sub
	return sub.ID
}

func (s *memStore) points(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiles[userID].TotalPoints
}

func (s *memStore) submission(id string) models.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.submissions[id]
}

func (s *memStore) day(n int) models.ChallengeDay {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.days[n]
}

func (s *memStore) countForDay(day int, missed bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, sub := range s.submissions {
		if sub.DayNumber == day && sub.MissedDeadline == missed {
			count++
		}
	}
	return count
}

func (s *memStore) findByUserDay(userID string, day int) *models.Submission {
	for _, sub := range s.submissions {
		if sub.UserID == userID && sub.DayNumber == day {
			return sub
		}
	}
	return nil
}

// profileFinder

func (s *memStore) FindByID(_ context.Context, id string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

// auditRecorder

func (s *memStore) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits = append(s.audits, *log)
	return nil
}

// submissionRepository

func (s *memStore) GetByID(_ context.Context, id string) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.submissions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *sub
	return &cp, nil
}

func (s *memStore) GetByUserDay(_ context.Context, userID string, day int) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := s.findByUserDay(userID, day)
	if sub == nil {
		return nil, sql.ErrNoRows
	}
	cp := *sub
	return &cp, nil
}

func (s *memStore) ListByUser(_ context.Context, userID string) ([]models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []models.Submission
	for _, sub := range s.submissions {
		if sub.UserID == userID {
			rows = append(rows, *sub)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].DayNumber < rows[j].DayNumber })
	return rows, nil
}

func (s *memStore) Create(_ context.Context, sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findByUserDay(sub.UserID, sub.DayNumber) != nil {
		return repository.ErrDuplicate
	}
	s.seq++
	sub.ID = fmt.Sprintf("sub-%d", s.seq)
	sub.Status = models.SubmissionPending
	cp := *sub
	s.submissions[sub.ID] = &cp
	return nil
}

func (s *memStore) Resubmit(_ context.Context, sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.submissions[sub.ID]
	if !ok || existing.MissedDeadline || existing.Status == models.SubmissionValidated {
		return repository.ErrStale
	}
	existing.Platform = sub.Platform
	existing.PostLink = sub.PostLink
	existing.TextContent = sub.TextContent
	existing.ImageURL = sub.ImageURL
	existing.Status = models.SubmissionPending
	existing.ScoreAwarded = nil
	existing.RejectionComment = nil
	sub.Status = models.SubmissionPending
	return nil
}

func (s *memStore) DeletePending(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.submissions[id]
	if !ok || existing.UserID != userID || existing.Status != models.SubmissionPending {
		return repository.ErrStale
	}
	delete(s.submissions, id)
	return nil
}

// reviewRepository

func (s *memStore) ApplyReview(_ context.Context, params repository.ReviewParams) (*models.ReviewResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.submissions[params.SubmissionID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	current := *row
	outcome, err := params.Decide(current)
	if err != nil {
		return nil, err
	}

	score := outcome.ScoreAwarded
	reviewer := params.ReviewerID
	at := params.ReviewedAt
	row.Status = outcome.Status
	row.ScoreAwarded = &score
	row.RejectionComment = outcome.RejectionComment
	row.ReviewedBy = &reviewer
	row.ReviewedAt = &at

	owner := s.profiles[current.UserID]
	owner.TotalPoints += outcome.PointDelta
	if owner.TotalPoints < 0 {
		owner.TotalPoints = 0
	}
	if outcome.UnlockDay != nil {
		if day, ok := s.days[*outcome.UnlockDay]; ok {
			day.IsActive = true
		}
	}
	return &models.ReviewResult{
		Submission:     *row,
		PreviousStatus: current.Status,
		PointDelta:     outcome.PointDelta,
		TotalPoints:    owner.TotalPoints,
		UnlockedDay:    outcome.UnlockDay,
	}, nil
}

func (s *memStore) List(_ context.Context, filter models.SubmissionFilter) ([]models.SubmissionDetail, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []models.SubmissionDetail
	for _, sub := range s.submissions {
		if filter.Status != nil && sub.Status != *filter.Status {
			continue
		}
		if filter.DayNumber != nil && sub.DayNumber != *filter.DayNumber {
			continue
		}
		if filter.UserID != "" && sub.UserID != filter.UserID {
			continue
		}
		rows = append(rows, models.SubmissionDetail{Submission: *sub})
	}
	return rows, len(rows), nil
}

// memDays exposes the challenge day side of memStore.
type memDays struct {
	store *memStore
	err   error
}

func (d memDays) List(context.Context) ([]models.ChallengeDay, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	days := make([]models.ChallengeDay, 0, len(d.store.days))
	for _, day := range d.store.days {
		days = append(days, *day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].DayNumber < days[j].DayNumber })
	return days, nil
}

func (d memDays) Get(_ context.Context, n int) (*models.ChallengeDay, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	day, ok := d.store.days[n]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *day
	return &cp, nil
}

func (d memDays) ListDue(_ context.Context, now time.Time) ([]models.ChallengeDay, error) {
	d.store.mu.Lock()
	defer d.store.mu.Unlock()
	var due []models.ChallengeDay
	for _, day := range d.store.days {
		if !day.IsExpired && !day.Deadline.After(now) {
			due = append(due, *day)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].DayNumber < due[j].DayNumber })
	return due, nil
}

func (d memDays) ExpireDay(_ context.Context, params repository.ExpireDayParams) (repository.ExpireDayResult, error) {
	if d.err != nil {
		return repository.ExpireDayResult{}, d.err
	}
	s := d.store
	s.mu.Lock()
	defer s.mu.Unlock()

	day := s.days[params.DayNumber]
	if day.IsExpired {
		return repository.ExpireDayResult{Skipped: true}, nil
	}
	var registered, submitted []string
	for id, p := range s.profiles {
		if p.Role == models.RoleStudent && p.IsRegistered {
			registered = append(registered, id)
		}
	}
	sort.Strings(registered)
	for _, sub := range s.submissions {
		if sub.DayNumber == params.DayNumber {
			submitted = append(submitted, sub.UserID)
		}
	}

	created := 0
	for _, userID := range params.Missing(registered, submitted) {
		if s.findByUserDay(userID, params.DayNumber) != nil {
			continue
		}
		s.seq++
		zero := 0
		feedback := params.Feedback
		id := fmt.Sprintf("sub-%d", s.seq)
		s.submissions[id] = &models.Submission{
			ID:               id,
			UserID:           userID,
			DayNumber:        params.DayNumber,
			Platform:         models.MissedDeadlinePlatform,
			Status:           models.SubmissionRejected,
			ScoreAwarded:     &zero,
			RejectionComment: &feedback,
			MissedDeadline:   true,
			CreatedAt:        params.Now,
		}
		created++
	}
	day.IsExpired = true
	if params.DayNumber < params.TotalDays {
		s.days[params.DayNumber+1].IsActive = true
	}
	return repository.ExpireDayResult{Created: created}, nil
}
