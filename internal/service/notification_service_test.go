package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/dto"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/jobs"
)

type publishedEvent struct {
	UserID string
	Type   string
	Data   interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) PublishTo(userID, eventType string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{UserID: userID, Type: eventType, Data: data})
}

func (p *recordingPublisher) Broadcast(eventType string, data interface{}) {
	p.PublishTo("", eventType, data)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type capturingQueue struct {
	jobs []jobs.Job
	err  error
}

func (q *capturingQueue) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type fakeNotificationStore struct {
	messages []models.Message
	err      error
}

func (f *fakeNotificationStore) CreateMessage(_ context.Context, msg *models.Message) error {
	if f.err != nil {
		return f.err
	}
	msg.ID = "msg-1"
	f.messages = append(f.messages, *msg)
	return nil
}

type fakeStudentLister struct {
	ids []string
}

func (f fakeStudentLister) ListStudentIDs(context.Context) ([]string, error) {
	return f.ids, nil
}

func TestNotificationReviewedStoresMessageAndPushes(t *testing.T) {
	publisher := &recordingPublisher{}
	store := &fakeNotificationStore{}
	svc := NewNotificationService(publisher, store, nil, nil)
	queue := &capturingQueue{}
	svc.SetQueue(queue)
	mux := jobs.NewMux()
	svc.Register(mux)

	comment := "post is not public"
	svc.SubmissionReviewed(&models.ReviewResult{
		Submission: models.Submission{ID: "s1", UserID: "stu-1", DayNumber: 2, Status: models.SubmissionRejected, ScoreAwarded: intPtr(0), RejectionComment: &comment},
		PointDelta: -8,
	}, "amb-1")
	require.Len(t, queue.jobs, 1)
	require.NoError(t, mux.Process(context.Background(), queue.jobs[0]))

	require.Len(t, store.messages, 1)
	msg := store.messages[0]
	assert.Equal(t, "stu-1", msg.RecipientID)
	assert.Equal(t, "amb-1", msg.SenderID)
	assert.Equal(t, "Day 2 rejected", msg.Subject)
	assert.Contains(t, msg.Body, comment)
	assert.Contains(t, msg.Body, "resubmit")

	assert.Equal(t, []string{EventMessageCreated, EventSubmissionReviewed, EventLeaderboardUpdated}, publisher.types())
}

func TestNotificationReviewedRetriesWhenStoreFails(t *testing.T) {
	publisher := &recordingPublisher{}
	svc := NewNotificationService(publisher, &fakeNotificationStore{err: errors.New("db down")}, nil, nil)
	mux := jobs.NewMux()
	svc.Register(mux)

	err := mux.Process(context.Background(), jobs.Job{Type: JobSubmissionReviewed, Payload: reviewedPayload{
		Result: models.ReviewResult{Submission: models.Submission{UserID: "stu-1", DayNumber: 1, Status: models.SubmissionValidated, ScoreAwarded: intPtr(9)}},
	}})
	require.Error(t, err)
	assert.Empty(t, publisher.types())
}

func TestNotificationBroadcastFansOut(t *testing.T) {
	publisher := &recordingPublisher{}
	svc := NewNotificationService(publisher, nil, fakeStudentLister{ids: []string{"a", "b", "c"}}, nil)
	mux := jobs.NewMux()
	svc.Register(mux)

	require.NoError(t, mux.Process(context.Background(), jobs.Job{Type: JobBroadcastCreated, Payload: models.Broadcast{ID: "b1", Subject: "Day 5 is live"}}))
	require.Len(t, publisher.events, 3)
	assert.Equal(t, "c", publisher.events[2].UserID)
	assert.Equal(t, EventBroadcastCreated, publisher.events[0].Type)
}

func TestNotificationMessageAndDeadlineEvents(t *testing.T) {
	publisher := &recordingPublisher{}
	svc := NewNotificationService(publisher, nil, nil, nil)
	mux := jobs.NewMux()
	svc.Register(mux)

	require.NoError(t, mux.Process(context.Background(), jobs.Job{Type: JobMessageCreated, Payload: models.Message{RecipientID: "stu-9"}}))
	require.NoError(t, mux.Process(context.Background(), jobs.Job{Type: JobDeadlineProcessed, Payload: dto.DeadlineRunReport{ProcessedDays: 1}}))
	assert.Equal(t, []string{EventMessageCreated, EventDaysUpdated}, publisher.types())
	assert.Equal(t, "stu-9", publisher.events[0].UserID)

	assert.Error(t, mux.Process(context.Background(), jobs.Job{Type: JobMessageCreated, Payload: "oops"}))
}

func TestNotificationEnqueueFailureIsSwallowed(t *testing.T) {
	svc := NewNotificationService(nil, nil, nil, nil)
	svc.MessageCreated(&models.Message{})
	svc.SetQueue(&capturingQueue{err: errors.New("queue full")})
	svc.BroadcastCreated(&models.Broadcast{})
	svc.DeadlineProcessed(nil)
}

func TestReviewMessageForValidation(t *testing.T) {
	msg := reviewMessage(models.ReviewResult{Submission: models.Submission{UserID: "u", DayNumber: 6, Status: models.SubmissionValidated, ScoreAwarded: intPtr(17)}}, "amb")
	assert.Equal(t, "Day 6 validated", msg.Subject)
	assert.Contains(t, msg.Body, "17/20")
}
