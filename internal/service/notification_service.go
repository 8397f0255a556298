package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/dto"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/jobs"
)

// Job types handled by the notification queue.
const (
	JobSubmissionReviewed = "submission.reviewed"
	JobMessageCreated     = "message.created"
	JobBroadcastCreated   = "broadcast.created"
	JobDeadlineProcessed  = "deadline.processed"
)

// Realtime event types pushed to clients.
const (
	EventSubmissionReviewed = "submission.reviewed"
	EventLeaderboardUpdated = "leaderboard.updated"
	EventMessageCreated     = "message.created"
	EventBroadcastCreated   = "broadcast.created"
	EventDaysUpdated        = "days.updated"
)

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type eventPublisher interface {
	PublishTo(userID, eventType string, data interface{})
	Broadcast(eventType string, data interface{})
}

type notificationStore interface {
	CreateMessage(ctx context.Context, msg *models.Message) error
}

type studentLister interface {
	ListStudentIDs(ctx context.Context) ([]string, error)
}

type reviewedPayload struct {
	Result     models.ReviewResult
	ReviewerID string
}

// NotificationService moves best-effort side effects onto the job queue.
// Enqueue failures are logged and never reach the caller.
type NotificationService struct {
	queue     jobEnqueuer
	publisher eventPublisher
	messages  notificationStore
	students  studentLister
	logger    *zap.Logger
}

// NewNotificationService constructs the service. Call Register to attach its
// handlers to the queue's mux and SetQueue once the queue exists.
func NewNotificationService(publisher eventPublisher, messages notificationStore, students studentLister, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{publisher: publisher, messages: messages, students: students, logger: logger}
}

// SetQueue attaches the queue jobs are sent to.
func (s *NotificationService) SetQueue(queue jobEnqueuer) {
	s.queue = queue
}

// Register binds the job handlers.
func (s *NotificationService) Register(mux *jobs.Mux) {
	mux.Handle(JobSubmissionReviewed, s.handleSubmissionReviewed)
	mux.Handle(JobMessageCreated, s.handleMessageCreated)
	mux.Handle(JobBroadcastCreated, s.handleBroadcastCreated)
	mux.Handle(JobDeadlineProcessed, s.handleDeadlineProcessed)
}

// SubmissionReviewed schedules the owner notification for a committed review.
func (s *NotificationService) SubmissionReviewed(result *models.ReviewResult, reviewerID string) {
	if result == nil {
		return
	}
	s.enqueue(JobSubmissionReviewed, reviewedPayload{Result: *result, ReviewerID: reviewerID})
}

// MessageCreated schedules the realtime push for a targeted message.
func (s *NotificationService) MessageCreated(msg *models.Message) {
	if msg == nil {
		return
	}
	s.enqueue(JobMessageCreated, *msg)
}

// BroadcastCreated schedules the fan-out of a broadcast to every participant.
func (s *NotificationService) BroadcastCreated(broadcast *models.Broadcast) {
	if broadcast == nil {
		return
	}
	s.enqueue(JobBroadcastCreated, *broadcast)
}

// DeadlineProcessed schedules the calendar refresh event.
func (s *NotificationService) DeadlineProcessed(report *dto.DeadlineRunReport) {
	if report == nil {
		return
	}
	s.enqueue(JobDeadlineProcessed, *report)
}

func (s *NotificationService) enqueue(jobType string, payload interface{}) {
	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(jobs.Job{Type: jobType, Payload: payload}); err != nil {
		s.logger.Warn("failed to enqueue notification", zap.String("type", jobType), zap.Error(err))
	}
}

func (s *NotificationService) handleSubmissionReviewed(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(reviewedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", job.Payload, job.Type)
	}
	result := payload.Result
	owner := result.Submission.UserID

	// CreateMessage is the only step that can fail, so a retry never duplicates the message.
	msg := reviewMessage(result, payload.ReviewerID)
	if s.messages != nil {
		if err := s.messages.CreateMessage(ctx, msg); err != nil {
			return fmt.Errorf("store review notification: %w", err)
		}
	}
	s.publish(owner, EventMessageCreated, msg)

	s.publish(owner, EventSubmissionReviewed, result)
	if result.PointDelta != 0 && s.publisher != nil {
		s.publisher.Broadcast(EventLeaderboardUpdated, map[string]interface{}{
			"user_id":      owner,
			"total_points": result.TotalPoints,
		})
	}
	return nil
}

func (s *NotificationService) handleMessageCreated(_ context.Context, job jobs.Job) error {
	msg, ok := job.Payload.(models.Message)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", job.Payload, job.Type)
	}
	s.publish(msg.RecipientID, EventMessageCreated, msg)
	return nil
}

func (s *NotificationService) handleBroadcastCreated(ctx context.Context, job jobs.Job) error {
	broadcast, ok := job.Payload.(models.Broadcast)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", job.Payload, job.Type)
	}
	if s.students == nil {
		return nil
	}
	ids, err := s.students.ListStudentIDs(ctx)
	if err != nil {
		return fmt.Errorf("list broadcast recipients: %w", err)
	}
	for _, id := range ids {
		s.publish(id, EventBroadcastCreated, broadcast)
	}
	return nil
}

func (s *NotificationService) handleDeadlineProcessed(_ context.Context, job jobs.Job) error {
	report, ok := job.Payload.(dto.DeadlineRunReport)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", job.Payload, job.Type)
	}
	if s.publisher != nil {
		s.publisher.Broadcast(EventDaysUpdated, report)
	}
	return nil
}

func (s *NotificationService) publish(userID, eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishTo(userID, eventType, data)
}

func reviewMessage(result models.ReviewResult, reviewerID string) *models.Message {
	sub := result.Submission
	msg := &models.Message{SenderID: reviewerID, RecipientID: sub.UserID}
	switch sub.Status {
	case models.SubmissionValidated:
		score := 0
		if sub.ScoreAwarded != nil {
			score = *sub.ScoreAwarded
		}
		msg.Subject = fmt.Sprintf("Day %d validated", sub.DayNumber)
		msg.Body = fmt.Sprintf("Your day %d submission was validated with %d/%d points.", sub.DayNumber, score, models.MaxScore(sub.DayNumber))
	default:
		msg.Subject = fmt.Sprintf("Day %d rejected", sub.DayNumber)
		msg.Body = fmt.Sprintf("Your day %d submission was rejected.", sub.DayNumber)
		if sub.RejectionComment != nil {
			msg.Body += " Reviewer comment: " + *sub.RejectionComment
		}
		if !sub.MissedDeadline {
			msg.Body += " You can resubmit before the deadline."
		}
	}
	return msg
}
