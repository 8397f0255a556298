package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/dto"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
	appErrors "github.com/OB-39/Marathon-Chalenge-sub000/pkg/errors"
)

type messageRepository interface {
	CreateMessage(ctx context.Context, msg *models.Message) error
	CreateBroadcast(ctx context.Context, broadcast *models.Broadcast) error
	Inbox(ctx context.Context, userID string, limit int) ([]models.InboxItem, error)
	MarkRead(ctx context.Context, id, recipientID string, at time.Time) (bool, error)
	MarkBroadcastRead(ctx context.Context, broadcastID, userID string, at time.Time) (bool, error)
	UnreadCount(ctx context.Context, userID string) (*models.UnreadCount, error)
}

type messageNotifier interface {
	MessageCreated(msg *models.Message)
	BroadcastCreated(broadcast *models.Broadcast)
}

// MessageService lets ambassadors reach participants.
type MessageService struct {
	repo      messageRepository
	profiles  profileFinder
	notifier  messageNotifier
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewMessageService constructs the messaging service.
func NewMessageService(repo messageRepository, profiles profileFinder, notifier messageNotifier, validate *validator.Validate, logger *zap.Logger) *MessageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &MessageService{
		repo:      repo,
		profiles:  profiles,
		notifier:  notifier,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Send delivers a message to one participant.
func (s *MessageService) Send(ctx context.Context, actor *models.JWTClaims, req dto.SendMessageRequest) (*models.Message, error) {
	if err := requireAmbassador(actor); err != nil {
		return nil, err
	}
	req.RecipientID = strings.ToLower(strings.TrimSpace(req.RecipientID))
	req.Subject = strings.TrimSpace(req.Subject)
	req.Body = strings.TrimSpace(req.Body)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid message payload")
	}
	if _, err := s.profiles.FindByID(ctx, req.RecipientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "recipient not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recipient")
	}

	msg := &models.Message{
		SenderID:    actor.UserID,
		RecipientID: req.RecipientID,
		Subject:     req.Subject,
		Body:        req.Body,
		CreatedAt:   s.now(),
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to send message")
	}
	if s.notifier != nil {
		s.notifier.MessageCreated(msg)
	}
	return msg, nil
}

// Broadcast publishes a message to every participant.
func (s *MessageService) Broadcast(ctx context.Context, actor *models.JWTClaims, req dto.BroadcastRequest) (*models.Broadcast, error) {
	if err := requireAmbassador(actor); err != nil {
		return nil, err
	}
	req.Subject = strings.TrimSpace(req.Subject)
	req.Body = strings.TrimSpace(req.Body)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid broadcast payload")
	}

	broadcast := &models.Broadcast{
		SenderID:  actor.UserID,
		Subject:   req.Subject,
		Body:      req.Body,
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateBroadcast(ctx, broadcast); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create broadcast")
	}
	s.logger.Info("broadcast created", zap.String("broadcast_id", broadcast.ID), zap.String("sender_id", actor.UserID))
	if s.notifier != nil {
		s.notifier.BroadcastCreated(broadcast)
	}
	return broadcast, nil
}

// Inbox lists the caller's messages and broadcasts, newest first.
func (s *MessageService) Inbox(ctx context.Context, userID string, limit int) ([]models.InboxItem, error) {
	items, err := s.repo.Inbox(ctx, userID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load inbox")
	}
	if items == nil {
		items = []models.InboxItem{}
	}
	return items, nil
}

// MarkRead flags one of the caller's messages as read.
func (s *MessageService) MarkRead(ctx context.Context, userID, messageID string) error {
	found, err := s.repo.MarkRead(ctx, messageID, userID, s.now())
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark message read")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "message not found")
	}
	return nil
}

// MarkBroadcastRead records that the caller has read a broadcast.
func (s *MessageService) MarkBroadcastRead(ctx context.Context, userID, broadcastID string) error {
	found, err := s.repo.MarkBroadcastRead(ctx, broadcastID, userID, s.now())
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark broadcast read")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "broadcast not found")
	}
	return nil
}

// UnreadCount returns the caller's unread totals.
func (s *MessageService) UnreadCount(ctx context.Context, userID string) (*models.UnreadCount, error) {
	count, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unread messages")
	}
	return count, nil
}
