package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/dto"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
	appErrors "github.com/OB-39/Marathon-Chalenge-sub000/pkg/errors"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/response"
)

type messageService interface {
	Send(ctx context.Context, actor *models.JWTClaims, req dto.SendMessageRequest) (*models.Message, error)
	Broadcast(ctx context.Context, actor *models.JWTClaims, req dto.BroadcastRequest) (*models.Broadcast, error)
	Inbox(ctx context.Context, userID string, limit int) ([]models.InboxItem, error)
	MarkRead(ctx context.Context, userID, messageID string) error
	MarkBroadcastRead(ctx context.Context, userID, broadcastID string) error
	UnreadCount(ctx context.Context, userID string) (*models.UnreadCount, error)
}

// MessageHandler exposes ambassador messaging and participant inboxes.
type MessageHandler struct {
	service messageService
}

// NewMessageHandler constructs the handler.
func NewMessageHandler(svc messageService) *MessageHandler {
	return &MessageHandler{service: svc}
}

// Send godoc
// @Summary Message one participant
// @Tags Messages
// @Accept json
// @Produce json
// @Param payload body dto.SendMessageRequest true "Message"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid message payload"))
		return
	}
	msg, err := h.service.Send(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, msg)
}

// Broadcast godoc
// @Summary Message every participant
// @Tags Messages
// @Accept json
// @Produce json
// @Param payload body dto.BroadcastRequest true "Broadcast"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /broadcasts [post]
func (h *MessageHandler) Broadcast(c *gin.Context) {
	var req dto.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid broadcast payload"))
		return
	}
	broadcast, err := h.service.Broadcast(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, broadcast)
}

// Inbox godoc
// @Summary Inbox
// @Description Direct messages and broadcasts, newest first
// @Tags Messages
// @Produce json
// @Param limit query int false "Maximum items"
// @Success 200 {object} response.Envelope
// @Router /messages/inbox [get]
func (h *MessageHandler) Inbox(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	items, err := h.service.Inbox(c.Request.Context(), claims.UserID, parseQueryInt(c, "limit", 50))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// UnreadCount godoc
// @Summary Unread counters
// @Tags Messages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /messages/unread-count [get]
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	count, err := h.service.UnreadCount(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, count, nil)
}

// MarkRead godoc
// @Summary Mark a message read
// @Tags Messages
// @Param id path string true "Message ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /messages/{id}/read [post]
func (h *MessageHandler) MarkRead(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), claims.UserID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// MarkBroadcastRead godoc
// @Summary Mark a broadcast read
// @Tags Messages
// @Param id path string true "Broadcast ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /broadcasts/{id}/read [post]
func (h *MessageHandler) MarkBroadcastRead(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.MarkBroadcastRead(c.Request.Context(), claims.UserID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
