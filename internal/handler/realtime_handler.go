package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/OB-39/Marathon-Chalenge-sub000/pkg/errors"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/response"
)

type socketServer interface {
	Serve(w http.ResponseWriter, r *http.Request, userID string) error
}

// RealtimeHandler upgrades authenticated clients to the change feed.
type RealtimeHandler struct {
	hub    socketServer
	logger *zap.Logger
}

// NewRealtimeHandler constructs the handler.
func NewRealtimeHandler(hub socketServer, logger *zap.Logger) *RealtimeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RealtimeHandler{hub: hub, logger: logger}
}

// Connect godoc
// @Summary Realtime change feed
// @Description WebSocket emitting {type, data} events. Pass the access token as ?token=
// @Tags Realtime
// @Param token query string true "Access token"
// @Success 101
// @Failure 401 {object} response.Envelope
// @Router /ws [get]
func (h *RealtimeHandler) Connect(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	if h.hub == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "realtime is not available"))
		return
	}
	// The upgrader writes its own error response on failure.
	if err := h.hub.Serve(c.Writer, c.Request, claims.UserID); err != nil {
		h.logger.Debug("websocket upgrade failed", zap.String("user_id", claims.UserID), zap.Error(err))
	}
}
