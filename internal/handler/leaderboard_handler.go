package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/middleware"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/service"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/response"
)

type leaderboardService interface {
	List(ctx context.Context, page, pageSize int) ([]models.LeaderboardEntry, *models.Pagination, bool, error)
	Rank(ctx context.Context, userID string) (*models.ParticipantRank, error)
}

type leaderboardExporter interface {
	Leaderboard(ctx context.Context, actor *models.JWTClaims, rawFormat string) (*service.ExportFile, error)
}

// LeaderboardHandler serves standings and exports.
type LeaderboardHandler struct {
	service  leaderboardService
	exporter leaderboardExporter
}

// NewLeaderboardHandler constructs the handler.
func NewLeaderboardHandler(svc leaderboardService, exporter leaderboardExporter) *LeaderboardHandler {
	return &LeaderboardHandler{service: svc, exporter: exporter}
}

// List godoc
// @Summary Leaderboard
// @Description Registered participants by points with dense ranking
// @Tags Leaderboard
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /leaderboard [get]
func (h *LeaderboardHandler) List(c *gin.Context) {
	entries, pagination, hit, err := h.service.List(c.Request.Context(), parseQueryInt(c, "page", 1), parseQueryInt(c, "page_size", 20))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, entries, pagination, middleware.ExtractMeta(c))
}

// Me godoc
// @Summary Own standing
// @Tags Leaderboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /leaderboard/me [get]
func (h *LeaderboardHandler) Me(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	h.rank(c, claims.UserID)
}

// Rank godoc
// @Summary Participant standing
// @Tags Leaderboard
// @Produce json
// @Param userId path string true "Participant ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /leaderboard/{userId} [get]
func (h *LeaderboardHandler) Rank(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}
	h.rank(c, userID)
}

func (h *LeaderboardHandler) rank(c *gin.Context, userID string) {
	rank, err := h.service.Rank(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rank, nil)
}

// Export godoc
// @Summary Export leaderboard
// @Tags Leaderboard
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /leaderboard/export [get]
func (h *LeaderboardHandler) Export(c *gin.Context) {
	file, err := h.exporter.Leaderboard(c.Request.Context(), claimsFromContext(c), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.ContentType, file.Filename, file.Data)
}
