package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/dto"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/middleware"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
	appErrors "github.com/OB-39/Marathon-Chalenge-sub000/pkg/errors"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/response"
)

type dashboardService interface {
	Reviewer(ctx context.Context, actor *models.JWTClaims) (*dto.ReviewerDashboard, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Reviewer godoc
// @Summary Reviewer dashboard
// @Description Submission counts by status and day, top participants, live system metrics
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Reviewer(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	summary, cacheHit, err := h.service.Reviewer(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}
