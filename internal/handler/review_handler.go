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

type reviewService interface {
	Validate(ctx context.Context, actor *models.JWTClaims, submissionID string, req dto.ValidateSubmissionRequest) (*models.ReviewResult, error)
	Reject(ctx context.Context, actor *models.JWTClaims, submissionID string, req dto.RejectSubmissionRequest) (*models.ReviewResult, error)
	List(ctx context.Context, actor *models.JWTClaims, query dto.SubmissionQuery) ([]models.SubmissionDetail, *models.Pagination, error)
}

// ReviewHandler exposes the ambassador review queue.
type ReviewHandler struct {
	service reviewService
}

// NewReviewHandler constructs the handler.
func NewReviewHandler(svc reviewService) *ReviewHandler {
	return &ReviewHandler{service: svc}
}

// Queue godoc
// @Summary List submissions for review
// @Tags Reviews
// @Produce json
// @Param status query string false "pending, validated or rejected"
// @Param day_number query int false "Day"
// @Param platform query string false "linkedin, facebook or instagram"
// @Param user_id query string false "Participant"
// @Param missed query bool false "Only synthetic missed-deadline rows"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /reviews/submissions [get]
func (h *ReviewHandler) Queue(c *gin.Context) {
	var query dto.SubmissionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	rows, pagination, err := h.service.List(c.Request.Context(), claimsFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, pagination)
}

// Validate godoc
// @Summary Validate a submission
// @Description Awards a score and applies the point difference to the participant
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body dto.ValidateSubmissionRequest true "Score"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reviews/submissions/{id}/validate [post]
func (h *ReviewHandler) Validate(c *gin.Context) {
	var req dto.ValidateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	result, err := h.service.Validate(c.Request.Context(), claimsFromContext(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Reject godoc
// @Summary Reject a submission
// @Description Zeroes the score and removes any points it contributed
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body dto.RejectSubmissionRequest false "Comment"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reviews/submissions/{id}/reject [post]
func (h *ReviewHandler) Reject(c *gin.Context) {
	var req dto.RejectSubmissionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
			return
		}
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	result, err := h.service.Reject(c.Request.Context(), claimsFromContext(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
