package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/dto"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/service"
	appErrors "github.com/OB-39/Marathon-Chalenge-sub000/pkg/errors"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/response"
)

type submissionService interface {
	Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateSubmissionRequest) (*models.Submission, bool, error)
	Delete(ctx context.Context, actor *models.JWTClaims, submissionID string) error
	Get(ctx context.Context, actor *models.JWTClaims, submissionID string) (*models.Submission, error)
	ListMine(ctx context.Context, userID string) ([]models.Submission, error)
	Progress(ctx context.Context, userID string) (*dto.ProgressResponse, error)
	UploadProof(ctx context.Context, userID string, upload service.Upload) (*dto.ProofUploadResponse, error)
}

// SubmissionHandler exposes participant self-service endpoints.
type SubmissionHandler struct {
	service submissionService
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(svc submissionService) *SubmissionHandler {
	return &SubmissionHandler{service: svc}
}

// Create godoc
// @Summary Submit or resubmit a day
// @Description Creates a pending submission, or rewrites a pending or rejected one in place
// @Tags Submissions
// @Accept json
// @Produce json
// @Param payload body dto.CreateSubmissionRequest true "Submission"
// @Success 201 {object} response.Envelope
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /submissions [post]
func (h *SubmissionHandler) Create(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submission payload"))
		return
	}
	submission, created, err := h.service.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if created {
		response.Created(c, submission)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}

// ListMine godoc
// @Summary List own submissions
// @Tags Submissions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /submissions/me [get]
func (h *SubmissionHandler) ListMine(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	submissions, err := h.service.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submissions, nil)
}

// Progress godoc
// @Summary Per-day progress
// @Description Window, unlock and submit state for every day
// @Tags Submissions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /submissions/progress [get]
func (h *SubmissionHandler) Progress(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	progress, err := h.service.Progress(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress, nil)
}

// Get godoc
// @Summary Get submission
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	submission, err := h.service.Get(c.Request.Context(), claimsFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}

// Delete godoc
// @Summary Withdraw a pending submission
// @Tags Submissions
// @Param id path string true "Submission ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /submissions/{id} [delete]
func (h *SubmissionHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), claimsFromContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UploadProof godoc
// @Summary Upload a proof screenshot
// @Tags Submissions
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /submissions/proofs [post]
func (h *SubmissionHandler) UploadProof(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	upload, closer, ok := formUpload(c, "file")
	if !ok {
		return
	}
	defer closer.Close()

	res, err := h.service.UploadProof(c.Request.Context(), claims.UserID, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}
