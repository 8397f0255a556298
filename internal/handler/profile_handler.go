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

type profileService interface {
	Get(ctx context.Context, id string) (*models.Profile, error)
	List(ctx context.Context, actor *models.JWTClaims, query dto.ProfileQuery) ([]models.Profile, *models.Pagination, error)
	CompleteProfile(ctx context.Context, userID string, req dto.CompleteProfileRequest) (*models.Profile, error)
	UploadAvatar(ctx context.Context, userID string, upload service.Upload) (*models.Profile, error)
	SetRole(ctx context.Context, actor *models.JWTClaims, userID string, req dto.UpdateRoleRequest) (*models.Profile, error)
}

// ProfileHandler exposes onboarding and profile management.
type ProfileHandler struct {
	service profileService
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(svc profileService) *ProfileHandler {
	return &ProfileHandler{service: svc}
}

// List godoc
// @Summary List profiles
// @Tags Profiles
// @Produce json
// @Param role query string false "student or ambassador"
// @Param is_registered query bool false "Only enrolled participants"
// @Param search query string false "Name or email"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /profiles [get]
func (h *ProfileHandler) List(c *gin.Context) {
	var query dto.ProfileQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	profiles, pagination, err := h.service.List(c.Request.Context(), claimsFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profiles, pagination)
}

// Get godoc
// @Summary Get profile
// @Tags Profiles
// @Produce json
// @Param id path string true "Profile ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profiles/{id} [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	profile, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Complete godoc
// @Summary Complete onboarding
// @Description Saves profile details and enrols the caller in the challenge
// @Tags Profiles
// @Accept json
// @Produce json
// @Param payload body dto.CompleteProfileRequest true "Profile details"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /profiles/me [put]
func (h *ProfileHandler) Complete(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.CompleteProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}
	profile, err := h.service.CompleteProfile(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// UploadAvatar godoc
// @Summary Upload avatar
// @Tags Profiles
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /profiles/me/avatar [post]
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	upload, closer, ok := formUpload(c, "file")
	if !ok {
		return
	}
	defer closer.Close()

	profile, err := h.service.UploadAvatar(c.Request.Context(), claims.UserID, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// SetRole godoc
// @Summary Change a profile's role
// @Tags Profiles
// @Accept json
// @Produce json
// @Param id path string true "Profile ID"
// @Param payload body dto.UpdateRoleRequest true "Role"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /profiles/{id}/role [patch]
func (h *ProfileHandler) SetRole(c *gin.Context) {
	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid role payload"))
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	profile, err := h.service.SetRole(c.Request.Context(), claimsFromContext(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}
