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

type challengeDayService interface {
	List(ctx context.Context) ([]models.ChallengeDay, error)
	Get(ctx context.Context, dayNumber int) (*models.ChallengeDay, error)
	Update(ctx context.Context, actor *models.JWTClaims, dayNumber int, req dto.UpdateChallengeDayRequest) (*models.ChallengeDay, error)
}

// ChallengeDayHandler serves the challenge calendar.
type ChallengeDayHandler struct {
	service challengeDayService
}

// NewChallengeDayHandler constructs the handler.
func NewChallengeDayHandler(svc challengeDayService) *ChallengeDayHandler {
	return &ChallengeDayHandler{service: svc}
}

// List godoc
// @Summary List challenge days
// @Tags Challenge Days
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /days [get]
func (h *ChallengeDayHandler) List(c *gin.Context) {
	days, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, days, nil)
}

// Get godoc
// @Summary Get challenge day
// @Tags Challenge Days
// @Produce json
// @Param day path int true "Day number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /days/{day} [get]
func (h *ChallengeDayHandler) Get(c *gin.Context) {
	dayNumber, ok := dayParam(c)
	if !ok {
		return
	}
	day, err := h.service.Get(c.Request.Context(), dayNumber)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, day, nil)
}

// Update godoc
// @Summary Update challenge day
// @Description Expired days stay expired
// @Tags Challenge Days
// @Accept json
// @Produce json
// @Param day path int true "Day number"
// @Param payload body dto.UpdateChallengeDayRequest true "Changes"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /days/{day} [patch]
func (h *ChallengeDayHandler) Update(c *gin.Context) {
	dayNumber, ok := dayParam(c)
	if !ok {
		return
	}
	var req dto.UpdateChallengeDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid day payload"))
		return
	}
	day, err := h.service.Update(c.Request.Context(), claimsFromContext(c), dayNumber, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, day, nil)
}
