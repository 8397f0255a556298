package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/dto"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/response"
)

type deadlineRunner interface {
	Run(ctx context.Context) (*dto.DeadlineRunReport, error)
}

// DeadlineHandler lets an external scheduler or an ambassador trigger the expiry batch.
type DeadlineHandler struct {
	runner deadlineRunner
}

// NewDeadlineHandler constructs the handler.
func NewDeadlineHandler(runner deadlineRunner) *DeadlineHandler {
	return &DeadlineHandler{runner: runner}
}

// Run godoc
// @Summary Process passed deadlines
// @Description Creates missed-deadline rows, expires due days and opens the next one
// @Tags Jobs
// @Produce json
// @Param X-Cron-Secret header string false "Scheduler secret"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /jobs/deadlines/run [post]
func (h *DeadlineHandler) Run(c *gin.Context) {
	report, err := h.runner.Run(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
