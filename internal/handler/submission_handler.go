package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelier-nord/intake-api/internal/dto"
	appErrors "github.com/atelier-nord/intake-api/pkg/errors"
	"github.com/atelier-nord/intake-api/pkg/response"
)

type submissionFlowService interface {
	Submit(ctx context.Context, sessionID, email string) (*dto.SubmissionView, error)
}

// SubmissionHandler exposes the finalization endpoint.
type SubmissionHandler struct {
	service submissionFlowService
}

// NewSubmissionHandler builds a new handler.
func NewSubmissionHandler(service submissionFlowService) *SubmissionHandler {
	return &SubmissionHandler{service: service}
}

// Submit godoc
// @Summary Finalize a completed session
// @Description Persists uploads, writes the JSON export, sends the notification email, then marks the session submitted. Safe to repeat.
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.SubmitRequest true "Submission payload"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/submit [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req dto.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submission payload"))
		return
	}
	view, err := h.service.Submit(c.Request.Context(), c.Param("id"), req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}
