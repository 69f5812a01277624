package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelier-nord/intake-api/internal/dto"
	"github.com/atelier-nord/intake-api/internal/models"
	appErrors "github.com/atelier-nord/intake-api/pkg/errors"
	"github.com/atelier-nord/intake-api/pkg/response"
)

type sessionFlowService interface {
	Start() (*dto.SessionView, error)
	Get(sessionID string) (*dto.SessionView, error)
	RecordAnswer(sessionID string, req dto.AnswerRequest) (*dto.SessionView, error)
	RecordFiles(sessionID, questionID string, files []models.FileUpload) (*dto.SessionView, error)
	Advance(sessionID string) (*dto.SessionView, error)
	GoBack(sessionID string) (*dto.SessionView, error)
	Answer(sessionID, questionID string) (*dto.AnswerView, error)
}

// SessionHandler exposes the questionnaire flow endpoints.
type SessionHandler struct {
	service       sessionFlowService
	maxUploadSize int64
}

// NewSessionHandler builds a new handler. maxUploadSize bounds a single
// multipart request body; zero disables the bound.
func NewSessionHandler(service sessionFlowService, maxUploadSize int64) *SessionHandler {
	return &SessionHandler{service: service, maxUploadSize: maxUploadSize}
}

// Start godoc
// @Summary Start a new questionnaire session
// @Tags Sessions
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Start(c *gin.Context) {
	view, err := h.service.Start()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// Get godoc
// @Summary Get session state and current question
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// RecordAnswer godoc
// @Summary Record an answer for a question
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.AnswerRequest true "Answer payload"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/answers [post]
func (h *SessionHandler) RecordAnswer(c *gin.Context) {
	var req dto.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid answer payload"))
		return
	}
	view, err := h.service.RecordAnswer(c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// UploadFiles godoc
// @Summary Upload files answering a file question
// @Tags Sessions
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Session ID"
// @Param questionId path string true "Question ID"
// @Param files formData file true "Files"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/files/{questionId} [post]
func (h *SessionHandler) UploadFiles(c *gin.Context) {
	if h.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)
	}
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid multipart payload"))
		return
	}
	uploads := make([]models.FileUpload, 0, len(form.File["files"]))
	for _, header := range form.File["files"] {
		file, err := header.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable upload"))
			return
		}
		content, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable upload"))
			return
		}
		uploads = append(uploads, models.FileUpload{
			Filename:  header.Filename,
			MimeType:  header.Header.Get("Content-Type"),
			SizeBytes: header.Size,
			Content:   content,
		})
	}
	view, err := h.service.RecordFiles(c.Param("id"), c.Param("questionId"), uploads)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// Advance godoc
// @Summary Advance to the next question
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/advance [post]
func (h *SessionHandler) Advance(c *gin.Context) {
	view, err := h.service.Advance(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// GoBack godoc
// @Summary Return to the previous question
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/back [post]
func (h *SessionHandler) GoBack(c *gin.Context) {
	view, err := h.service.GoBack(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}

// GetAnswer godoc
// @Summary Get the stored answer for a question
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Param questionId path string true "Question ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/answers/{questionId} [get]
func (h *SessionHandler) GetAnswer(c *gin.Context) {
	view, err := h.service.Answer(c.Param("id"), c.Param("questionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view)
}
