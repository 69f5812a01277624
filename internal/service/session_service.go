package service

import (
	"go.uber.org/zap"

	"github.com/atelier-nord/intake-api/internal/catalog"
	"github.com/atelier-nord/intake-api/internal/dto"
	"github.com/atelier-nord/intake-api/internal/models"
	"github.com/atelier-nord/intake-api/internal/session"
	appErrors "github.com/atelier-nord/intake-api/pkg/errors"
)

type sessionMetrics interface {
	RecordSessionStarted()
	RecordSessionCompleted()
	RecordValidationFailure(kind string)
}

// SessionService orchestrates the single-question flow: it owns the
// registry of live sessions and translates them into API views.
type SessionService struct {
	registry *session.Registry
	catalog  *catalog.Catalog
	metrics  sessionMetrics
	logger   *zap.Logger
}

// NewSessionService constructs a SessionService.
func NewSessionService(registry *session.Registry, cat *catalog.Catalog, metrics sessionMetrics, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		registry: registry,
		catalog:  cat,
		metrics:  metrics,
		logger:   logger,
	}
}

// Start creates a fresh session positioned at the first question.
func (s *SessionService) Start() (*dto.SessionView, error) {
	sess, err := s.registry.Create()
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordSessionStarted()
	}
	s.logger.Info("session started", zap.String("session_id", sess.ID()))
	return s.view(sess), nil
}

// Get returns the current state of an existing session.
func (s *SessionService) Get(sessionID string) (*dto.SessionView, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

// RecordAnswer validates and stores a text or choice answer.
func (s *SessionService) RecordAnswer(sessionID string, req dto.AnswerRequest) (*dto.SessionView, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	value := models.AnswerValue{Text: req.Text, Selections: req.Selections}
	if err := sess.RecordAnswer(req.QuestionID, value); err != nil {
		s.observeFailure(err)
		return nil, err
	}
	return s.view(sess), nil
}

// RecordFiles validates and stores uploads for a file question. The
// raw bytes stay in memory until the submission pipeline persists them.
func (s *SessionService) RecordFiles(sessionID, questionID string, files []models.FileUpload) (*dto.SessionView, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.RecordAnswer(questionID, models.AnswerValue{Files: files}); err != nil {
		s.observeFailure(err)
		return nil, err
	}
	return s.view(sess), nil
}

// Advance moves the session to the next question, completing it when
// the last question passes validation.
func (s *SessionService) Advance(sessionID string) (*dto.SessionView, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Advance(); err != nil {
		s.observeFailure(err)
		return nil, err
	}
	if sess.Status() == models.SessionCompleted {
		if s.metrics != nil {
			s.metrics.RecordSessionCompleted()
		}
		s.logger.Info("session completed", zap.String("session_id", sess.ID()))
	}
	return s.view(sess), nil
}

// GoBack moves the session to the previous question.
func (s *SessionService) GoBack(sessionID string) (*dto.SessionView, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.GoBack(); err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

// Answer returns the stored answer for one question of a session.
func (s *SessionService) Answer(sessionID, questionID string) (*dto.AnswerView, error) {
	sess, err := s.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if s.catalog.ByID(questionID) == nil {
		return nil, appErrors.Clone(appErrors.ErrUnknownQuestion, "question is not part of the catalog")
	}
	answer, ok := sess.Answer(questionID)
	if !ok {
		return &dto.AnswerView{QuestionID: questionID}, nil
	}
	view := &dto.AnswerView{
		QuestionID: questionID,
		Text:       answer.Value.Text,
		Selections: answer.Value.Selections,
		RecordedAt: answer.RecordedAt,
	}
	for _, file := range answer.Value.Files {
		view.Files = append(view.Files, models.FileReference{
			Filename:  file.Filename,
			MimeType:  file.MimeType,
			SizeBytes: file.SizeBytes,
		})
	}
	return view, nil
}

func (s *SessionService) view(sess *session.FormSession) *dto.SessionView {
	position, total := sess.Progress()
	view := &dto.SessionView{
		SessionID: sess.ID(),
		Status:    string(sess.Status()),
		Progress: dto.ProgressView{
			Position: position,
			Total:    total,
		},
		CreatedAt:   sess.CreatedAt(),
		CompletedAt: sess.CompletedAt(),
	}
	if total > 0 {
		view.Progress.Percent = float64(position) / float64(total) * 100
	}
	if question := sess.CurrentQuestion(); question != nil {
		view.CurrentQuestion = &dto.QuestionView{
			ID:          question.ID,
			Prompt:      question.Prompt,
			Description: question.Description,
			Kind:        string(question.Kind),
			Required:    question.Required,
			Constraints: question.Constraints,
		}
	}
	return view
}

func (s *SessionService) observeFailure(err error) {
	if s.metrics == nil {
		return
	}
	appErr := appErrors.FromError(err)
	if appErr != nil && appErr.Code == appErrors.ErrValidation.Code {
		s.metrics.RecordValidationFailure(appErr.Kind)
	}
}
