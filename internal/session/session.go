// Package session implements the form session state machine: one
// respondent's ordered walk through the question catalog, the recorded
// answers, and the in_progress -> completed -> submitted lifecycle.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"

	"github.com/atelier-nord/intake-api/internal/catalog"
	"github.com/atelier-nord/intake-api/internal/models"
	"github.com/atelier-nord/intake-api/internal/validation"
	appErrors "github.com/atelier-nord/intake-api/pkg/errors"
)

const (
	eventComplete = "complete"
	eventSubmit   = "submit"
)

// FormSession tracks one respondent's progress. All exported methods are
// safe for concurrent use, though a session is expected to be driven by a
// single client at a time.
type FormSession struct {
	mu sync.Mutex

	id            string
	catalog       *catalog.Catalog
	answers       map[string]models.Answer
	cursor        int
	lifecycle     *fsm.FSM
	email         string
	storagePrefix string
	createdAt     time.Time
	completedAt   *time.Time
	touchedAt     time.Time
}

// New creates a fresh in-progress session bound to the given catalog.
func New(cat *catalog.Catalog) *FormSession {
	now := time.Now().UTC()
	id := uuid.NewString()
	return &FormSession{
		id:      id,
		catalog: cat,
		answers: make(map[string]models.Answer),
		lifecycle: fsm.NewFSM(
			string(models.SessionInProgress),
			fsm.Events{
				{Name: eventComplete, Src: []string{string(models.SessionInProgress)}, Dst: string(models.SessionCompleted)},
				{Name: eventSubmit, Src: []string{string(models.SessionCompleted)}, Dst: string(models.SessionSubmitted)},
			},
			fsm.Callbacks{},
		),
		storagePrefix: fmt.Sprintf("%s/%s", id, now.Format("20060102_150405")),
		createdAt:     now,
		touchedAt:     now,
	}
}

// ID returns the session identifier.
func (s *FormSession) ID() string {
	return s.id
}

// Status returns the current lifecycle state.
func (s *FormSession) Status() models.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.SessionStatus(s.lifecycle.Current())
}

// CreatedAt returns when the session started.
func (s *FormSession) CreatedAt() time.Time {
	return s.createdAt
}

// CompletedAt returns when the last question was advanced past, or nil.
func (s *FormSession) CompletedAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completedAt
}

// TouchedAt returns the time of the last mutating or reading operation.
func (s *FormSession) TouchedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}

// StoragePrefix is the object-store folder all of this session's uploads
// and its export manifest are keyed under.
func (s *FormSession) StoragePrefix() string {
	return s.storagePrefix
}

// Email returns the respondent address captured at submission time.
func (s *FormSession) Email() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.email
}

// RecordAnswer validates and stores an answer for the given question,
// overwriting any previous answer. State is untouched on failure.
func (s *FormSession) RecordAnswer(questionID string, value models.AnswerValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.lifecycle.Current() != string(models.SessionInProgress) {
		return appErrors.ErrAlreadyComplete
	}

	question := s.catalog.ByID(questionID)
	if question == nil {
		return appErrors.Clone(appErrors.ErrUnknownQuestion,
			fmt.Sprintf("question %q is not part of the catalog", questionID))
	}

	result := validation.Validate(question, value)
	if !result.OK {
		return appErrors.Validation(string(result.Kind), result.Message)
	}

	s.answers[questionID] = models.Answer{
		QuestionID: questionID,
		Value:      result.Normalized,
		RecordedAt: time.Now().UTC(),
	}
	return nil
}

// Advance re-validates the answer at the cursor and moves forward. Moving
// past the last question completes the session. The cursor never moves on
// a validation failure.
func (s *FormSession) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.lifecycle.Current() != string(models.SessionInProgress) {
		return appErrors.ErrAlreadyComplete
	}

	question := s.catalog.At(s.cursor)
	if question == nil {
		// cursor == len(catalog) only happens once completed; guarded above.
		return appErrors.ErrAlreadyComplete
	}

	answer, answered := s.answers[question.ID]
	var value models.AnswerValue
	if answered {
		value = answer.Value
	}
	result := validation.Validate(question, value)
	if !result.OK {
		return appErrors.Validation(string(result.Kind), result.Message)
	}

	s.cursor++
	if s.cursor == s.catalog.Len() {
		if err := s.lifecycle.Event(context.Background(), eventComplete); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "lifecycle transition failed")
		}
		now := time.Now().UTC()
		s.completedAt = &now
	}
	return nil
}

// GoBack moves the cursor to the previous question. Stored answers are
// never touched, so a back/forward round trip reproduces identical state.
func (s *FormSession) GoBack() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.lifecycle.Current() != string(models.SessionInProgress) {
		return appErrors.ErrAlreadyComplete
	}
	if s.cursor == 0 {
		return appErrors.ErrAtStart
	}
	s.cursor--
	return nil
}

// CurrentQuestion returns the question at the cursor, or nil once the
// respondent has advanced past the last one.
func (s *FormSession) CurrentQuestion() *models.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.At(s.cursor)
}

// Progress returns the cursor position and the catalog length.
func (s *FormSession) Progress() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor, s.catalog.Len()
}

// Answer returns the stored answer for a question, if any.
func (s *FormSession) Answer(questionID string) (models.Answer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	answer, ok := s.answers[questionID]
	return answer, ok
}

// MarkSubmitted transitions a completed session to submitted and captures
// the respondent email. Only the submission pipeline calls this.
func (s *FormSession) MarkSubmitted(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.lifecycle.Event(context.Background(), eventSubmit); err != nil {
		return appErrors.ErrSessionNotComplete
	}
	s.email = email
	return nil
}

func (s *FormSession) touch() {
	s.touchedAt = time.Now().UTC()
}
