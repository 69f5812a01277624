package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-nord/intake-api/internal/catalog"
	"github.com/atelier-nord/intake-api/internal/dto"
	"github.com/atelier-nord/intake-api/internal/models"
	"github.com/atelier-nord/intake-api/internal/session"
	appErrors "github.com/atelier-nord/intake-api/pkg/errors"
)

type sessionMetricsStub struct {
	started   int
	completed int
	failures  []string
}

func (m *sessionMetricsStub) RecordSessionStarted()              { m.started++ }
func (m *sessionMetricsStub) RecordSessionCompleted()            { m.completed++ }
func (m *sessionMetricsStub) RecordValidationFailure(kind string) { m.failures = append(m.failures, kind) }

func flowCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New("v1", []models.Question{
		{
			ID: "name", Prompt: "Name?", Kind: models.QuestionShortText, Required: true,
			Constraints: models.Constraints{MinLength: 2},
		},
		{
			ID: "vibe", Prompt: "Vibe?", Kind: models.QuestionSingleChoice, Required: true,
			Constraints: models.Constraints{AllowedOptions: []string{"calm", "loud"}},
		},
	})
	require.NoError(t, err)
	return cat
}

func newSessionFixture(t *testing.T) (*SessionService, *sessionMetricsStub) {
	t.Helper()
	cat := flowCatalog(t)
	registry := session.NewRegistry(cat, 5)
	metrics := &sessionMetricsStub{}
	return NewSessionService(registry, cat, metrics, nil), metrics
}

func TestSessionServiceStartAndGet(t *testing.T) {
	svc, metrics := newSessionFixture(t)

	view, err := svc.Start()
	require.NoError(t, err)
	assert.Equal(t, string(models.SessionInProgress), view.Status)
	assert.Equal(t, 0, view.Progress.Position)
	assert.Equal(t, 2, view.Progress.Total)
	require.NotNil(t, view.CurrentQuestion)
	assert.Equal(t, "name", view.CurrentQuestion.ID)
	assert.Equal(t, 1, metrics.started)

	again, err := svc.Get(view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, view.SessionID, again.SessionID)

	_, err = svc.Get("missing")
	assert.True(t, errors.Is(err, appErrors.ErrSessionNotFound))
}

func TestSessionServiceRecordAndAdvance(t *testing.T) {
	svc, metrics := newSessionFixture(t)
	view, err := svc.Start()
	require.NoError(t, err)

	// Too short, counted as a validation failure.
	_, err = svc.RecordAnswer(view.SessionID, dto.AnswerRequest{QuestionID: "name", Text: "A"})
	require.Error(t, err)
	assert.Equal(t, []string{"too_short"}, metrics.failures)

	_, err = svc.RecordAnswer(view.SessionID, dto.AnswerRequest{QuestionID: "name", Text: "Ada"})
	require.NoError(t, err)

	next, err := svc.Advance(view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "vibe", next.CurrentQuestion.ID)
	assert.Equal(t, 50.0, next.Progress.Percent)

	_, err = svc.RecordAnswer(view.SessionID, dto.AnswerRequest{QuestionID: "vibe", Selections: []string{"calm"}})
	require.NoError(t, err)

	done, err := svc.Advance(view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, string(models.SessionCompleted), done.Status)
	assert.Nil(t, done.CurrentQuestion)
	assert.Equal(t, 1, metrics.completed)
}

func TestSessionServiceGoBack(t *testing.T) {
	svc, _ := newSessionFixture(t)
	view, err := svc.Start()
	require.NoError(t, err)

	_, err = svc.GoBack(view.SessionID)
	assert.True(t, errors.Is(err, appErrors.ErrAtStart))

	_, err = svc.RecordAnswer(view.SessionID, dto.AnswerRequest{QuestionID: "name", Text: "Ada"})
	require.NoError(t, err)
	_, err = svc.Advance(view.SessionID)
	require.NoError(t, err)

	back, err := svc.GoBack(view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "name", back.CurrentQuestion.ID)

	answer, err := svc.Answer(view.SessionID, "name")
	require.NoError(t, err)
	assert.Equal(t, "Ada", answer.Text)
}

func TestSessionServiceAnswerUnknownQuestion(t *testing.T) {
	svc, _ := newSessionFixture(t)
	view, err := svc.Start()
	require.NoError(t, err)

	_, err = svc.Answer(view.SessionID, "bogus")
	assert.True(t, errors.Is(err, appErrors.ErrUnknownQuestion))
}
