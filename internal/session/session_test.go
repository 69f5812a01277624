package session

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-nord/intake-api/internal/catalog"
	"github.com/atelier-nord/intake-api/internal/models"
	appErrors "github.com/atelier-nord/intake-api/pkg/errors"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New("test", []models.Question{
		{
			ID:          "name",
			Prompt:      "What is your name?",
			Kind:        models.QuestionShortText,
			Required:    true,
			Constraints: models.Constraints{MinLength: 1},
		},
		{
			ID:       "genre",
			Prompt:   "Pick a genre",
			Kind:     models.QuestionSingleChoice,
			Required: true,
			Constraints: models.Constraints{
				AllowedOptions: []string{"house", "techno"},
			},
		},
		{
			ID:       "bio",
			Prompt:   "Tell us more",
			Kind:     models.QuestionLongText,
			Required: false,
		},
	})
	require.NoError(t, err)
	return cat
}

func TestNewSessionStartsInProgress(t *testing.T) {
	sess := New(testCatalog(t))

	assert.NotEmpty(t, sess.ID())
	assert.Equal(t, models.SessionInProgress, sess.Status())
	cursor, total := sess.Progress()
	assert.Equal(t, 0, cursor)
	assert.Equal(t, 3, total)
	assert.Equal(t, "name", sess.CurrentQuestion().ID)
	assert.Nil(t, sess.CompletedAt())
	assert.True(t, strings.HasPrefix(sess.StoragePrefix(), sess.ID()+"/"))
}

func TestRecordAnswerValidates(t *testing.T) {
	sess := New(testCatalog(t))

	err := sess.RecordAnswer("name", models.AnswerValue{Text: ""})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, "VALIDATION_FAILED", appErr.Code)
	assert.Equal(t, "required", appErr.Kind)

	// Failed validation never stores anything.
	_, ok := sess.Answer("name")
	assert.False(t, ok)

	require.NoError(t, sess.RecordAnswer("name", models.AnswerValue{Text: "Ada"}))
	answer, ok := sess.Answer("name")
	require.True(t, ok)
	assert.Equal(t, "Ada", answer.Value.Text)
}

func TestRecordAnswerUnknownQuestion(t *testing.T) {
	sess := New(testCatalog(t))

	err := sess.RecordAnswer("nope", models.AnswerValue{Text: "x"})
	assert.True(t, errors.Is(err, appErrors.ErrUnknownQuestion))
}

func TestAdvanceRequiresValidAnswer(t *testing.T) {
	sess := New(testCatalog(t))

	err := sess.Advance()
	require.Error(t, err)
	assert.Equal(t, "required", appErrors.FromError(err).Kind)

	cursor, _ := sess.Progress()
	assert.Equal(t, 0, cursor)

	require.NoError(t, sess.RecordAnswer("name", models.AnswerValue{Text: "Ada"}))
	require.NoError(t, sess.Advance())
	cursor, _ = sess.Progress()
	assert.Equal(t, 1, cursor)
}

func TestAdvancePastLastQuestionCompletes(t *testing.T) {
	sess := New(testCatalog(t))

	require.NoError(t, sess.RecordAnswer("name", models.AnswerValue{Text: "Ada"}))
	require.NoError(t, sess.Advance())
	require.NoError(t, sess.RecordAnswer("genre", models.AnswerValue{Selections: []string{"house"}}))
	require.NoError(t, sess.Advance())
	// bio is optional; advancing with no answer is allowed.
	require.NoError(t, sess.Advance())

	assert.Equal(t, models.SessionCompleted, sess.Status())
	require.NotNil(t, sess.CompletedAt())
	assert.Nil(t, sess.CurrentQuestion())

	cursor, total := sess.Progress()
	assert.Equal(t, total, cursor)

	// Further mutation is rejected.
	assert.True(t, errors.Is(sess.Advance(), appErrors.ErrAlreadyComplete))
	assert.True(t, errors.Is(sess.RecordAnswer("name", models.AnswerValue{Text: "B"}), appErrors.ErrAlreadyComplete))
	assert.True(t, errors.Is(sess.GoBack(), appErrors.ErrAlreadyComplete))
}

func TestGoBackAtStart(t *testing.T) {
	sess := New(testCatalog(t))

	err := sess.GoBack()
	assert.True(t, errors.Is(err, appErrors.ErrAtStart))
	cursor, _ := sess.Progress()
	assert.Equal(t, 0, cursor)
}

func TestGoBackPreservesAnswers(t *testing.T) {
	sess := New(testCatalog(t))

	require.NoError(t, sess.RecordAnswer("name", models.AnswerValue{Text: "Ada"}))
	require.NoError(t, sess.Advance())
	require.NoError(t, sess.RecordAnswer("genre", models.AnswerValue{Selections: []string{"techno"}}))
	require.NoError(t, sess.Advance())

	require.NoError(t, sess.GoBack())
	require.NoError(t, sess.GoBack())
	assert.Equal(t, "name", sess.CurrentQuestion().ID)

	// Answers recorded ahead of the cursor survive back navigation.
	answer, ok := sess.Answer("genre")
	require.True(t, ok)
	assert.Equal(t, []string{"techno"}, answer.Value.Selections)

	// Round trip without modification reproduces the same state.
	require.NoError(t, sess.Advance())
	require.NoError(t, sess.Advance())
	cursor, _ := sess.Progress()
	assert.Equal(t, 2, cursor)
	assert.Equal(t, "bio", sess.CurrentQuestion().ID)
}

func TestMarkSubmittedLifecycle(t *testing.T) {
	sess := New(testCatalog(t))

	// Not completed yet.
	err := sess.MarkSubmitted("ada@example.com")
	assert.True(t, errors.Is(err, appErrors.ErrSessionNotComplete))

	require.NoError(t, sess.RecordAnswer("name", models.AnswerValue{Text: "Ada"}))
	require.NoError(t, sess.Advance())
	require.NoError(t, sess.RecordAnswer("genre", models.AnswerValue{Selections: []string{"house"}}))
	require.NoError(t, sess.Advance())
	require.NoError(t, sess.Advance())

	require.NoError(t, sess.MarkSubmitted("ada@example.com"))
	assert.Equal(t, models.SessionSubmitted, sess.Status())
	assert.Equal(t, "ada@example.com", sess.Email())

	// Submitting twice is rejected at the lifecycle level.
	err = sess.MarkSubmitted("ada@example.com")
	assert.True(t, errors.Is(err, appErrors.ErrSessionNotComplete))
}

func TestRegistryLifecycle(t *testing.T) {
	registry := NewRegistry(testCatalog(t), 2)

	first, err := registry.Create()
	require.NoError(t, err)
	_, err = registry.Create()
	require.NoError(t, err)

	_, err = registry.Create()
	assert.True(t, errors.Is(err, appErrors.ErrTooManySessions))

	found, err := registry.Get(first.ID())
	require.NoError(t, err)
	assert.Same(t, first, found)

	_, err = registry.Get("missing")
	assert.True(t, errors.Is(err, appErrors.ErrSessionNotFound))

	registry.Remove(first.ID())
	assert.Equal(t, 1, registry.Len())
}

func TestRegistrySweepIdle(t *testing.T) {
	registry := NewRegistry(testCatalog(t), 10)

	sess, err := registry.Create()
	require.NoError(t, err)

	evicted := registry.SweepIdle(0)
	assert.Contains(t, evicted, sess.ID())
	assert.Equal(t, 0, registry.Len())
}
