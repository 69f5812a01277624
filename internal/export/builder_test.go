package export

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-nord/intake-api/internal/catalog"
	"github.com/atelier-nord/intake-api/internal/models"
	"github.com/atelier-nord/intake-api/internal/session"
	appErrors "github.com/atelier-nord/intake-api/pkg/errors"
)

func buildCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New("v7", []models.Question{
		{ID: "title", Prompt: "Working title?", Kind: models.QuestionShortText, Required: true},
		{
			ID: "mood", Prompt: "Pick moods", Kind: models.QuestionMultiChoice,
			Constraints: models.Constraints{AllowedOptions: []string{"dark", "warm", "raw"}},
		},
		{
			ID: "refs", Prompt: "Reference images", Kind: models.QuestionFileUpload,
			Constraints: models.Constraints{MaxCount: 3},
		},
	})
	require.NoError(t, err)
	return cat
}

func completedSession(t *testing.T, cat *catalog.Catalog) *session.FormSession {
	t.Helper()
	sess := session.New(cat)

	// Answer out of catalog order on purpose.
	require.NoError(t, sess.RecordAnswer("refs", models.AnswerValue{Files: []models.FileUpload{
		{Filename: "a.jpg", MimeType: "image/jpeg", SizeBytes: 100},
	}}))
	require.NoError(t, sess.RecordAnswer("mood", models.AnswerValue{Selections: []string{"dark", "raw"}}))
	require.NoError(t, sess.RecordAnswer("title", models.AnswerValue{Text: "Nordlys"}))

	require.NoError(t, sess.Advance())
	require.NoError(t, sess.Advance())
	require.NoError(t, sess.Advance())
	return sess
}

func TestBuildRequiresCompletedSession(t *testing.T) {
	cat := buildCatalog(t)
	sess := session.New(cat)

	_, err := Build(sess, cat, nil, "x@example.com", "")
	assert.True(t, errors.Is(err, appErrors.ErrSessionNotComplete))
}

func TestBuildFollowsCatalogOrder(t *testing.T) {
	cat := buildCatalog(t)
	sess := completedSession(t, cat)

	refs := map[string][]models.FileReference{
		"refs": {{Filename: "a.jpg", Key: sess.StoragePrefix() + "/refs/01_a.jpg", MimeType: "image/jpeg", SizeBytes: 100}},
	}
	doc, err := Build(sess, cat, refs, "x@example.com", "intake-uploads")
	require.NoError(t, err)

	assert.Equal(t, "v7", doc.Version)
	assert.Equal(t, sess.ID(), doc.SessionID)
	assert.Equal(t, "x@example.com", doc.RespondentEmail)
	assert.Equal(t, "intake-uploads", doc.Storage.Bucket)
	assert.Equal(t, sess.StoragePrefix(), doc.Storage.Prefix)
	require.NotNil(t, doc.CompletedAt)
	assert.GreaterOrEqual(t, doc.CompletionTimeMinutes, 0.0)

	require.Len(t, doc.Answers, 3)
	assert.Equal(t, "title", doc.Answers[0].QuestionID)
	assert.Equal(t, "Nordlys", doc.Answers[0].Value)
	assert.Equal(t, "mood", doc.Answers[1].QuestionID)
	assert.Equal(t, []string{"dark", "raw"}, doc.Answers[1].Value)
	assert.Equal(t, "refs", doc.Answers[2].QuestionID)
	assert.Nil(t, doc.Answers[2].Value)
	require.Len(t, doc.Answers[2].Files, 1)
	assert.Equal(t, "a.jpg", doc.Answers[2].Files[0].Filename)
}

func TestBuildSkipsUnansweredOptional(t *testing.T) {
	cat := buildCatalog(t)
	sess := session.New(cat)

	require.NoError(t, sess.RecordAnswer("title", models.AnswerValue{Text: "Nordlys"}))
	require.NoError(t, sess.Advance())
	require.NoError(t, sess.Advance())
	require.NoError(t, sess.Advance())

	doc, err := Build(sess, cat, nil, "x@example.com", "")
	require.NoError(t, err)
	require.Len(t, doc.Answers, 1)
	assert.Equal(t, "title", doc.Answers[0].QuestionID)
}
