// Package export builds the canonical JSON manifest for a finished session.
package export

import (
	"time"

	"github.com/atelier-nord/intake-api/internal/catalog"
	"github.com/atelier-nord/intake-api/internal/models"
	"github.com/atelier-nord/intake-api/internal/session"
	appErrors "github.com/atelier-nord/intake-api/pkg/errors"
)

// Build assembles the export document for a completed session. Answers
// follow catalog order regardless of the order they were recorded in.
// refs maps question IDs to the storage references of uploaded files.
func Build(sess *session.FormSession, cat *catalog.Catalog, refs map[string][]models.FileReference, email, bucket string) (*models.ExportDocument, error) {
	if sess.Status() == models.SessionInProgress {
		return nil, appErrors.ErrSessionNotComplete
	}

	doc := &models.ExportDocument{
		Version:         cat.Version(),
		SessionID:       sess.ID(),
		GeneratedAt:     time.Now().UTC(),
		RespondentEmail: email,
		StartedAt:       sess.CreatedAt(),
		CompletedAt:     sess.CompletedAt(),
		Answers:         make([]models.ExportAnswer, 0, cat.Len()),
		Storage: models.ExportStorage{
			Bucket: bucket,
			Prefix: sess.StoragePrefix(),
		},
	}
	if doc.CompletedAt != nil {
		doc.CompletionTimeMinutes = doc.CompletedAt.Sub(doc.StartedAt).Minutes()
	}

	for _, question := range cat.Questions() {
		answer, answered := sess.Answer(question.ID)
		if !answered {
			continue
		}
		entry := models.ExportAnswer{
			QuestionID: question.ID,
			Prompt:     question.Prompt,
			Kind:       question.Kind,
			RecordedAt: answer.RecordedAt,
		}
		switch question.Kind {
		case models.QuestionShortText, models.QuestionLongText:
			entry.Value = answer.Value.Text
		case models.QuestionSingleChoice:
			if len(answer.Value.Selections) > 0 {
				entry.Value = answer.Value.Selections[0]
			}
		case models.QuestionMultiChoice:
			entry.Value = answer.Value.Selections
		case models.QuestionFileUpload:
			entry.Files = refs[question.ID]
		}
		doc.Answers = append(doc.Answers, entry)
	}
	return doc, nil
}
