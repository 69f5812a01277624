package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-nord/intake-api/internal/models"
)

func shortText(required bool, minLen, maxLen int) *models.Question {
	return &models.Question{
		ID:       "name",
		Prompt:   "What is your name?",
		Kind:     models.QuestionShortText,
		Required: required,
		Constraints: models.Constraints{
			MinLength: minLen,
			MaxLength: maxLen,
		},
	}
}

func TestValidateRequiredEmptyText(t *testing.T) {
	result := Validate(shortText(true, 1, 0), models.AnswerValue{Text: ""})
	require.False(t, result.OK)
	assert.Equal(t, KindRequired, result.Kind)

	result = Validate(shortText(true, 1, 0), models.AnswerValue{Text: "   "})
	require.False(t, result.OK)
	assert.Equal(t, KindRequired, result.Kind)
}

func TestValidateOptionalEmptyIsOK(t *testing.T) {
	result := Validate(shortText(false, 10, 0), models.AnswerValue{Text: ""})
	require.True(t, result.OK)
	assert.True(t, result.Normalized.Empty())
}

func TestValidateTextLengthAfterTrimming(t *testing.T) {
	q := shortText(true, 3, 5)

	result := Validate(q, models.AnswerValue{Text: "  ab  "})
	require.False(t, result.OK)
	assert.Equal(t, KindTooShort, result.Kind)

	result = Validate(q, models.AnswerValue{Text: "abcdef"})
	require.False(t, result.OK)
	assert.Equal(t, KindTooLong, result.Kind)

	result = Validate(q, models.AnswerValue{Text: "  Ada  "})
	require.True(t, result.OK)
	assert.Equal(t, "Ada", result.Normalized.Text)
}

func TestValidateSingleChoice(t *testing.T) {
	q := &models.Question{
		ID:       "archetype",
		Prompt:   "Who are you?",
		Kind:     models.QuestionSingleChoice,
		Required: true,
		Constraints: models.Constraints{
			AllowedOptions: []string{"Creator", "Sage"},
		},
	}

	result := Validate(q, models.AnswerValue{Selections: []string{"Creator"}})
	assert.True(t, result.OK)

	// A bare text value is accepted as the selection.
	result = Validate(q, models.AnswerValue{Text: "Sage"})
	require.True(t, result.OK)
	assert.Equal(t, []string{"Sage"}, result.Normalized.Selections)

	result = Validate(q, models.AnswerValue{Selections: []string{"Wizard"}})
	require.False(t, result.OK)
	assert.Equal(t, KindInvalidOption, result.Kind)

	result = Validate(q, models.AnswerValue{Selections: []string{"Creator", "Sage"}})
	require.False(t, result.OK)
	assert.Equal(t, KindTooManySelections, result.Kind)
}

func TestValidateMultiChoiceSelectionBounds(t *testing.T) {
	q := &models.Question{
		ID:       "story_arc",
		Prompt:   "What's your story arc?",
		Kind:     models.QuestionMultiChoice,
		Required: true,
		Constraints: models.Constraints{
			MinSelections:  1,
			MaxSelections:  2,
			AllowedOptions: []string{"Quest", "Comedy", "Rebirth"},
		},
	}

	result := Validate(q, models.AnswerValue{Selections: []string{"Quest", "Comedy", "Rebirth"}})
	require.False(t, result.OK)
	assert.Equal(t, KindTooManySelections, result.Kind)

	result = Validate(q, models.AnswerValue{Selections: []string{"Quest", "Opera"}})
	require.False(t, result.OK)
	assert.Equal(t, KindInvalidOption, result.Kind)

	result = Validate(q, models.AnswerValue{Selections: []string{"Quest", "Rebirth"}})
	assert.True(t, result.OK)
}

func fileQuestion() *models.Question {
	return &models.Question{
		ID:       "references",
		Prompt:   "Upload reference images",
		Kind:     models.QuestionFileUpload,
		Required: true,
		Constraints: models.Constraints{
			MinCount:          2,
			MaxCount:          3,
			MaxSizeBytes:      1024,
			MaxTotalSizeBytes: 2048,
			AllowedMIMETypes:  []string{"image/jpeg", "image/png"},
		},
	}
}

func upload(name, mime string, size int64) models.FileUpload {
	return models.FileUpload{Filename: name, MimeType: mime, SizeBytes: size}
}

func TestValidateFileCount(t *testing.T) {
	q := fileQuestion()

	result := Validate(q, models.AnswerValue{Files: []models.FileUpload{
		upload("a.jpg", "image/jpeg", 10),
	}})
	require.False(t, result.OK)
	assert.Equal(t, KindTooFewFiles, result.Kind)

	result = Validate(q, models.AnswerValue{Files: []models.FileUpload{
		upload("a.jpg", "image/jpeg", 10),
		upload("b.jpg", "image/jpeg", 10),
		upload("c.jpg", "image/jpeg", 10),
		upload("d.jpg", "image/jpeg", 10),
	}})
	require.False(t, result.OK)
	assert.Equal(t, KindTooManyFiles, result.Kind)
}

func TestValidateFileSizeAndType(t *testing.T) {
	q := fileQuestion()

	result := Validate(q, models.AnswerValue{Files: []models.FileUpload{
		upload("a.jpg", "image/jpeg", 10),
		upload("big.jpg", "image/jpeg", 4096),
	}})
	require.False(t, result.OK)
	assert.Equal(t, KindFileTooLarge, result.Kind)

	result = Validate(q, models.AnswerValue{Files: []models.FileUpload{
		upload("a.jpg", "image/jpeg", 10),
		upload("b.gif", "image/gif", 10),
	}})
	require.False(t, result.OK)
	assert.Equal(t, KindUnsupportedFileType, result.Kind)
}

func TestValidateFileTotalSize(t *testing.T) {
	q := fileQuestion()

	result := Validate(q, models.AnswerValue{Files: []models.FileUpload{
		upload("a.jpg", "image/jpeg", 1000),
		upload("b.jpg", "image/jpeg", 1000),
		upload("c.jpg", "image/jpeg", 1000),
	}})
	require.False(t, result.OK)
	assert.Equal(t, KindTotalSizeExceeded, result.Kind)
}

func TestValidateFilesOK(t *testing.T) {
	q := fileQuestion()

	result := Validate(q, models.AnswerValue{Files: []models.FileUpload{
		upload("a.jpg", "image/jpeg", 500),
		upload("b.png", "image/png", 500),
	}})
	require.True(t, result.OK)
	assert.Len(t, result.Normalized.Files, 2)
}

func TestValidateEmail(t *testing.T) {
	result := ValidateEmail("  ada@example.com ")
	require.True(t, result.OK)
	assert.Equal(t, "ada@example.com", result.Normalized.Text)

	for _, bad := range []string{"", "  ", "not-an-email", "a@b", "a b@example.com"} {
		result := ValidateEmail(bad)
		assert.False(t, result.OK, "expected %q to be rejected", bad)
	}
}

func TestValidateLongTextMinimum(t *testing.T) {
	q := &models.Question{
		ID:          "plot_points",
		Prompt:      "Key plot points",
		Kind:        models.QuestionLongText,
		Required:    true,
		Constraints: models.Constraints{MinLength: 100},
	}

	result := Validate(q, models.AnswerValue{Text: "too short"})
	require.False(t, result.OK)
	assert.Equal(t, KindTooShort, result.Kind)

	result = Validate(q, models.AnswerValue{Text: strings.Repeat("x", 100)})
	assert.True(t, result.OK)
}
