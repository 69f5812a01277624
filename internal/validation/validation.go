// Package validation holds the pure answer validation rules. Nothing here
// performs I/O or mutates state; callers decide what to do with a Result.
package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/atelier-nord/intake-api/internal/models"
)

// Kind identifies which rule an answer violated.
type Kind string

const (
	KindRequired            Kind = "required"
	KindTooShort            Kind = "too_short"
	KindTooLong             Kind = "too_long"
	KindInvalidOption       Kind = "invalid_option"
	KindTooFewSelections    Kind = "too_few_selections"
	KindTooManySelections   Kind = "too_many_selections"
	KindTooFewFiles         Kind = "too_few_files"
	KindTooManyFiles        Kind = "too_many_files"
	KindFileTooLarge        Kind = "file_too_large"
	KindUnsupportedFileType Kind = "unsupported_file_type"
	KindTotalSizeExceeded   Kind = "total_size_exceeded"
	KindInvalidEmail        Kind = "invalid_email"
)

// Result is the outcome of validating one answer against one question.
// Normalized carries the value to store when OK.
type Result struct {
	OK         bool
	Kind       Kind
	Message    string
	Normalized models.AnswerValue
}

func ok(value models.AnswerValue) Result {
	return Result{OK: true, Normalized: value}
}

func fail(kind Kind, format string, args ...interface{}) Result {
	return Result{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

var emailValidator = validator.New()

// Validate checks a raw answer value against the question's constraints.
// The first violated rule wins; errors are never aggregated.
func Validate(q *models.Question, value models.AnswerValue) Result {
	empty := isEmpty(q.Kind, value)
	if empty {
		if q.Required {
			return fail(KindRequired, "This question is required. Please provide an answer.")
		}
		return ok(models.AnswerValue{})
	}

	switch q.Kind {
	case models.QuestionShortText, models.QuestionLongText:
		return validateText(q, value)
	case models.QuestionSingleChoice:
		return validateSingleChoice(q, value)
	case models.QuestionMultiChoice:
		return validateMultiChoice(q, value)
	case models.QuestionFileUpload:
		return validateFiles(q, value)
	default:
		return fail(KindInvalidOption, "Unsupported question kind %q.", q.Kind)
	}
}

// ValidateEmail checks the respondent address collected at submission.
func ValidateEmail(email string) Result {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return fail(KindRequired, "Please provide an email address.")
	}
	if err := emailValidator.Var(trimmed, "email"); err != nil {
		return fail(KindInvalidEmail, "Please provide a valid email address (e.g. name@example.com).")
	}
	return ok(models.AnswerValue{Text: trimmed})
}

func isEmpty(kind models.QuestionKind, value models.AnswerValue) bool {
	switch kind {
	case models.QuestionShortText, models.QuestionLongText:
		return strings.TrimSpace(value.Text) == ""
	case models.QuestionSingleChoice, models.QuestionMultiChoice:
		return len(value.Selections) == 0 && strings.TrimSpace(value.Text) == ""
	case models.QuestionFileUpload:
		return len(value.Files) == 0
	default:
		return value.Empty()
	}
}

func validateText(q *models.Question, value models.AnswerValue) Result {
	text := strings.TrimSpace(value.Text)
	cons := q.Constraints

	if cons.MinLength > 0 && len(text) < cons.MinLength {
		return fail(KindTooShort,
			"Please provide at least %d characters. Current length: %d.", cons.MinLength, len(text))
	}
	if cons.MaxLength > 0 && len(text) > cons.MaxLength {
		return fail(KindTooLong,
			"Please keep your answer under %d characters. Current length: %d.", cons.MaxLength, len(text))
	}
	return ok(models.AnswerValue{Text: text})
}

func validateSingleChoice(q *models.Question, value models.AnswerValue) Result {
	selections := value.Selections
	if len(selections) == 0 && value.Text != "" {
		selections = []string{value.Text}
	}
	if len(selections) != 1 {
		return fail(KindTooManySelections, "Please select exactly one option.")
	}
	if !isAllowed(q.Constraints.AllowedOptions, selections[0]) {
		return fail(KindInvalidOption, "Invalid selection. Please choose from the available options.")
	}
	return ok(models.AnswerValue{Selections: selections})
}

func validateMultiChoice(q *models.Question, value models.AnswerValue) Result {
	cons := q.Constraints
	selections := value.Selections

	if cons.MinSelections > 0 && len(selections) < cons.MinSelections {
		return fail(KindTooFewSelections, "Please select at least %d option(s).", cons.MinSelections)
	}
	if cons.MaxSelections > 0 && len(selections) > cons.MaxSelections {
		return fail(KindTooManySelections, "Please select at most %d option(s).", cons.MaxSelections)
	}
	for _, selection := range selections {
		if !isAllowed(cons.AllowedOptions, selection) {
			return fail(KindInvalidOption, "Invalid selection: %q.", selection)
		}
	}
	return ok(models.AnswerValue{Selections: selections})
}

func validateFiles(q *models.Question, value models.AnswerValue) Result {
	cons := q.Constraints
	files := value.Files

	if cons.MinCount > 0 && len(files) < cons.MinCount {
		return fail(KindTooFewFiles, "Please upload at least %d file(s).", cons.MinCount)
	}
	if cons.MaxCount > 0 && len(files) > cons.MaxCount {
		return fail(KindTooManyFiles, "Please upload at most %d file(s).", cons.MaxCount)
	}

	var total int64
	for _, file := range files {
		if cons.MaxSizeBytes > 0 && file.SizeBytes > cons.MaxSizeBytes {
			return fail(KindFileTooLarge,
				"%q exceeds the %d MB per-file limit.", file.Filename, cons.MaxSizeBytes/(1024*1024))
		}
		if len(cons.AllowedMIMETypes) > 0 && !isAllowed(cons.AllowedMIMETypes, strings.ToLower(file.MimeType)) {
			return fail(KindUnsupportedFileType, "%q has unsupported type %q.", file.Filename, file.MimeType)
		}
		total += file.SizeBytes
	}
	if cons.MaxTotalSizeBytes > 0 && total > cons.MaxTotalSizeBytes {
		return fail(KindTotalSizeExceeded,
			"Uploads exceed the %d MB total limit.", cons.MaxTotalSizeBytes/(1024*1024))
	}
	return ok(models.AnswerValue{Files: files})
}

func isAllowed(allowed []string, candidate string) bool {
	for _, option := range allowed {
		if option == candidate {
			return true
		}
	}
	return false
}
