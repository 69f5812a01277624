package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/atelier-nord/intake-api/internal/models"
)

// Catalog is the ordered, immutable set of questions every session walks
// through. Loaded once at startup and shared read-only across sessions.
type Catalog struct {
	version   string
	questions []models.Question
	byID      map[string]int
}

type catalogFile struct {
	Version   string            `yaml:"version"`
	Questions []models.Question `yaml:"questions"`
}

// Load reads and validates a catalog definition from a YAML file.
// A version passed by the caller overrides the one in the file.
func Load(path, version string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	if version == "" {
		version = file.Version
	}
	return New(version, file.Questions)
}

// New validates the definitions and builds a catalog. Questions with a zero
// order get one assigned from their position; explicit orders must be unique.
func New(version string, questions []models.Question) (*Catalog, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("catalog has no questions")
	}

	qs := make([]models.Question, len(questions))
	copy(qs, questions)

	for i := range qs {
		if qs[i].Order == 0 {
			qs[i].Order = i + 1
		}
	}
	sort.SliceStable(qs, func(i, j int) bool { return qs[i].Order < qs[j].Order })

	byID := make(map[string]int, len(qs))
	seenOrder := make(map[int]string, len(qs))
	for i, q := range qs {
		if err := validateQuestion(q); err != nil {
			return nil, fmt.Errorf("question %q: %w", q.ID, err)
		}
		if _, dup := byID[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question id %q", q.ID)
		}
		if prev, dup := seenOrder[q.Order]; dup {
			return nil, fmt.Errorf("questions %q and %q share order %d", prev, q.ID, q.Order)
		}
		byID[q.ID] = i
		seenOrder[q.Order] = q.ID
	}

	return &Catalog{version: version, questions: qs, byID: byID}, nil
}

// Version returns the catalog's declared version string.
func (c *Catalog) Version() string {
	return c.version
}

// Len returns the number of questions.
func (c *Catalog) Len() int {
	return len(c.questions)
}

// At returns the question at the given position, or nil when out of range.
func (c *Catalog) At(index int) *models.Question {
	if index < 0 || index >= len(c.questions) {
		return nil
	}
	return &c.questions[index]
}

// ByID returns the question with the given id, or nil when absent.
func (c *Catalog) ByID(id string) *models.Question {
	index, ok := c.byID[id]
	if !ok {
		return nil
	}
	return &c.questions[index]
}

// Questions returns the ordered question list. Callers must not mutate it.
func (c *Catalog) Questions() []models.Question {
	return c.questions
}

func validateQuestion(q models.Question) error {
	if q.ID == "" {
		return fmt.Errorf("missing id")
	}
	if q.Prompt == "" {
		return fmt.Errorf("missing prompt")
	}
	if !q.Kind.Valid() {
		return fmt.Errorf("unknown kind %q", q.Kind)
	}

	cons := q.Constraints
	switch q.Kind {
	case models.QuestionShortText, models.QuestionLongText:
		if cons.MaxLength > 0 && cons.MinLength > cons.MaxLength {
			return fmt.Errorf("min_length %d exceeds max_length %d", cons.MinLength, cons.MaxLength)
		}
	case models.QuestionSingleChoice, models.QuestionMultiChoice:
		if len(cons.AllowedOptions) == 0 {
			return fmt.Errorf("choice question needs options")
		}
		if q.Kind == models.QuestionMultiChoice &&
			cons.MaxSelections > 0 && cons.MinSelections > cons.MaxSelections {
			return fmt.Errorf("min_selections %d exceeds max_selections %d", cons.MinSelections, cons.MaxSelections)
		}
	case models.QuestionFileUpload:
		if cons.MaxCount > 0 && cons.MinCount > cons.MaxCount {
			return fmt.Errorf("min_count %d exceeds max_count %d", cons.MinCount, cons.MaxCount)
		}
		if cons.MaxSizeBytes < 0 || cons.MaxTotalSizeBytes < 0 {
			return fmt.Errorf("negative size limit")
		}
	}
	return nil
}
