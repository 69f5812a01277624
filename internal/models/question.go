package models

// QuestionKind determines the answer payload shape and validation rules.
type QuestionKind string

const (
	QuestionShortText    QuestionKind = "short_text"
	QuestionLongText     QuestionKind = "long_text"
	QuestionSingleChoice QuestionKind = "single_choice"
	QuestionMultiChoice  QuestionKind = "multi_choice"
	QuestionFileUpload   QuestionKind = "file_upload"
)

// Valid reports whether the kind is one of the supported values.
func (k QuestionKind) Valid() bool {
	switch k {
	case QuestionShortText, QuestionLongText, QuestionSingleChoice, QuestionMultiChoice, QuestionFileUpload:
		return true
	default:
		return false
	}
}

// Constraints holds the kind-specific validation parameters of a question.
// Zero values mean "no limit" except where noted.
type Constraints struct {
	MinLength         int      `yaml:"min_length" json:"minLength,omitempty"`
	MaxLength         int      `yaml:"max_length" json:"maxLength,omitempty"`
	AllowedOptions    []string `yaml:"options" json:"options,omitempty"`
	MinSelections     int      `yaml:"min_selections" json:"minSelections,omitempty"`
	MaxSelections     int      `yaml:"max_selections" json:"maxSelections,omitempty"`
	MinCount          int      `yaml:"min_count" json:"minCount,omitempty"`
	MaxCount          int      `yaml:"max_count" json:"maxCount,omitempty"`
	MaxSizeBytes      int64    `yaml:"max_size_bytes" json:"maxSizeBytes,omitempty"`
	MaxTotalSizeBytes int64    `yaml:"max_total_size_bytes" json:"maxTotalSizeBytes,omitempty"`
	AllowedMIMETypes  []string `yaml:"allowed_mime_types" json:"allowedMimeTypes,omitempty"`
}

// Question is a single immutable catalog entry. Order defines the sequence
// respondents walk through; IDs are unique within a catalog.
type Question struct {
	ID          string       `yaml:"id" json:"id"`
	Order       int          `yaml:"order" json:"order"`
	Prompt      string       `yaml:"prompt" json:"prompt"`
	Description string       `yaml:"description" json:"description,omitempty"`
	Kind        QuestionKind `yaml:"kind" json:"kind"`
	Required    bool         `yaml:"required" json:"required"`
	Constraints Constraints  `yaml:"constraints" json:"constraints"`
}
