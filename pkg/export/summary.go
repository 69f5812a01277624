package export

// Entry is one question/answer pair in a rendered summary.
type Entry struct {
	Prompt string
	Kind   string
	Value  string
	Files  []string
}

// Summary is the flattened, presentation-ready form of a completed
// questionnaire, consumed by the CSV and PDF renderers.
type Summary struct {
	Title       string
	SessionID   string
	Respondent  string
	SubmittedAt string
	Entries     []Entry
}
