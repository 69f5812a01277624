package models

import "time"

// ExportAnswer is one answer as it appears in the export document,
// enriched with the catalog prompt and ordered by question order.
type ExportAnswer struct {
	QuestionID string          `json:"question_id"`
	Prompt     string          `json:"prompt"`
	Kind       QuestionKind    `json:"kind"`
	Value      interface{}     `json:"value,omitempty"`
	Files      []FileReference `json:"files,omitempty"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// ExportStorage describes where the session's uploads and manifest live.
type ExportStorage struct {
	Bucket string `json:"bucket,omitempty"`
	Prefix string `json:"prefix"`
}

// ExportDocument is the canonical JSON manifest produced for a completed
// session. Immutable once built; file answers carry storage references.
type ExportDocument struct {
	Version               string         `json:"questionnaire_version"`
	SessionID             string         `json:"session_id"`
	GeneratedAt           time.Time      `json:"generated_at"`
	RespondentEmail       string         `json:"respondent_email,omitempty"`
	StartedAt             time.Time      `json:"started_at"`
	CompletedAt           *time.Time     `json:"completed_at,omitempty"`
	CompletionTimeMinutes float64        `json:"completion_time_minutes,omitempty"`
	Answers               []ExportAnswer `json:"answers"`
	Storage               ExportStorage  `json:"storage"`
}
