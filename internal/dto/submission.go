package dto

import "time"

// SubmitRequest finalizes a completed session. The email is collected
// here rather than as a questionnaire answer.
type SubmitRequest struct {
	Email string `json:"email" binding:"required"`
}

// SubmissionView is returned by the submit endpoint, both on the first
// call and on idempotent repeats.
type SubmissionView struct {
	SessionID   string    `json:"session_id"`
	Status      string    `json:"status"`
	Email       string    `json:"email"`
	ExportKey   string    `json:"export_key"`
	ExportURL   string    `json:"export_url,omitempty"`
	FileCount   int       `json:"file_count"`
	SubmittedAt time.Time `json:"submitted_at"`
}
