package models

import "time"

// SubmissionRecord is the audit row written after a session is submitted.
type SubmissionRecord struct {
	ID          string    `db:"id" json:"id"`
	SessionID   string    `db:"session_id" json:"sessionId"`
	Email       string    `db:"email" json:"email"`
	ExportKey   string    `db:"export_key" json:"exportKey"`
	ExportURL   string    `db:"export_url" json:"exportUrl"`
	FileCount   int       `db:"file_count" json:"fileCount"`
	SubmittedAt time.Time `db:"submitted_at" json:"submittedAt"`
}

// SubmissionReceipt is the compact record cached after a successful
// submission so a restarted process can still answer "was this delivered".
type SubmissionReceipt struct {
	SessionID   string    `json:"sessionId"`
	Email       string    `json:"email"`
	ExportKey   string    `json:"exportKey"`
	SubmittedAt time.Time `json:"submittedAt"`
}
