package models

// SessionStatus is the lifecycle state of a form session.
type SessionStatus string

const (
	// SessionInProgress accepts answers and navigation.
	SessionInProgress SessionStatus = "in_progress"
	// SessionCompleted means the respondent advanced past the last question;
	// the session may be submitted, possibly more than once after failures.
	SessionCompleted SessionStatus = "completed"
	// SessionSubmitted means the finalization pipeline ran to full success.
	// Terminal; repeated submits are no-ops.
	SessionSubmitted SessionStatus = "submitted"
)
