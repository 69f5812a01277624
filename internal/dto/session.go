package dto

import (
	"time"

	"github.com/atelier-nord/intake-api/internal/models"
)

// QuestionView is a catalog question as exposed to respondents.
type QuestionView struct {
	ID          string             `json:"id"`
	Prompt      string             `json:"prompt"`
	Description string             `json:"description,omitempty"`
	Kind        string             `json:"kind"`
	Required    bool               `json:"required"`
	Constraints models.Constraints `json:"constraints"`
}

// ProgressView reports how far the respondent has advanced.
type ProgressView struct {
	Position int     `json:"position"`
	Total    int     `json:"total"`
	Percent  float64 `json:"percent"`
}

// SessionView is the session state returned by most session endpoints.
type SessionView struct {
	SessionID       string        `json:"session_id"`
	Status          string        `json:"status"`
	Progress        ProgressView  `json:"progress"`
	CurrentQuestion *QuestionView `json:"current_question,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty"`
}

// AnswerRequest records an answer for one question.
type AnswerRequest struct {
	QuestionID string   `json:"question_id" binding:"required"`
	Text       string   `json:"text,omitempty"`
	Selections []string `json:"selections,omitempty"`
}

// AnswerView echoes a stored answer back to the client.
type AnswerView struct {
	QuestionID string                 `json:"question_id"`
	Text       string                 `json:"text,omitempty"`
	Selections []string               `json:"selections,omitempty"`
	Files      []models.FileReference `json:"files,omitempty"`
	RecordedAt time.Time              `json:"recorded_at"`
}
