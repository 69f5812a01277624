package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code so predefined values survive Clone/Wrap.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e != nil && t != nil && e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors covering the intake engine's taxonomy.
var (
	ErrSessionNotFound    = New("SESSION_NOT_FOUND", http.StatusNotFound, "session not found")
	ErrUnknownQuestion    = New("UNKNOWN_QUESTION", http.StatusBadRequest, "question is not part of the catalog")
	ErrAtStart            = New("AT_START", http.StatusConflict, "already at the first question")
	ErrAlreadyComplete    = New("ALREADY_COMPLETE", http.StatusConflict, "session is no longer in progress")
	ErrSessionNotComplete = New("SESSION_NOT_COMPLETE", http.StatusConflict, "session has not been completed")
	ErrStorageFailure     = New("STORAGE_FAILURE", http.StatusBadGateway, "failed to persist content")
	ErrNotificationFail   = New("NOTIFICATION_FAILURE", http.StatusBadGateway, "failed to send notification")
	ErrValidation         = New("VALIDATION_FAILED", http.StatusBadRequest, "validation failed")
	ErrTooManySessions    = New("TOO_MANY_SESSIONS", http.StatusServiceUnavailable, "session capacity reached")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// Validation builds a VALIDATION_FAILED error carrying the violated rule kind.
func Validation(kind, message string) *Error {
	return &Error{
		Code:    ErrValidation.Code,
		Kind:    kind,
		Message: message,
		Status:  ErrValidation.Status,
	}
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
