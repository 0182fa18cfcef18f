package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidationFailed    = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrDuplicateSubmission = errors.New("submission already exists for this exam")
	ErrInsufficientPool    = errors.New("not enough questions found")

	ErrExamNotFound       = fmt.Errorf("exam %w", ErrNotFound)
	ErrSubmissionNotFound = fmt.Errorf("submission %w", ErrNotFound)
	ErrQuestionNotFound   = fmt.Errorf("question %w", ErrNotFound)
	ErrNoSubmissions      = fmt.Errorf("no submissions found: %w", ErrNotFound)
)

// ValidationError represents a rejected input field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

func NewValidationError(field, message string, value any) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// InsufficientPoolError is returned when automatic selection finds fewer
// questions than requested. Nothing is persisted in that case.
type InsufficientPoolError struct {
	Available int `json:"available"`
	Requested int `json:"requested"`
}

func (e *InsufficientPoolError) Error() string {
	return fmt.Sprintf("not enough questions found: found %d, requested %d", e.Available, e.Requested)
}

func (e *InsufficientPoolError) Unwrap() error {
	return ErrInsufficientPool
}

type PermissionError struct {
	UserID   string `json:"user_id"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
	Reason   string `json:"reason"`
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s: %s", e.UserID, e.Action, e.Resource, e.Reason)
}

func (e *PermissionError) Unwrap() error {
	return ErrPermissionDenied
}

func NewPermissionError(userID, resource, action, reason string) *PermissionError {
	return &PermissionError{UserID: userID, Resource: resource, Action: action, Reason: reason}
}

// InternalError wraps persistence or infrastructure failures
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

func NewInternalError(op string, err error) *InternalError {
	return &InternalError{Op: op, Err: err}
}

// missingIDsError names every requested question id absent from the store
func missingIDsError(missing []uint) *ValidationError {
	parts := make([]string, len(missing))
	for i, id := range missing {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return NewValidationError("question_ids", "questions not found: "+strings.Join(parts, ", "), missing)
}
