package services

import (
	"errors"
	"fmt"

	"github.com/examforge/exam-link-service/internal/gate"
)

var (
	// Generic errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")

	// Exam specific errors
	ErrExamNotFound      = errors.New("exam not found")
	ErrExamAccessDenied  = errors.New("access denied to exam")
	ErrExamNotPublished  = errors.New("exam is not published")
	ErrExamNotEditable   = errors.New("exam cannot be edited after publishing")
	ErrExamHasNoQuestion = errors.New("exam has no questions to publish")

	// Session specific errors
	ErrSessionNotFound = errors.New("exam session not found")

	// Extraction specific errors
	ErrExtractionUnavailable = errors.New("question extraction is not configured")
	ErrExtractionMalformed   = errors.New("extraction response is not valid question JSON")
)

// AccessDeniedError carries the gate decision so handlers can surface the
// decision-specific message without re-deriving it.
type AccessDeniedError struct {
	Decision gate.Decision
}

func (e *AccessDeniedError) Error() string {
	return e.Decision.Message()
}

func NewAccessDeniedError(decision gate.Decision) *AccessDeniedError {
	return &AccessDeniedError{Decision: decision}
}

// PermissionError reports a creator acting on an exam they do not own.
type PermissionError struct {
	UserID string `json:"user_id"`
	ExamID string `json:"exam_id"`
	Action string `json:"action"`
	Reason string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s exam %s - %s",
		pe.UserID, pe.Action, pe.ExamID, pe.Reason)
}

func NewPermissionError(userID, examID, action, reason string) *PermissionError {
	return &PermissionError{
		UserID: userID,
		ExamID: examID,
		Action: action,
		Reason: reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrExamNotFound) ||
		errors.Is(err, ErrSessionNotFound)
}

// IsAccessDenied checks if error represents a denied gate decision or a
// creator permission failure
func IsAccessDenied(err error) bool {
	if errors.Is(err, ErrExamAccessDenied) {
		return true
	}
	var ade *AccessDeniedError
	if errors.As(err, &ade) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsConflict checks if error represents a state that rejects the operation
func IsConflict(err error) bool {
	return errors.Is(err, ErrExamNotEditable) ||
		errors.Is(err, ErrExamNotPublished) ||
		errors.Is(err, ErrExamHasNoQuestion)
}
