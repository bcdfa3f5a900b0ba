package events

import (
	"time"

	"github.com/examforge/exam-link-service/internal/models"
)

// EventType represents the kinds of exam lifecycle events the service emits.
type EventType string

const (
	EventExamPublished       EventType = "exam.published"
	EventSubmissionFinalized EventType = "submission.finalized"
	EventSessionExpired      EventType = "session.expired"
)

// ExamEvent is the envelope shared by all published events.
type ExamEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type ExamPublishedEvent struct {
	ExamID      string     `json:"exam_id"`
	Title       string     `json:"title"`
	CreatorID   string     `json:"creator_id"`
	ShareLink   string     `json:"share_link"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	MaxAttempts *int       `json:"max_attempts,omitempty"`
}

type SubmissionFinalizedEvent struct {
	SubmissionID    string           `json:"submission_id"`
	ExamID          string           `json:"exam_id"`
	StudentID       string           `json:"student_id"`
	EndReason       models.EndReason `json:"end_reason"`
	AssessableCount int              `json:"assessable_count"`
	CorrectCount    int              `json:"correct_count"`
	Percentage      int              `json:"percentage"`
	SubmittedAt     time.Time        `json:"submitted_at"`
}

type SessionExpiredEvent struct {
	SessionID string    `json:"session_id"`
	ExamID    string    `json:"exam_id"`
	StudentID string    `json:"student_id"`
	ExpiredAt time.Time `json:"expired_at"`
}
