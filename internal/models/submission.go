package models

import (
	"time"

	"gorm.io/datatypes"
)

// StudentAnswer is the evolving answer for one question during an attempt.
// Free-text types use AnswerText; choice types use SelectedOptionIDs, which
// preserves selection order and never holds duplicates.
type StudentAnswer struct {
	QuestionID        string   `json:"question_id"`
	AnswerText        string   `json:"answer_text,omitempty"`
	SelectedOptionIDs []string `json:"selected_option_ids,omitempty"`
}

// Score is the result of grading a finalized answer set. Essays and
// short-answer questions without a canonical answer are excluded from
// AssessableCount.
type Score struct {
	AssessableCount int `json:"assessable_count"`
	CorrectCount    int `json:"correct_count"`
	Percentage      int `json:"percentage"`
}

type EndReason string

const (
	EndReasonSubmitted EndReason = "submitted"
	EndReasonTimeout   EndReason = "timeout"
)

// Submission is the persisted record of a finalized exam session.
type Submission struct {
	ID        string `json:"id" gorm:"primaryKey;size:36"`
	ExamID    string `json:"exam_id" gorm:"not null;size:36;index"`
	StudentID string `json:"student_id" gorm:"not null;size:100;index"`

	// Answer set as graded, keyed by question id.
	Answers datatypes.JSON `json:"answers" gorm:"type:jsonb"`

	AssessableCount int       `json:"assessable_count" gorm:"not null"`
	CorrectCount    int       `json:"correct_count" gorm:"not null"`
	Percentage      int       `json:"percentage" gorm:"not null"`
	EndReason       EndReason `json:"end_reason" gorm:"not null;size:20"`
	SubmittedAt     time.Time `json:"submitted_at" gorm:"not null;index"`
}

func (Submission) TableName() string {
	return "exam_submissions"
}
