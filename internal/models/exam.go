package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "draft"
	ExamStatusPublished ExamStatus = "published"
)

type QuestionType string

const (
	SingleChoice QuestionType = "single_choice"
	MultiChoice  QuestionType = "multi_choice"
	ShortAnswer  QuestionType = "short_answer"
	Essay        QuestionType = "essay"
)

// NormalizeQuestionType collapses the legacy aliases produced by older
// extraction prompts ("MCQ" for single choice, "multiple-choice" for multi
// choice) into the canonical enum. Normalization happens once at ingestion;
// nothing downstream of the models package ever sees an alias.
func NormalizeQuestionType(raw string) (QuestionType, error) {
	switch strings.TrimSpace(raw) {
	case "MCQ", "mcq", string(SingleChoice):
		return SingleChoice, nil
	case "multiple-choice", string(MultiChoice):
		return MultiChoice, nil
	case "short-answer", string(ShortAnswer):
		return ShortAnswer, nil
	case string(Essay):
		return Essay, nil
	default:
		return "", fmt.Errorf("unknown question type %q", raw)
	}
}

// IsChoice reports whether the type selects from a fixed option list.
func (t QuestionType) IsChoice() bool {
	return t == SingleChoice || t == MultiChoice
}

type Exam struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	Title       string     `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string    `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Status      ExamStatus `json:"status" gorm:"default:draft;index" validate:"omitempty,oneof=draft published"`

	// Publish-time access settings. Password lives only on the server row;
	// the share link carries just the secure flag.
	Password    *string    `json:"-" gorm:"size:100"`
	ExpiresAt   *time.Time `json:"expires_at"`
	MaxAttempts *int       `json:"max_attempts" validate:"omitempty,min=1,max=10"`
	ShareLink   *string    `json:"share_link" gorm:"type:text"`

	CreatedBy string         `json:"created_by" gorm:"not null;size:100;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Questions []Question `json:"questions" gorm:"foreignKey:ExamID;constraint:OnDelete:CASCADE"`
}

func (Exam) TableName() string {
	return "exams"
}

// IsPublished reports whether students may be admitted to the exam.
func (e *Exam) IsPublished() bool {
	return e.Status == ExamStatusPublished
}

// LinkParameters derives the shareable link parameters from a published exam.
func (e *Exam) LinkParameters() ExamLinkParameters {
	return ExamLinkParameters{
		ExamID:            e.ID,
		Title:             e.Title,
		PasswordProtected: e.Password != nil && *e.Password != "",
		ExpiresAt:         e.ExpiresAt,
		MaxAttempts:       e.MaxAttempts,
	}
}

type Question struct {
	ID          string       `json:"id" gorm:"primaryKey;size:36"`
	ExamID      string       `json:"exam_id" gorm:"not null;size:36;index"`
	Position    int          `json:"position" gorm:"not null"`
	Text        string       `json:"text" gorm:"type:text;not null" validate:"required"`
	Type        QuestionType `json:"type" gorm:"not null;size:20" validate:"required,question_type"`
	Answer      *string      `json:"answer" gorm:"type:text"`
	Instruction *string      `json:"instruction" gorm:"type:text"`

	Options []QuestionOption `json:"options" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

func (Question) TableName() string {
	return "exam_questions"
}

// CorrectOptionIDs returns the ids of every option flagged correct, in
// option order.
func (q *Question) CorrectOptionIDs() []string {
	var ids []string
	for _, opt := range q.Options {
		if opt.IsCorrect {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

type QuestionOption struct {
	ID         string `json:"id" gorm:"primaryKey;size:36"`
	QuestionID string `json:"question_id" gorm:"not null;size:36;index"`
	Position   int    `json:"position" gorm:"not null"`
	Text       string `json:"text" gorm:"type:text;not null" validate:"required"`
	IsCorrect  bool   `json:"is_correct" gorm:"not null;default:false"`
}

func (QuestionOption) TableName() string {
	return "question_options"
}
