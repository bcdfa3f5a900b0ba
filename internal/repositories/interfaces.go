package repositories

import (
	"context"
	"errors"

	"github.com/examforge/exam-link-service/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is the repository-level not-found sentinel; services translate
// it into their own error vocabulary.
var ErrNotFound = errors.New("record not found")

// IsNotFoundError checks if error represents a "not found" condition,
// covering both our sentinel and gorm's.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

type ExamRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	// GetByID loads the exam with its questions and options, ordered by
	// position.
	GetByID(ctx context.Context, id string) (*models.Exam, error)
	Update(ctx context.Context, exam *models.Exam) error
	// ReplaceQuestions swaps the full question set of a draft exam.
	ReplaceQuestions(ctx context.Context, examID string, questions []models.Question) error
	GetByCreator(ctx context.Context, creatorID string) ([]*models.Exam, error)
	Delete(ctx context.Context, id string) error
}

type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByExam(ctx context.Context, examID string) ([]*models.Submission, error)
	// CountByStudent returns how many submissions a student has made for an
	// exam; used to seed the attempt counter after a cache flush.
	CountByStudent(ctx context.Context, examID, studentID string) (int, error)
}

// Repository bundles the per-aggregate repositories behind one handle.
type Repository interface {
	Exam() ExamRepository
	Submission() SubmissionRepository
	Ping(ctx context.Context) error
	Close() error
}
