package postgres

import (
	"context"
	"fmt"

	"github.com/examforge/exam-link-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	db         *gorm.DB
	exam       repositories.ExamRepository
	submission repositories.SubmissionRepository
}

// NewRepository bundles the postgres-backed repositories behind the
// Repository interface.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:         db,
		exam:       NewExamPostgreSQL(db),
		submission: NewSubmissionPostgreSQL(db),
	}
}

func (r *repository) Exam() repositories.ExamRepository             { return r.exam }
func (r *repository) Submission() repositories.SubmissionRepository { return r.submission }

func (r *repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (r *repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}
