package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/examforge/exam-link-service/internal/models"
	"github.com/examforge/exam-link-service/internal/repositories"
	"gorm.io/gorm"
)

type ExamPostgreSQL struct {
	db *gorm.DB
}

func NewExamPostgreSQL(db *gorm.DB) repositories.ExamRepository {
	return &ExamPostgreSQL{db: db}
}

func (r *ExamPostgreSQL) Create(ctx context.Context, exam *models.Exam) error {
	if err := r.db.WithContext(ctx).Create(exam).Error; err != nil {
		return fmt.Errorf("failed to create exam: %w", err)
	}
	return nil
}

func (r *ExamPostgreSQL) GetByID(ctx context.Context, id string) (*models.Exam, error) {
	var exam models.Exam
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&exam, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	return &exam, nil
}

func (r *ExamPostgreSQL) Update(ctx context.Context, exam *models.Exam) error {
	if err := r.db.WithContext(ctx).Save(exam).Error; err != nil {
		return fmt.Errorf("failed to update exam: %w", err)
	}
	return nil
}

// ReplaceQuestions swaps the full question set inside one transaction so a
// review edit can never leave an exam half-updated.
func (r *ExamPostgreSQL) ReplaceQuestions(ctx context.Context, examID string, questions []models.Question) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id IN (?)",
			tx.Model(&models.Question{}).Select("id").Where("exam_id = ?", examID),
		).Delete(&models.QuestionOption{}).Error; err != nil {
			return fmt.Errorf("failed to delete old options: %w", err)
		}
		if err := tx.Where("exam_id = ?", examID).Delete(&models.Question{}).Error; err != nil {
			return fmt.Errorf("failed to delete old questions: %w", err)
		}
		for i := range questions {
			questions[i].ExamID = examID
			questions[i].Position = i + 1
		}
		if len(questions) > 0 {
			if err := tx.Create(&questions).Error; err != nil {
				return fmt.Errorf("failed to create questions: %w", err)
			}
		}
		return nil
	})
}

func (r *ExamPostgreSQL) GetByCreator(ctx context.Context, creatorID string) ([]*models.Exam, error) {
	var exams []*models.Exam
	err := r.db.WithContext(ctx).
		Where("created_by = ?", creatorID).
		Order("created_at DESC").
		Find(&exams).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list exams by creator: %w", err)
	}
	return exams, nil
}

func (r *ExamPostgreSQL) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Exam{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete exam: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
