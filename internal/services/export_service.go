package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/examforge/exam-link-service/internal/models"
	"github.com/examforge/exam-link-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

// ExportService lists and exports the results of a published exam for its
// creator.
type ExportService interface {
	ListSubmissions(ctx context.Context, examID string, userID string) ([]*models.Submission, error)
	ExportResults(ctx context.Context, examID string, userID string) ([]byte, error)
}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) ListSubmissions(ctx context.Context, examID string, userID string) ([]*models.Submission, error) {
	if _, err := s.ownedExam(ctx, examID, userID, "list_results"); err != nil {
		return nil, err
	}

	submissions, err := s.repo.Submission().GetByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}

func (s *exportService) ExportResults(ctx context.Context, examID string, userID string) ([]byte, error) {
	exam, err := s.ownedExam(ctx, examID, userID, "export_results")
	if err != nil {
		return nil, err
	}

	submissions, err := s.repo.Submission().GetByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submissions: %w", err)
	}

	f := excelize.NewFile()
	sheetName := "Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Student ID", "Submitted At", "End Reason",
		"Correct", "Assessable", "Percentage",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, submission := range submissions {
		row := []interface{}{
			submission.StudentID,
			submission.SubmittedAt.Format("2006-01-02 15:04:05"),
			string(submission.EndReason),
			submission.CorrectCount,
			submission.AssessableCount,
			submission.Percentage,
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported exam results", "exam_id", exam.ID, "submissions", len(submissions))
	return buf.Bytes(), nil
}

func (s *exportService) ownedExam(ctx context.Context, examID, userID, action string) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByID(ctx, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	if exam.CreatedBy != userID {
		return nil, NewPermissionError(userID, examID, action, "not the exam creator")
	}
	return exam, nil
}
