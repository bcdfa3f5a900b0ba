package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/examforge/exam-link-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func seedExamWithSubmissions(t *testing.T, repo *fakeRepository) *models.Exam {
	t.Helper()
	ctx := context.Background()

	exam := &models.Exam{
		ID:        "exam-1",
		Title:     "Geography Final",
		Status:    models.ExamStatusPublished,
		CreatedBy: "teacher-1",
	}
	require.NoError(t, repo.Exam().Create(ctx, exam))

	submittedAt := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	require.NoError(t, repo.Submission().Create(ctx, &models.Submission{
		ID: "sub-1", ExamID: exam.ID, StudentID: "student-1",
		AssessableCount: 2, CorrectCount: 2, Percentage: 100,
		EndReason: models.EndReasonSubmitted, SubmittedAt: submittedAt,
	}))
	require.NoError(t, repo.Submission().Create(ctx, &models.Submission{
		ID: "sub-2", ExamID: exam.ID, StudentID: "student-2",
		AssessableCount: 2, CorrectCount: 1, Percentage: 50,
		EndReason: models.EndReasonTimeout, SubmittedAt: submittedAt.Add(time.Minute),
	}))
	return exam
}

func TestExportService_ListSubmissions(t *testing.T) {
	repo := newFakeRepository()
	exam := seedExamWithSubmissions(t, repo)
	svc := NewExportService(repo, testLogger())

	subs, err := svc.ListSubmissions(context.Background(), exam.ID, "teacher-1")
	require.NoError(t, err)
	assert.Len(t, subs, 2)

	_, err = svc.ListSubmissions(context.Background(), exam.ID, "teacher-2")
	assert.True(t, IsAccessDenied(err))

	_, err = svc.ListSubmissions(context.Background(), "missing", "teacher-1")
	assert.ErrorIs(t, err, ErrExamNotFound)
}

func TestExportService_ExportResults(t *testing.T) {
	repo := newFakeRepository()
	exam := seedExamWithSubmissions(t, repo)
	svc := NewExportService(repo, testLogger())

	data, err := svc.ExportResults(context.Background(), exam.ID, "teacher-1")
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Results", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Student ID", header)

	student, err := f.GetCellValue("Results", "A2")
	require.NoError(t, err)
	assert.Equal(t, "student-1", student)

	percentage, err := f.GetCellValue("Results", "F3")
	require.NoError(t, err)
	assert.Equal(t, "50", percentage)

	reason, err := f.GetCellValue("Results", "C3")
	require.NoError(t, err)
	assert.Equal(t, "timeout", reason)
}
