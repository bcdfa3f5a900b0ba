package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/examforge/exam-link-service/internal/models"
	"github.com/examforge/exam-link-service/internal/repositories"
)

// fakeRepository is an in-memory repositories.Repository for service tests.
type fakeRepository struct {
	exams       *fakeExamRepository
	submissions *fakeSubmissionRepository
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		exams:       &fakeExamRepository{byID: make(map[string]*models.Exam)},
		submissions: &fakeSubmissionRepository{},
	}
}

func (r *fakeRepository) Exam() repositories.ExamRepository             { return r.exams }
func (r *fakeRepository) Submission() repositories.SubmissionRepository { return r.submissions }
func (r *fakeRepository) Ping(ctx context.Context) error                { return nil }
func (r *fakeRepository) Close() error                                  { return nil }

type fakeExamRepository struct {
	mu   sync.Mutex
	byID map[string]*models.Exam
}

func (r *fakeExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *exam
	r.byID[exam.ID] = &cp
	return nil
}

func (r *fakeExamRepository) GetByID(ctx context.Context, id string) (*models.Exam, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exam, ok := r.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *exam
	return &cp, nil
}

func (r *fakeExamRepository) Update(ctx context.Context, exam *models.Exam) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[exam.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *exam
	r.byID[exam.ID] = &cp
	return nil
}

func (r *fakeExamRepository) ReplaceQuestions(ctx context.Context, examID string, questions []models.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	exam, ok := r.byID[examID]
	if !ok {
		return repositories.ErrNotFound
	}
	exam.Questions = questions
	return nil
}

func (r *fakeExamRepository) GetByCreator(ctx context.Context, creatorID string) ([]*models.Exam, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Exam
	for _, exam := range r.byID {
		if exam.CreatedBy == creatorID {
			cp := *exam
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeExamRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type fakeSubmissionRepository struct {
	mu          sync.Mutex
	submissions []*models.Submission
}

func (r *fakeSubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *submission
	r.submissions = append(r.submissions, &cp)
	return nil
}

func (r *fakeSubmissionRepository) GetByExam(ctx context.Context, examID string) ([]*models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Submission
	for _, sub := range r.submissions {
		if sub.ExamID == examID {
			cp := *sub
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeSubmissionRepository) CountByStudent(ctx context.Context, examID, studentID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, sub := range r.submissions {
		if sub.ExamID == examID && sub.StudentID == studentID {
			count++
		}
	}
	return count, nil
}

func (r *fakeSubmissionRepository) all() []*models.Submission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.Submission(nil), r.submissions...)
}

func testLogger() *slog.Logger {
	return slog.Default()
}
