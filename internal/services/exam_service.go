package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/examforge/exam-link-service/internal/events"
	"github.com/examforge/exam-link-service/internal/link"
	"github.com/examforge/exam-link-service/internal/models"
	"github.com/examforge/exam-link-service/internal/repositories"
	"github.com/examforge/exam-link-service/internal/utils"
	"github.com/google/uuid"
)

// ===== REQUEST / RESPONSE TYPES =====

type OptionInput struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}

type QuestionInput struct {
	Text        string        `json:"text" validate:"required"`
	Type        string        `json:"type" validate:"required,question_type"`
	Answer      *string       `json:"answer"`
	Instruction *string       `json:"instruction"`
	Options     []OptionInput `json:"options" validate:"dive"`
}

type CreateExamRequest struct {
	Title       string          `json:"title" validate:"required,min=1,max=200"`
	Description *string         `json:"description" validate:"omitempty,max=1000"`
	Questions   []QuestionInput `json:"questions" validate:"dive"`
}

type UpdateQuestionsRequest struct {
	Questions []QuestionInput `json:"questions" validate:"required,min=1,dive"`
}

// PublishExamRequest carries the access settings chosen at publish time. The
// expiry is given as a duration from now rather than an absolute timestamp.
type PublishExamRequest struct {
	Password     *string `json:"password" validate:"omitempty,min=1,max=100"`
	Duration     *int    `json:"duration" validate:"omitempty,min=1"`
	DurationUnit string  `json:"duration_unit" validate:"omitempty,duration_unit"`
	MaxAttempts  *int    `json:"max_attempts" validate:"omitempty,min=1,max=10"`
}

// ===== SERVICE =====

type ExamService interface {
	Create(ctx context.Context, req *CreateExamRequest, creatorID string) (*models.Exam, error)
	GetByID(ctx context.Context, id string, userID string) (*models.Exam, error)
	GetByCreator(ctx context.Context, creatorID string) ([]*models.Exam, error)
	UpdateQuestions(ctx context.Context, examID string, req *UpdateQuestionsRequest, userID string) (*models.Exam, error)
	Publish(ctx context.Context, examID string, req *PublishExamRequest, userID string) (*models.Exam, error)
	Delete(ctx context.Context, examID string, userID string) error
}

type examService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *utils.Validator
	baseURL   string
	now       func() time.Time
}

func NewExamService(
	repo repositories.Repository,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *utils.Validator,
	baseURL string,
) ExamService {
	return &examService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		baseURL:   baseURL,
		now:       time.Now,
	}
}

func (s *examService) Create(ctx context.Context, req *CreateExamRequest, creatorID string) (*models.Exam, error) {
	s.logger.Info("Creating exam", "creator_id", creatorID, "title", req.Title)

	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	exam := &models.Exam{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Status:      models.ExamStatusDraft,
		CreatedBy:   creatorID,
		Questions:   questions,
	}
	for i := range exam.Questions {
		exam.Questions[i].ExamID = exam.ID
	}

	if err := s.repo.Exam().Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("failed to create exam: %w", err)
	}

	s.logger.Info("Exam created successfully", "exam_id", exam.ID, "questions", len(exam.Questions))
	return exam, nil
}

func (s *examService) GetByID(ctx context.Context, id string, userID string) (*models.Exam, error) {
	exam, err := s.getOwnedExam(ctx, id, userID, "read")
	if err != nil {
		return nil, err
	}
	return exam, nil
}

func (s *examService) GetByCreator(ctx context.Context, creatorID string) ([]*models.Exam, error) {
	exams, err := s.repo.Exam().GetByCreator(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exams: %w", err)
	}
	return exams, nil
}

func (s *examService) UpdateQuestions(ctx context.Context, examID string, req *UpdateQuestionsRequest, userID string) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	exam, err := s.getOwnedExam(ctx, examID, userID, "update")
	if err != nil {
		return nil, err
	}
	if exam.IsPublished() {
		return nil, ErrExamNotEditable
	}

	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		questions[i].ExamID = exam.ID
	}

	if err := s.repo.Exam().ReplaceQuestions(ctx, exam.ID, questions); err != nil {
		return nil, fmt.Errorf("failed to replace questions: %w", err)
	}

	exam.Questions = questions
	s.logger.Info("Exam questions updated", "exam_id", exam.ID, "questions", len(questions))
	return exam, nil
}

func (s *examService) Publish(ctx context.Context, examID string, req *PublishExamRequest, userID string) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	exam, err := s.getOwnedExam(ctx, examID, userID, "publish")
	if err != nil {
		return nil, err
	}
	if len(exam.Questions) == 0 {
		return nil, ErrExamHasNoQuestion
	}

	exam.Status = models.ExamStatusPublished
	exam.Password = req.Password
	exam.MaxAttempts = req.MaxAttempts
	exam.ExpiresAt = nil
	if req.Duration != nil {
		expiresAt := s.now().Add(publishDuration(*req.Duration, req.DurationUnit)).UTC().Truncate(time.Second)
		exam.ExpiresAt = &expiresAt
	}

	shareLink := link.Encode(exam.LinkParameters(), s.baseURL)
	exam.ShareLink = &shareLink

	if err := s.repo.Exam().Update(ctx, exam); err != nil {
		return nil, fmt.Errorf("failed to publish exam: %w", err)
	}

	s.publishExamEvent(ctx, exam)

	s.logger.Info("Exam published", "exam_id", exam.ID, "share_link", shareLink)
	return exam, nil
}

func (s *examService) Delete(ctx context.Context, examID string, userID string) error {
	if _, err := s.getOwnedExam(ctx, examID, userID, "delete"); err != nil {
		return err
	}
	if err := s.repo.Exam().Delete(ctx, examID); err != nil {
		return fmt.Errorf("failed to delete exam: %w", err)
	}
	s.logger.Info("Exam deleted", "exam_id", examID)
	return nil
}

// ===== HELPERS =====

func (s *examService) getOwnedExam(ctx context.Context, examID, userID, action string) (*models.Exam, error) {
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

func (s *examService) publishExamEvent(ctx context.Context, exam *models.Exam) {
	event := &events.ExamEvent{
		ID:        uuid.NewString(),
		Type:      events.EventExamPublished,
		Timestamp: s.now().UTC(),
		Source:    "exam-link-service",
		Version:   "1.0",
		Data: events.ExamPublishedEvent{
			ExamID:      exam.ID,
			Title:       exam.Title,
			CreatorID:   exam.CreatedBy,
			ShareLink:   derefString(exam.ShareLink),
			ExpiresAt:   exam.ExpiresAt,
			MaxAttempts: exam.MaxAttempts,
		},
	}
	if err := s.publisher.PublishExamEvent(ctx, event); err != nil {
		// Publishing already happened; event delivery is best effort.
		s.logger.Error("failed to publish exam.published event", "exam_id", exam.ID, "error", err)
	}
}

// buildQuestions normalizes the raw question types and assigns ids and
// positions. Alias types from older extraction prompts are collapsed here;
// nothing downstream sees them.
func buildQuestions(inputs []QuestionInput) ([]models.Question, error) {
	questions := make([]models.Question, 0, len(inputs))
	for i, in := range inputs {
		qt, err := models.NormalizeQuestionType(in.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", ErrValidationFailed, i+1, err)
		}

		q := models.Question{
			ID:          uuid.NewString(),
			Position:    i + 1,
			Text:        in.Text,
			Type:        qt,
			Answer:      in.Answer,
			Instruction: in.Instruction,
		}
		for j, opt := range in.Options {
			q.Options = append(q.Options, models.QuestionOption{
				ID:         uuid.NewString(),
				QuestionID: q.ID,
				Position:   j + 1,
				Text:       opt.Text,
				IsCorrect:  opt.IsCorrect,
			})
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func publishDuration(amount int, unit string) time.Duration {
	if unit == "hours" {
		return time.Duration(amount) * time.Hour
	}
	return time.Duration(amount) * time.Minute
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
