package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/examforge/exam-link-service/internal/cache"
	"github.com/examforge/exam-link-service/internal/events"
	"github.com/examforge/exam-link-service/internal/link"
	"github.com/examforge/exam-link-service/internal/models"
	"github.com/examforge/exam-link-service/internal/repositories"
	"github.com/examforge/exam-link-service/internal/session"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// expiryPollInterval is how often running sessions are checked for timeout.
const expiryPollInterval = time.Second

// attemptCounterTTL bounds how long an attempt counter outlives its exam.
const attemptCounterTTL = 30 * 24 * time.Hour

// ===== REQUEST / RESPONSE TYPES =====

type StartExamRequest struct {
	Link      string `json:"link" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
	Password  string `json:"password"`
}

// OptionView is a question option as shown to the student. It never carries
// the correctness flag.
type OptionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionView is a question as shown to the student: no canonical answer, no
// correctness flags.
type QuestionView struct {
	ID          string              `json:"id"`
	Position    int                 `json:"position"`
	Text        string              `json:"text"`
	Type        models.QuestionType `json:"type"`
	Instruction *string             `json:"instruction,omitempty"`
	Options     []OptionView        `json:"options,omitempty"`
}

type StartExamResponse struct {
	SessionID string         `json:"session_id"`
	ExamID    string         `json:"exam_id"`
	Title     string         `json:"title"`
	Questions []QuestionView `json:"questions"`

	// TimeRemaining is whole seconds until expiry, -1 when the exam never
	// expires.
	TimeRemaining int `json:"time_remaining"`
}

type SubmitResponse struct {
	Score     models.Score  `json:"score"`
	State     session.State `json:"state"`
	EndReason string        `json:"end_reason"`
}

// ===== SERVICE =====

// TakerService runs the student side of an exam. The access gate and attempt
// counting are evaluated here, server side; the link parameters a student
// presents are only used to locate the exam, never trusted for access
// decisions.
type TakerService interface {
	Start(ctx context.Context, req *StartExamRequest) (*StartExamResponse, error)
	SetTextAnswer(ctx context.Context, sessionID, questionID, text string) error
	ToggleOption(ctx context.Context, sessionID, questionID, optionID string) error
	Answers(ctx context.Context, sessionID string) (map[string]models.StudentAnswer, error)
	Submit(ctx context.Context, sessionID string) (*SubmitResponse, error)
	TimeRemaining(ctx context.Context, sessionID string) (int, error)
	Close() error
}

type takerService struct {
	repo      repositories.Repository
	attempts  cache.AttemptCounter
	publisher events.EventPublisher
	registry  *session.Registry
	logger    *slog.Logger
	now       func() time.Time

	watchCtx    context.Context
	watchCancel context.CancelFunc
}

func NewTakerService(
	repo repositories.Repository,
	attempts cache.AttemptCounter,
	publisher events.EventPublisher,
	logger *slog.Logger,
) TakerService {
	ctx, cancel := context.WithCancel(context.Background())
	return &takerService{
		repo:        repo,
		attempts:    attempts,
		publisher:   publisher,
		registry:    session.NewRegistry(),
		logger:      logger,
		now:         time.Now,
		watchCtx:    ctx,
		watchCancel: cancel,
	}
}

func (s *takerService) Start(ctx context.Context, req *StartExamRequest) (*StartExamResponse, error) {
	params, err := link.DecodeURL(req.Link)
	if err != nil {
		return nil, err
	}

	exam, err := s.repo.Exam().GetByID(ctx, params.ExamID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to load exam: %w", err)
	}
	if !exam.IsPublished() {
		return nil, ErrExamNotPublished
	}

	// The stored exam row is authoritative; the link may be stale or edited.
	serverParams := exam.LinkParameters()

	attemptsUsed, err := s.attempts.Count(ctx, exam.ID, req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("failed to read attempt count: %w", err)
	}

	sessionID := uuid.NewString()
	sess := session.New(session.Config{
		ID:           sessionID,
		Params:       serverParams,
		Password:     derefString(exam.Password),
		Questions:    exam.Questions,
		AttemptsUsed: attemptsUsed,
		OnFinalized:  s.finalizeFunc(sessionID, exam.ID, req.StudentID),
		Logger:       s.logger,
		Clock:        s.now,
	})

	decision := sess.Unlock(req.Password)
	if !decision.Allowed() {
		s.logger.Info("exam start denied",
			"exam_id", exam.ID,
			"student_id", req.StudentID,
			"decision", decision)
		return nil, NewAccessDeniedError(decision)
	}

	// Counted after the gate so a denied start does not burn an attempt. The
	// increment is atomic; two racing starts both increment before either can
	// pass the limit on its next attempt.
	if _, err := s.attempts.Increment(ctx, exam.ID, req.StudentID, attemptCounterTTL); err != nil {
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}

	// Finalized sessions stay registered so a repeated submit can return the
	// frozen score.
	s.registry.Add(sess)
	go sess.WatchExpiry(s.watchCtx, expiryPollInterval)

	s.logger.Info("exam session started",
		"session_id", sessionID,
		"exam_id", exam.ID,
		"student_id", req.StudentID,
		"attempt", attemptsUsed+1)

	return &StartExamResponse{
		SessionID:     sessionID,
		ExamID:        exam.ID,
		Title:         exam.Title,
		Questions:     sanitizeQuestions(exam.Questions),
		TimeRemaining: sess.TimeRemaining(s.now()),
	}, nil
}

func (s *takerService) SetTextAnswer(ctx context.Context, sessionID, questionID, text string) error {
	sess, ok := s.registry.Get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}
	return sess.SetText(questionID, text)
}

func (s *takerService) ToggleOption(ctx context.Context, sessionID, questionID, optionID string) error {
	sess, ok := s.registry.Get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}
	return sess.ToggleOption(questionID, optionID)
}

func (s *takerService) Answers(ctx context.Context, sessionID string) (map[string]models.StudentAnswer, error) {
	sess, ok := s.registry.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess.Answers(), nil
}

func (s *takerService) Submit(ctx context.Context, sessionID string) (*SubmitResponse, error) {
	sess, ok := s.registry.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	score, err := sess.Submit()
	if err != nil {
		return nil, err
	}

	endReason := models.EndReasonSubmitted
	if sess.State() == session.StateExpired {
		endReason = models.EndReasonTimeout
	}

	return &SubmitResponse{
		Score:     score,
		State:     sess.State(),
		EndReason: string(endReason),
	}, nil
}

func (s *takerService) TimeRemaining(ctx context.Context, sessionID string) (int, error) {
	sess, ok := s.registry.Get(sessionID)
	if !ok {
		return 0, ErrSessionNotFound
	}
	return sess.TimeRemaining(s.now()), nil
}

// Close stops every expiry watcher. Running sessions stay in the registry and
// still finalize on explicit submit.
func (s *takerService) Close() error {
	s.watchCancel()
	return nil
}

// finalizeFunc builds the per-session finalize callback: persist the
// submission, then publish the result events. It runs exactly once per
// session, off the session lock.
func (s *takerService) finalizeFunc(sessionID, examID, studentID string) session.FinalizeFunc {
	return func(score models.Score, endReason models.EndReason, answers map[string]models.StudentAnswer) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		answersJSON, err := json.Marshal(answers)
		if err != nil {
			s.logger.Error("failed to marshal submission answers",
				"session_id", sessionID, "error", err)
			return
		}

		submission := &models.Submission{
			ID:              sessionID,
			ExamID:          examID,
			StudentID:       studentID,
			Answers:         datatypes.JSON(answersJSON),
			AssessableCount: score.AssessableCount,
			CorrectCount:    score.CorrectCount,
			Percentage:      score.Percentage,
			EndReason:       endReason,
			SubmittedAt:     s.now().UTC(),
		}
		if err := s.repo.Submission().Create(ctx, submission); err != nil {
			s.logger.Error("failed to persist submission",
				"session_id", sessionID, "exam_id", examID, "error", err)
			return
		}

		s.publishFinalizedEvents(ctx, submission)
	}
}

func (s *takerService) publishFinalizedEvents(ctx context.Context, submission *models.Submission) {
	event := &events.ExamEvent{
		ID:        uuid.NewString(),
		Type:      events.EventSubmissionFinalized,
		Timestamp: s.now().UTC(),
		Source:    "exam-link-service",
		Version:   "1.0",
		Data: events.SubmissionFinalizedEvent{
			SubmissionID:    submission.ID,
			ExamID:          submission.ExamID,
			StudentID:       submission.StudentID,
			EndReason:       submission.EndReason,
			AssessableCount: submission.AssessableCount,
			CorrectCount:    submission.CorrectCount,
			Percentage:      submission.Percentage,
			SubmittedAt:     submission.SubmittedAt,
		},
	}
	if err := s.publisher.PublishExamEvent(ctx, event); err != nil {
		s.logger.Error("failed to publish submission.finalized event",
			"submission_id", submission.ID, "error", err)
	}

	if submission.EndReason != models.EndReasonTimeout {
		return
	}
	expired := &events.ExamEvent{
		ID:        uuid.NewString(),
		Type:      events.EventSessionExpired,
		Timestamp: s.now().UTC(),
		Source:    "exam-link-service",
		Version:   "1.0",
		Data: events.SessionExpiredEvent{
			SessionID: submission.ID,
			ExamID:    submission.ExamID,
			StudentID: submission.StudentID,
			ExpiredAt: submission.SubmittedAt,
		},
	}
	if err := s.publisher.PublishExamEvent(ctx, expired); err != nil {
		s.logger.Error("failed to publish session.expired event",
			"submission_id", submission.ID, "error", err)
	}
}

// sanitizeQuestions strips grading data before questions leave the server.
func sanitizeQuestions(questions []models.Question) []QuestionView {
	views := make([]QuestionView, 0, len(questions))
	for _, q := range questions {
		view := QuestionView{
			ID:          q.ID,
			Position:    q.Position,
			Text:        q.Text,
			Type:        q.Type,
			Instruction: q.Instruction,
		}
		for _, opt := range q.Options {
			view.Options = append(view.Options, OptionView{ID: opt.ID, Text: opt.Text})
		}
		views = append(views, view)
	}
	return views
}
