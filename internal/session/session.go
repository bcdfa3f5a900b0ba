// Package session implements the student-facing exam lifecycle: a small
// state machine over the access gate, the answer store, and the scoring
// engine. One session has exactly one mutating owner; the expiry watcher is
// the only other goroutine that touches it, so all state lives behind a
// mutex and finalization is guarded by a single authoritative flag rather
// than timer cancellation.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/examforge/exam-link-service/internal/gate"
	"github.com/examforge/exam-link-service/internal/models"
	"github.com/examforge/exam-link-service/internal/scoring"
)

type State string

const (
	StateLocked     State = "locked"
	StateInProgress State = "in_progress"
	StateExpired    State = "expired"
	StateSubmitted  State = "submitted"
)

// Terminal reports whether no further answer mutation is permitted.
func (s State) Terminal() bool {
	return s == StateExpired || s == StateSubmitted
}

var (
	// ErrSessionNotInProgress is returned for any mutation attempted while
	// the session is locked or already finalized.
	ErrSessionNotInProgress = errors.New("session is not in progress")

	// ErrQuestionNotFound is returned when an answer targets a question that
	// is not part of the exam.
	ErrQuestionNotFound = errors.New("question not found in exam")

	// ErrOptionNotFound is returned when a selection targets an option the
	// question does not have.
	ErrOptionNotFound = errors.New("option not found on question")
)

// FinalizeFunc receives the final score and the frozen answer set exactly
// once per session. Its failure does not roll the session back; the score is
// already computed and frozen when it runs.
type FinalizeFunc func(score models.Score, endReason models.EndReason, answers map[string]models.StudentAnswer)

// Config carries everything a session needs at creation time.
type Config struct {
	ID           string
	Params       models.ExamLinkParameters
	Password     string
	Questions    []models.Question
	AttemptsUsed int
	OnFinalized  FinalizeFunc
	Logger       *slog.Logger
	Clock        func() time.Time
}

type Session struct {
	mu sync.Mutex

	id           string
	params       models.ExamLinkParameters
	password     string
	questions    []models.Question
	questionByID map[string]*models.Question
	answers      *AnswerStore
	attemptsUsed int

	state     State
	score     *models.Score
	finalized bool
	done      chan struct{}

	onFinalized FinalizeFunc
	logger      *slog.Logger
	clock       func() time.Time
}

// New creates a session in the Locked state. Unlock performs the access gate
// evaluation and moves the session to InProgress; for exams without a
// password the caller unlocks immediately with an empty credential, so the
// session is effectively created in progress.
func New(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	byID := make(map[string]*models.Question, len(cfg.Questions))
	for i := range cfg.Questions {
		byID[cfg.Questions[i].ID] = &cfg.Questions[i]
	}

	return &Session{
		id:           cfg.ID,
		params:       cfg.Params,
		password:     cfg.Password,
		questions:    cfg.Questions,
		questionByID: byID,
		answers:      NewAnswerStore(cfg.Questions),
		attemptsUsed: cfg.AttemptsUsed,
		state:        StateLocked,
		done:         make(chan struct{}),
		onFinalized:  cfg.OnFinalized,
		logger:       logger,
		clock:        clock,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ExamID returns the exam this session belongs to.
func (s *Session) ExamID() string { return s.params.ExamID }

// Unlock runs the access gate. Granted moves a locked session to
// InProgress; DeniedExpired is terminal; other denials leave the session
// locked and surface the decision to the caller.
func (s *Session) Unlock(suppliedPassword string) gate.Decision {
	s.mu.Lock()

	if s.state != StateLocked {
		decision := gate.Granted
		if s.state == StateExpired {
			decision = gate.DeniedExpired
		}
		s.mu.Unlock()
		return decision
	}

	decision := gate.Evaluate(s.params, s.password, suppliedPassword, s.clock(), s.attemptsUsed)
	switch decision {
	case gate.Granted:
		s.state = StateInProgress
		s.logger.Info("exam session unlocked", "session_id", s.id, "exam_id", s.params.ExamID)
	case gate.DeniedExpired:
		// Nothing was answered yet, so there is nothing to auto-submit.
		s.state = StateExpired
		s.finalized = true
		close(s.done)
		s.logger.Info("exam session expired at entry", "session_id", s.id, "exam_id", s.params.ExamID)
	default:
		s.logger.Info("exam session unlock denied",
			"session_id", s.id,
			"exam_id", s.params.ExamID,
			"decision", decision)
	}

	s.mu.Unlock()
	return decision
}

// SetText records a free-text answer for a short-answer or essay question.
func (s *Session) SetText(questionID, text string) error {
	s.mu.Lock()
	if fire := s.expireIfDueLocked(s.clock()); fire != nil {
		s.mu.Unlock()
		fire()
		return ErrSessionNotInProgress
	}
	if s.state != StateInProgress {
		s.mu.Unlock()
		return ErrSessionNotInProgress
	}
	if _, ok := s.questionByID[questionID]; !ok {
		s.mu.Unlock()
		return ErrQuestionNotFound
	}

	s.answers.SetText(questionID, text)
	s.mu.Unlock()
	return nil
}

// ToggleOption records an option selection for a choice question.
func (s *Session) ToggleOption(questionID, optionID string) error {
	s.mu.Lock()
	if fire := s.expireIfDueLocked(s.clock()); fire != nil {
		s.mu.Unlock()
		fire()
		return ErrSessionNotInProgress
	}
	if s.state != StateInProgress {
		s.mu.Unlock()
		return ErrSessionNotInProgress
	}

	q, ok := s.questionByID[questionID]
	if !ok {
		s.mu.Unlock()
		return ErrQuestionNotFound
	}
	if !s.hasOption(q, optionID) {
		s.mu.Unlock()
		return ErrOptionNotFound
	}

	s.answers.ToggleOption(questionID, optionID, q.Type)
	s.mu.Unlock()
	return nil
}

// Answer returns the current answer for one question.
func (s *Session) Answer(questionID string) models.StudentAnswer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers.Get(questionID)
}

// Answers returns a copy of the full answer set.
func (s *Session) Answers() map[string]models.StudentAnswer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers.Snapshot()
}

// Submit finalizes the session, scoring the current answers. Submitting an
// already finalized session is a silent no-op that returns the frozen score;
// if expiry raced ahead of the explicit submit, the expiry outcome wins and
// its score is returned.
func (s *Session) Submit() (models.Score, error) {
	s.mu.Lock()

	if fire := s.expireIfDueLocked(s.clock()); fire != nil {
		score := *s.score
		s.mu.Unlock()
		fire()
		return score, nil
	}
	if s.finalized && s.score != nil {
		score := *s.score
		s.mu.Unlock()
		return score, nil
	}
	if s.state != StateInProgress {
		s.mu.Unlock()
		return models.Score{}, ErrSessionNotInProgress
	}

	fire := s.finalizeLocked(StateSubmitted, models.EndReasonSubmitted)
	score := *s.score
	s.mu.Unlock()
	fire()
	return score, nil
}

// Score returns the frozen score once the session has been graded.
func (s *Session) Score() (models.Score, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.score == nil {
		return models.Score{}, false
	}
	return *s.score, true
}

// TimeRemaining returns the whole seconds left before expiry, or -1 when the
// session has no expiry.
func (s *Session) TimeRemaining(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.params.ExpiresAt == nil {
		return -1
	}
	remaining := int(s.params.ExpiresAt.Sub(now).Seconds())
	if remaining < 0 || s.state.Terminal() {
		return 0
	}
	return remaining
}

// ExpireIfDue finalizes an in-progress session whose expiry has passed,
// auto-submitting whatever answers exist. It reports whether this call
// performed the transition.
func (s *Session) ExpireIfDue(now time.Time) bool {
	s.mu.Lock()
	fire := s.expireIfDueLocked(now)
	s.mu.Unlock()
	if fire == nil {
		return false
	}
	fire()
	return true
}

// WatchExpiry polls for expiry at the given interval until the session
// finalizes or ctx is cancelled. Run it on its own goroutine. A tick that
// lands after finalization is a no-op; the finalized flag, not timer
// cancellation, is what guarantees scoring runs once.
func (s *Session) WatchExpiry(ctx context.Context, interval time.Duration) {
	s.mu.Lock()
	hasExpiry := s.params.ExpiresAt != nil
	s.mu.Unlock()
	if !hasExpiry {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			if s.ExpireIfDue(s.clock()) {
				return
			}
		}
	}
}

// expireIfDueLocked performs the expiry transition under the lock and
// returns the callback to invoke after unlocking, or nil when nothing
// expired.
func (s *Session) expireIfDueLocked(now time.Time) func() {
	if s.state != StateInProgress || s.params.ExpiresAt == nil || now.Before(*s.params.ExpiresAt) {
		return nil
	}
	return s.finalizeLocked(StateExpired, models.EndReasonTimeout)
}

// finalizeLocked computes the score, freezes the answers, and moves the
// session to its terminal state. Callers must hold the lock and must invoke
// the returned func after releasing it; the func fires onFinalized exactly
// once.
func (s *Session) finalizeLocked(terminal State, reason models.EndReason) func() {
	// Question bank is always non-nil here, so scoring cannot fail.
	score, _ := scoring.Score(s.questions, s.answers.Snapshot())

	s.state = terminal
	s.score = &score
	s.finalized = true
	close(s.done)

	s.logger.Info("exam session finalized",
		"session_id", s.id,
		"exam_id", s.params.ExamID,
		"end_reason", reason,
		"correct", score.CorrectCount,
		"assessable", score.AssessableCount,
		"percentage", score.Percentage)

	cb := s.onFinalized
	answers := s.answers.Snapshot()
	return func() {
		if cb != nil {
			cb(score, reason, answers)
		}
	}
}

func (s *Session) hasOption(q *models.Question, optionID string) bool {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}
