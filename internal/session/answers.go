package session

import "github.com/examforge/exam-link-service/internal/models"

// AnswerStore holds the evolving answer set of one student, keyed by
// question id. It is not safe for concurrent use on its own; the owning
// Session serializes access.
type AnswerStore struct {
	answers map[string]*models.StudentAnswer
}

// NewAnswerStore pre-creates an empty answer for every question, mirroring
// how a session initializes before the student touches anything.
func NewAnswerStore(questions []models.Question) *AnswerStore {
	answers := make(map[string]*models.StudentAnswer, len(questions))
	for i := range questions {
		answers[questions[i].ID] = &models.StudentAnswer{QuestionID: questions[i].ID}
	}
	return &AnswerStore{answers: answers}
}

// SetText replaces the free-text answer for a short-answer or essay
// question.
func (s *AnswerStore) SetText(questionID, text string) {
	s.ensure(questionID).AnswerText = text
}

// ToggleOption updates the selection for a choice question. Single choice
// replaces the entire selection with the toggled option, so at most one
// option is ever selected. Multi choice flips membership, preserving the
// insertion order of the remaining selections.
func (s *AnswerStore) ToggleOption(questionID, optionID string, qt models.QuestionType) {
	ans := s.ensure(questionID)

	if qt == models.SingleChoice {
		ans.SelectedOptionIDs = []string{optionID}
		return
	}

	for i, id := range ans.SelectedOptionIDs {
		if id == optionID {
			ans.SelectedOptionIDs = append(ans.SelectedOptionIDs[:i], ans.SelectedOptionIDs[i+1:]...)
			return
		}
	}
	ans.SelectedOptionIDs = append(ans.SelectedOptionIDs, optionID)
}

// Get returns the current answer, or an empty answer for an untouched
// question.
func (s *AnswerStore) Get(questionID string) models.StudentAnswer {
	if ans, ok := s.answers[questionID]; ok {
		return *ans
	}
	return models.StudentAnswer{QuestionID: questionID}
}

// Snapshot returns a deep copy of the answer set, safe to hand to callers
// after the store has frozen.
func (s *AnswerStore) Snapshot() map[string]models.StudentAnswer {
	out := make(map[string]models.StudentAnswer, len(s.answers))
	for id, ans := range s.answers {
		copied := *ans
		copied.SelectedOptionIDs = append([]string(nil), ans.SelectedOptionIDs...)
		out[id] = copied
	}
	return out
}

func (s *AnswerStore) ensure(questionID string) *models.StudentAnswer {
	if ans, ok := s.answers[questionID]; ok {
		return ans
	}
	ans := &models.StudentAnswer{QuestionID: questionID}
	s.answers[questionID] = ans
	return ans
}
