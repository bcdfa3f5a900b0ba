// Package scoring grades a finalized answer set against a question bank.
// Grading is a pure function: no I/O, no side effects, identical inputs
// always produce the identical score.
package scoring

import (
	"errors"
	"math"
	"strings"

	"github.com/examforge/exam-link-service/internal/models"
)

// ErrMissingQuestionBank is returned when grading is invoked without a
// question bank. Missing answers for individual questions are not an error;
// they grade as empty answers.
var ErrMissingQuestionBank = errors.New("scoring requires a question bank")

// Score grades answers against questions and returns the aggregate result.
//
// Assessable types are single choice, multi choice, and short answer with a
// canonical answer. Essays and short answers lacking a canonical answer are
// excluded from both counts. The percentage rounds half-up to the nearest
// integer.
func Score(questions []models.Question, answers map[string]models.StudentAnswer) (models.Score, error) {
	if questions == nil {
		return models.Score{}, ErrMissingQuestionBank
	}

	assessable, correct := 0, 0
	for i := range questions {
		q := &questions[i]
		ans := answers[q.ID]

		switch q.Type {
		case models.SingleChoice:
			assessable++
			if gradeSingleChoice(q, ans) {
				correct++
			}
		case models.MultiChoice:
			assessable++
			if gradeMultiChoice(q, ans) {
				correct++
			}
		case models.ShortAnswer:
			if q.Answer == nil || *q.Answer == "" {
				continue
			}
			assessable++
			if normalizeText(ans.AnswerText) == normalizeText(*q.Answer) {
				correct++
			}
		case models.Essay:
			// Essays need manual review and never enter the counts.
		}
	}

	score := models.Score{
		AssessableCount: assessable,
		CorrectCount:    correct,
	}
	if assessable > 0 {
		score.Percentage = int(math.Round(100 * float64(correct) / float64(assessable)))
	}
	return score, nil
}

// gradeSingleChoice is correct only when the single selected option is the
// one flagged correct. Empty selections and questions without a correct flag
// never grade correct, but they stay assessable.
func gradeSingleChoice(q *models.Question, ans models.StudentAnswer) bool {
	if len(ans.SelectedOptionIDs) == 0 {
		return false
	}
	correctIDs := q.CorrectOptionIDs()
	if len(correctIDs) == 0 {
		return false
	}
	return ans.SelectedOptionIDs[0] == correctIDs[0]
}

// gradeMultiChoice requires the selected set to match the correct set
// exactly: every correct option selected and nothing else. Order is
// irrelevant.
func gradeMultiChoice(q *models.Question, ans models.StudentAnswer) bool {
	correctIDs := q.CorrectOptionIDs()
	if len(ans.SelectedOptionIDs) != len(correctIDs) {
		return false
	}
	correctSet := make(map[string]struct{}, len(correctIDs))
	for _, id := range correctIDs {
		correctSet[id] = struct{}{}
	}
	for _, id := range ans.SelectedOptionIDs {
		if _, ok := correctSet[id]; !ok {
			return false
		}
	}
	return true
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
