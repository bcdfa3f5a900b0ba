package scoring

import (
	"testing"

	"github.com/examforge/exam-link-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func singleChoiceQuestion() models.Question {
	return models.Question{
		ID:   "q1",
		Text: "What is the capital of France?",
		Type: models.SingleChoice,
		Options: []models.QuestionOption{
			{ID: "a", Text: "London", IsCorrect: false},
			{ID: "b", Text: "Paris", IsCorrect: true},
			{ID: "c", Text: "Berlin", IsCorrect: false},
		},
	}
}

func TestScore_MixedBank(t *testing.T) {
	questions := []models.Question{
		singleChoiceQuestion(),
		{
			ID:     "q2",
			Text:   "Name the 3 states of matter.",
			Type:   models.ShortAnswer,
			Answer: strPtr("Solid, liquid, gas"),
		},
		{
			ID:   "q3",
			Text: "Describe photosynthesis.",
			Type: models.Essay,
		},
	}
	answers := map[string]models.StudentAnswer{
		"q1": {QuestionID: "q1", SelectedOptionIDs: []string{"b"}},
		"q2": {QuestionID: "q2", AnswerText: " solid, liquid, gas "},
		"q3": {QuestionID: "q3"},
	}

	score, err := Score(questions, answers)
	require.NoError(t, err)

	assert.Equal(t, 2, score.AssessableCount, "essay must be excluded")
	assert.Equal(t, 2, score.CorrectCount)
	assert.Equal(t, 100, score.Percentage)
}

func TestScore_Determinism(t *testing.T) {
	questions := []models.Question{singleChoiceQuestion()}
	answers := map[string]models.StudentAnswer{
		"q1": {QuestionID: "q1", SelectedOptionIDs: []string{"b"}},
	}

	first, err := Score(questions, answers)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Score(questions, answers)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestScore_SingleChoice(t *testing.T) {
	tests := []struct {
		name     string
		selected []string
		options  []models.QuestionOption
		correct  bool
	}{
		{
			name:     "correct option selected",
			selected: []string{"b"},
			correct:  true,
		},
		{
			name:     "wrong option selected",
			selected: []string{"a"},
			correct:  false,
		},
		{
			name:     "empty selection",
			selected: nil,
			correct:  false,
		},
		{
			name:     "no option flagged correct",
			selected: []string{"a"},
			options: []models.QuestionOption{
				{ID: "a", Text: "London"},
				{ID: "b", Text: "Paris"},
			},
			correct: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := singleChoiceQuestion()
			if tt.options != nil {
				q.Options = tt.options
			}
			answers := map[string]models.StudentAnswer{
				"q1": {QuestionID: "q1", SelectedOptionIDs: tt.selected},
			}

			score, err := Score([]models.Question{q}, answers)
			require.NoError(t, err)
			assert.Equal(t, 1, score.AssessableCount)
			assert.Equal(t, tt.correct, score.CorrectCount == 1)
		})
	}
}

func TestScore_MultiChoiceExactSetMatch(t *testing.T) {
	question := models.Question{
		ID:   "q1",
		Text: "Which are prime numbers?",
		Type: models.MultiChoice,
		Options: []models.QuestionOption{
			{ID: "a", Text: "2", IsCorrect: true},
			{ID: "b", Text: "3", IsCorrect: true},
			{ID: "c", Text: "4", IsCorrect: false},
		},
	}

	tests := []struct {
		name     string
		selected []string
		correct  bool
	}{
		{"subset is not correct", []string{"a"}, false},
		{"exact set is correct", []string{"a", "b"}, true},
		{"exact set order-insensitive", []string{"b", "a"}, true},
		{"superset is not correct", []string{"a", "b", "c"}, false},
		{"disjoint set is not correct", []string{"c"}, false},
		{"empty selection is not correct", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := map[string]models.StudentAnswer{
				"q1": {QuestionID: "q1", SelectedOptionIDs: tt.selected},
			}
			score, err := Score([]models.Question{question}, answers)
			require.NoError(t, err)
			assert.Equal(t, tt.correct, score.CorrectCount == 1)
		})
	}
}

func TestScore_ShortAnswerWithoutCanonicalAnswerIsNotAssessable(t *testing.T) {
	questions := []models.Question{
		{ID: "q1", Text: "Thoughts?", Type: models.ShortAnswer},
		{ID: "q2", Text: "Opinion?", Type: models.ShortAnswer, Answer: strPtr("")},
	}
	answers := map[string]models.StudentAnswer{
		"q1": {QuestionID: "q1", AnswerText: "anything"},
		"q2": {QuestionID: "q2", AnswerText: "anything"},
	}

	score, err := Score(questions, answers)
	require.NoError(t, err)
	assert.Equal(t, 0, score.AssessableCount)
	assert.Equal(t, 0, score.Percentage)
}

func TestScore_MissingAnswersGradeAsEmpty(t *testing.T) {
	questions := []models.Question{
		singleChoiceQuestion(),
		{ID: "q2", Text: "2+2?", Type: models.ShortAnswer, Answer: strPtr("4")},
	}

	score, err := Score(questions, map[string]models.StudentAnswer{})
	require.NoError(t, err)
	assert.Equal(t, 2, score.AssessableCount)
	assert.Equal(t, 0, score.CorrectCount)
	assert.Equal(t, 0, score.Percentage)
}

func TestScore_PercentageRounding(t *testing.T) {
	makeBank := func(n int) []models.Question {
		bank := make([]models.Question, n)
		for i := range bank {
			q := singleChoiceQuestion()
			q.ID = string(rune('a' + i))
			bank[i] = q
		}
		return bank
	}

	tests := []struct {
		name       string
		total      int
		correctIDs []string
		want       int
	}{
		{"one of three rounds to 33", 3, []string{"a"}, 33},
		{"two of three rounds to 67", 3, []string{"a", "b"}, 67},
		{"one of two rounds half up to 50", 2, []string{"a"}, 50},
		{"all correct", 2, []string{"a", "b"}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bank := makeBank(tt.total)
			answers := map[string]models.StudentAnswer{}
			for _, id := range tt.correctIDs {
				answers[id] = models.StudentAnswer{QuestionID: id, SelectedOptionIDs: []string{"b"}}
			}

			score, err := Score(bank, answers)
			require.NoError(t, err)
			assert.Equal(t, tt.want, score.Percentage)
		})
	}
}

func TestScore_EmptyBankScoresZero(t *testing.T) {
	score, err := Score([]models.Question{}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.Score{}, score)
}

func TestScore_NilBankIsError(t *testing.T) {
	_, err := Score(nil, map[string]models.StudentAnswer{})
	assert.ErrorIs(t, err, ErrMissingQuestionBank)
}
