package session

import (
	"testing"

	"github.com/examforge/exam-link-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func bankForAnswers() []models.Question {
	return []models.Question{
		{
			ID:   "q1",
			Type: models.SingleChoice,
			Options: []models.QuestionOption{
				{ID: "a", Text: "London"},
				{ID: "b", Text: "Paris", IsCorrect: true},
			},
		},
		{
			ID:   "q2",
			Type: models.MultiChoice,
			Options: []models.QuestionOption{
				{ID: "a", Text: "2", IsCorrect: true},
				{ID: "b", Text: "3", IsCorrect: true},
				{ID: "c", Text: "4"},
			},
		},
		{ID: "q3", Type: models.ShortAnswer},
	}
}

func TestAnswerStore_UntouchedQuestionIsEmpty(t *testing.T) {
	store := NewAnswerStore(bankForAnswers())

	ans := store.Get("q1")
	assert.Equal(t, "q1", ans.QuestionID)
	assert.Empty(t, ans.AnswerText)
	assert.Empty(t, ans.SelectedOptionIDs)
}

func TestAnswerStore_SetTextReplaces(t *testing.T) {
	store := NewAnswerStore(bankForAnswers())

	store.SetText("q3", "first draft")
	store.SetText("q3", "final answer")
	assert.Equal(t, "final answer", store.Get("q3").AnswerText)
}

func TestAnswerStore_SingleChoiceReplacesSelection(t *testing.T) {
	store := NewAnswerStore(bankForAnswers())

	store.ToggleOption("q1", "a", models.SingleChoice)
	assert.Equal(t, []string{"a"}, store.Get("q1").SelectedOptionIDs)

	store.ToggleOption("q1", "b", models.SingleChoice)
	assert.Equal(t, []string{"b"}, store.Get("q1").SelectedOptionIDs)

	// Re-selecting the same option keeps exactly one selected.
	store.ToggleOption("q1", "b", models.SingleChoice)
	assert.Equal(t, []string{"b"}, store.Get("q1").SelectedOptionIDs)
}

func TestAnswerStore_MultiChoiceTogglesMembership(t *testing.T) {
	store := NewAnswerStore(bankForAnswers())

	store.ToggleOption("q2", "a", models.MultiChoice)
	store.ToggleOption("q2", "b", models.MultiChoice)
	store.ToggleOption("q2", "c", models.MultiChoice)
	assert.Equal(t, []string{"a", "b", "c"}, store.Get("q2").SelectedOptionIDs)

	// Removing the middle member preserves the order of the rest.
	store.ToggleOption("q2", "b", models.MultiChoice)
	assert.Equal(t, []string{"a", "c"}, store.Get("q2").SelectedOptionIDs)

	// Toggling back appends at the end, never duplicates.
	store.ToggleOption("q2", "b", models.MultiChoice)
	assert.Equal(t, []string{"a", "c", "b"}, store.Get("q2").SelectedOptionIDs)
}

func TestAnswerStore_SnapshotIsDetached(t *testing.T) {
	store := NewAnswerStore(bankForAnswers())
	store.ToggleOption("q2", "a", models.MultiChoice)

	snap := store.Snapshot()
	store.ToggleOption("q2", "b", models.MultiChoice)
	store.SetText("q3", "later")

	assert.Equal(t, []string{"a"}, snap["q2"].SelectedOptionIDs)
	assert.Empty(t, snap["q3"].AnswerText)
}
