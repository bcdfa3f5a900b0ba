package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/examforge/exam-link-service/internal/events"
	"github.com/examforge/exam-link-service/internal/link"
	"github.com/examforge/exam-link-service/internal/models"
	"github.com/examforge/exam-link-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://exams.example.com"

func newExamServiceForTest(repo *fakeRepository, publisher events.EventPublisher) *examService {
	svc := NewExamService(repo, publisher, testLogger(), utils.NewValidator(), testBaseURL)
	return svc.(*examService)
}

func sampleCreateRequest() *CreateExamRequest {
	answer := "Paris"
	return &CreateExamRequest{
		Title: "Geography Final",
		Questions: []QuestionInput{
			{
				Text: "What is the capital of France?",
				Type: "MCQ",
				Options: []OptionInput{
					{Text: "Paris", IsCorrect: true},
					{Text: "London"},
					{Text: "Berlin"},
				},
			},
			{
				Text: "Select the states of matter",
				Type: "multiple-choice",
				Options: []OptionInput{
					{Text: "Solid", IsCorrect: true},
					{Text: "Liquid", IsCorrect: true},
					{Text: "Gas", IsCorrect: true},
					{Text: "Plasma-free"},
				},
			},
			{
				Text:   "Capital of France (write it)",
				Type:   "short-answer",
				Answer: &answer,
			},
			{
				Text: "Describe plate tectonics",
				Type: "essay",
			},
		},
	}
}

func TestExamService_Create(t *testing.T) {
	repo := newFakeRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	svc := newExamServiceForTest(repo, publisher)

	exam, err := svc.Create(context.Background(), sampleCreateRequest(), "teacher-1")
	require.NoError(t, err)

	assert.NotEmpty(t, exam.ID)
	assert.Equal(t, models.ExamStatusDraft, exam.Status)
	assert.Equal(t, "teacher-1", exam.CreatedBy)
	require.Len(t, exam.Questions, 4)

	// Legacy aliases are normalized at ingestion.
	assert.Equal(t, models.SingleChoice, exam.Questions[0].Type)
	assert.Equal(t, models.MultiChoice, exam.Questions[1].Type)
	assert.Equal(t, models.ShortAnswer, exam.Questions[2].Type)
	assert.Equal(t, models.Essay, exam.Questions[3].Type)

	for i, q := range exam.Questions {
		assert.Equal(t, i+1, q.Position)
		assert.Equal(t, exam.ID, q.ExamID)
	}

	stored, err := repo.Exam().GetByID(context.Background(), exam.ID)
	require.NoError(t, err)
	assert.Equal(t, exam.Title, stored.Title)
}

func TestExamService_Create_UnknownQuestionType(t *testing.T) {
	svc := newExamServiceForTest(newFakeRepository(), events.NewMockEventPublisher(testLogger()))

	req := &CreateExamRequest{
		Title:     "Broken",
		Questions: []QuestionInput{{Text: "q", Type: "matching"}},
	}

	_, err := svc.Create(context.Background(), req, "teacher-1")
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestExamService_Publish(t *testing.T) {
	repo := newFakeRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	svc := newExamServiceForTest(repo, publisher)

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	exam, err := svc.Create(context.Background(), sampleCreateRequest(), "teacher-1")
	require.NoError(t, err)

	password := "s3cret"
	attempts := 3
	duration := 2
	published, err := svc.Publish(context.Background(), exam.ID, &PublishExamRequest{
		Password:     &password,
		Duration:     &duration,
		DurationUnit: "hours",
		MaxAttempts:  &attempts,
	}, "teacher-1")
	require.NoError(t, err)

	assert.Equal(t, models.ExamStatusPublished, published.Status)
	require.NotNil(t, published.ExpiresAt)
	assert.Equal(t, now.Add(2*time.Hour), *published.ExpiresAt)
	require.NotNil(t, published.ShareLink)
	assert.True(t, strings.HasPrefix(*published.ShareLink, testBaseURL+"/exam?"))

	// The share link round-trips back to the exam's parameters.
	params, err := link.DecodeURL(*published.ShareLink)
	require.NoError(t, err)
	assert.Equal(t, published.LinkParameters(), params)
	assert.True(t, params.PasswordProtected)

	recorded := publisher.PublishedEvents()
	require.Len(t, recorded, 1)
	assert.Equal(t, events.EventExamPublished, recorded[0].Type)
	data, ok := recorded[0].Data.(events.ExamPublishedEvent)
	require.True(t, ok)
	assert.Equal(t, exam.ID, data.ExamID)
	assert.Equal(t, *published.ShareLink, data.ShareLink)
}

func TestExamService_Publish_NoQuestions(t *testing.T) {
	repo := newFakeRepository()
	svc := newExamServiceForTest(repo, events.NewMockEventPublisher(testLogger()))

	exam, err := svc.Create(context.Background(), &CreateExamRequest{Title: "Empty"}, "teacher-1")
	require.NoError(t, err)

	_, err = svc.Publish(context.Background(), exam.ID, &PublishExamRequest{}, "teacher-1")
	assert.ErrorIs(t, err, ErrExamHasNoQuestion)
}

func TestExamService_Publish_NotCreator(t *testing.T) {
	repo := newFakeRepository()
	svc := newExamServiceForTest(repo, events.NewMockEventPublisher(testLogger()))

	exam, err := svc.Create(context.Background(), sampleCreateRequest(), "teacher-1")
	require.NoError(t, err)

	_, err = svc.Publish(context.Background(), exam.ID, &PublishExamRequest{}, "teacher-2")
	assert.True(t, IsAccessDenied(err))
}

func TestExamService_UpdateQuestions_PublishedExamRejected(t *testing.T) {
	repo := newFakeRepository()
	svc := newExamServiceForTest(repo, events.NewMockEventPublisher(testLogger()))

	exam, err := svc.Create(context.Background(), sampleCreateRequest(), "teacher-1")
	require.NoError(t, err)
	_, err = svc.Publish(context.Background(), exam.ID, &PublishExamRequest{}, "teacher-1")
	require.NoError(t, err)

	_, err = svc.UpdateQuestions(context.Background(), exam.ID, &UpdateQuestionsRequest{
		Questions: []QuestionInput{{Text: "new", Type: "essay"}},
	}, "teacher-1")
	assert.ErrorIs(t, err, ErrExamNotEditable)
}

func TestExamService_UpdateQuestions(t *testing.T) {
	repo := newFakeRepository()
	svc := newExamServiceForTest(repo, events.NewMockEventPublisher(testLogger()))

	exam, err := svc.Create(context.Background(), sampleCreateRequest(), "teacher-1")
	require.NoError(t, err)

	updated, err := svc.UpdateQuestions(context.Background(), exam.ID, &UpdateQuestionsRequest{
		Questions: []QuestionInput{
			{Text: "Only question now", Type: "essay"},
		},
	}, "teacher-1")
	require.NoError(t, err)
	require.Len(t, updated.Questions, 1)
	assert.Equal(t, models.Essay, updated.Questions[0].Type)

	stored, err := repo.Exam().GetByID(context.Background(), exam.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Questions, 1)
}

func TestExamService_GetByID_NotFound(t *testing.T) {
	svc := newExamServiceForTest(newFakeRepository(), events.NewMockEventPublisher(testLogger()))

	_, err := svc.GetByID(context.Background(), "missing", "teacher-1")
	assert.ErrorIs(t, err, ErrExamNotFound)
}
