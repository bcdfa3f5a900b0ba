package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/examforge/exam-link-service/internal/models"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ExtractedExam is the structured result of parsing raw exam text.
type ExtractedExam struct {
	Title     string          `json:"title"`
	Questions []QuestionInput `json:"questions"`
}

// ParseService turns pasted or uploaded exam text into a structured question
// list ready for exam creation.
type ParseService interface {
	ExtractQuestions(ctx context.Context, examText string) (*ExtractedExam, error)
}

type parseService struct {
	model  *genai.GenerativeModel
	logger *slog.Logger
}

// NewParseService creates the Gemini-backed parser. A missing API key yields
// a service whose calls fail with ErrExtractionUnavailable instead of a
// construction error, so the rest of the service still boots.
func NewParseService(ctx context.Context, apiKey string, logger *slog.Logger) (ParseService, error) {
	if apiKey == "" {
		logger.Warn("GEMINI_API_KEY is not set, question extraction will be unavailable")
		return &parseService{logger: logger}, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &parseService{
		model:  client.GenerativeModel("gemini-1.5-flash"),
		logger: logger,
	}, nil
}

const extractionPrompt = `You are an exam digitization assistant.
Extract every question from the exam text below into JSON with this exact shape:

{
  "title": "exam title, or a short descriptive title if none is present",
  "questions": [
    {
      "question": "full question text",
      "type": "single_choice | multi_choice | short_answer | essay",
      "options": ["option text", ...],
      "answer": "canonical answer text for short_answer, empty otherwise",
      "correct_options": ["option text of each correct option", ...],
      "instruction": "per-question instruction if any, empty otherwise"
    }
  ]
}

Rules:
- "options" and "correct_options" are empty arrays for short_answer and essay.
- single_choice has exactly one entry in "correct_options".
- Do not invent questions that are not in the text.
- Respond with the JSON object only, no prose.

Exam text:
---
%s
---
`

func (s *parseService) ExtractQuestions(ctx context.Context, examText string) (*ExtractedExam, error) {
	if s.model == nil {
		return nil, ErrExtractionUnavailable
	}

	s.logger.Info("Extracting questions from exam text", "text_length", len(examText))

	resp, err := s.model.GenerateContent(ctx, genai.Text(fmt.Sprintf(extractionPrompt, examText)))
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("%w: empty model response", ErrExtractionMalformed)
	}

	var raw strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			raw.WriteString(string(txt))
		}
	}

	extracted, err := parseExtractionPayload(raw.String())
	if err != nil {
		return nil, err
	}

	s.logger.Info("Extraction complete", "title", extracted.Title, "questions", len(extracted.Questions))
	return extracted, nil
}

type extractedQuestion struct {
	Question       string   `json:"question"`
	Type           string   `json:"type"`
	Options        []string `json:"options"`
	Answer         string   `json:"answer"`
	CorrectOptions []string `json:"correct_options"`
	Instruction    string   `json:"instruction"`
}

type extractionPayload struct {
	Title     string              `json:"title"`
	Questions []extractedQuestion `json:"questions"`
}

var jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)

// parseExtractionPayload pulls the JSON object out of the model response and
// maps it onto question inputs. Models wrap JSON in markdown fences often
// enough that matching the outermost braces is more reliable than trimming.
func parseExtractionPayload(response string) (*ExtractedExam, error) {
	match := jsonObjectPattern.FindString(response)
	if match == "" {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrExtractionMalformed)
	}

	var payload extractionPayload
	if err := json.Unmarshal([]byte(match), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionMalformed, err)
	}
	if len(payload.Questions) == 0 {
		return nil, fmt.Errorf("%w: no questions extracted", ErrExtractionMalformed)
	}

	out := &ExtractedExam{Title: payload.Title}
	for i, q := range payload.Questions {
		qt, err := models.NormalizeQuestionType(q.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", ErrExtractionMalformed, i+1, err)
		}

		input := QuestionInput{
			Text: strings.TrimSpace(q.Question),
			Type: string(qt),
		}
		if q.Answer != "" {
			answer := q.Answer
			input.Answer = &answer
		}
		if q.Instruction != "" {
			instruction := q.Instruction
			input.Instruction = &instruction
		}

		correct := make(map[string]bool, len(q.CorrectOptions))
		for _, c := range q.CorrectOptions {
			correct[strings.TrimSpace(c)] = true
		}
		for _, opt := range q.Options {
			text := strings.TrimSpace(opt)
			input.Options = append(input.Options, OptionInput{
				Text:      text,
				IsCorrect: correct[text],
			})
		}

		out.Questions = append(out.Questions, input)
	}

	return out, nil
}
