package quizgen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/genai"
	"trivia-party-service/internal/domain"
)

const validQuestion = `{"question":"Q?","answers":[{"text":"a","isCorrect":false},{"text":"b","isCorrect":true},{"text":"c","isCorrect":false},{"text":"d","isCorrect":false}],"timeLimit":15}`

func TestParseQuestionsAcceptsValidQuiz(t *testing.T) {
	raw := "[" + strings.Repeat(validQuestion+",", 2) + validQuestion + "]"

	questions, err := ParseQuestions([]byte(raw), 3)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}
	for i, q := range questions {
		if q.CorrectIndex() != 1 || q.TimeLimit != 15 || len(q.Answers) != 4 {
			t.Fatalf("unexpected question %d: %+v", i, q)
		}
	}
}

func TestParseQuestionsRejectsMalformedResponses(t *testing.T) {
	cases := map[string]struct {
		raw   string
		count int
	}{
		"empty":          {raw: "  ", count: 1},
		"not an array":   {raw: validQuestion, count: 1},
		"wrong count":    {raw: "[" + validQuestion + "]", count: 2},
		"three answers":  {raw: `[{"question":"Q?","answers":[{"text":"a","isCorrect":true},{"text":"b","isCorrect":false},{"text":"c","isCorrect":false}],"timeLimit":15}]`, count: 1},
		"two correct":    {raw: `[{"question":"Q?","answers":[{"text":"a","isCorrect":true},{"text":"b","isCorrect":true},{"text":"c","isCorrect":false},{"text":"d","isCorrect":false}],"timeLimit":15}]`, count: 1},
		"none correct":   {raw: `[{"question":"Q?","answers":[{"text":"a","isCorrect":false},{"text":"b","isCorrect":false},{"text":"c","isCorrect":false},{"text":"d","isCorrect":false}],"timeLimit":15}]`, count: 1},
		"time too short": {raw: strings.Replace("["+validQuestion+"]", `"timeLimit":15`, `"timeLimit":5`, 1), count: 1},
		"time too long":  {raw: strings.Replace("["+validQuestion+"]", `"timeLimit":15`, `"timeLimit":45`, 1), count: 1},
		"missing flag":   {raw: `[{"question":"Q?","answers":[{"text":"a"},{"text":"b","isCorrect":true},{"text":"c","isCorrect":false},{"text":"d","isCorrect":false}],"timeLimit":15}]`, count: 1},
		"string limit":   {raw: strings.Replace("["+validQuestion+"]", `"timeLimit":15`, `"timeLimit":"15"`, 1), count: 1},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseQuestions([]byte(tc.raw), tc.count); !errors.Is(err, domain.ErrQuizGeneration) {
				t.Fatalf("expected generation error, got %v", err)
			}
		})
	}
}

type fakeModels struct {
	text  string
	err   error
	model string
	cfg   *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, _ []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.cfg = cfg
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}}},
		},
	}, nil
}

func TestGeminiGenerateUsesSchemaAndValidates(t *testing.T) {
	models := &fakeModels{text: "[" + validQuestion + "," + validQuestion + "," + validQuestion + "]"}
	source := newGemini(models, "", 0)

	questions, err := source.Generate(context.Background(), "Space", 3)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}
	if models.model != DefaultModel {
		t.Fatalf("expected default model, got %q", models.model)
	}
	if models.cfg == nil || models.cfg.ResponseMIMEType != "application/json" || models.cfg.ResponseSchema == nil {
		t.Fatalf("expected JSON schema config, got %+v", models.cfg)
	}
}

func TestGeminiGenerateWrapsServiceErrors(t *testing.T) {
	source := newGemini(&fakeModels{err: errors.New("quota exceeded")}, "gemini-test", 0)

	if _, err := source.Generate(context.Background(), "Space", 3); !errors.Is(err, domain.ErrQuizGeneration) {
		t.Fatalf("expected generation error, got %v", err)
	}
}

func TestNewGeminiRequiresAPIKey(t *testing.T) {
	if _, err := NewGemini(context.Background(), "", "", 0); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestStaticSourceReturnsRequestedCount(t *testing.T) {
	source := NewStatic(SampleQuestions())

	questions, err := source.Generate(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(questions))
	}
	for _, q := range questions {
		if !domain.ValidateQuestion(q) {
			t.Fatalf("sample question failed validation: %+v", q)
		}
	}
}
