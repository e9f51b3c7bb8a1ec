package quizgen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"
	"trivia-party-service/internal/domain"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrMissingAPIKey is returned when no credential for the quiz source is configured.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY environment variable not set")

// contentGenerator is the part of the genai client used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini generates quizzes with the Gemini API using a JSON response schema.
type Gemini struct {
	models  contentGenerator
	model   string
	timeout time.Duration
}

// NewGemini builds a Gemini source. An empty model selects DefaultModel; a
// zero timeout leaves the request bound only by the caller's context.
func NewGemini(ctx context.Context, apiKey, model string, timeout time.Duration) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return newGemini(client.Models, model, timeout), nil
}

func newGemini(models contentGenerator, model string, timeout time.Duration) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{models: models, model: model, timeout: timeout}
}

func (g *Gemini) Generate(ctx context.Context, topic string, count int) ([]domain.Question, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(Prompt(topic, count)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   quizSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQuizGeneration, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: empty response", domain.ErrQuizGeneration)
	}
	return ParseQuestions([]byte(resp.Text()), count)
}

// Prompt is the instruction sent for a topic and question count.
func Prompt(topic string, count int) string {
	return fmt.Sprintf(`Create a fun and engaging quiz with exactly %d multiple-choice questions on the topic of %q.
Each question must have exactly 4 possible answers.
For each question, exactly one of the four answers must be marked as correct (isCorrect: true). The other three must be incorrect (isCorrect: false).
Ensure the questions are varied and cover different aspects of the topic. Make them suitable for a general audience.
Set a time limit for each question, between 10 and 30 seconds, depending on the question's difficulty.`, count, topic)
}

var quizSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"question": {
				Type:        genai.TypeString,
				Description: "The trivia question text.",
			},
			"answers": {
				Type:        genai.TypeArray,
				Description: "An array of 4 possible answers.",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"text": {
							Type:        genai.TypeString,
							Description: "The answer text.",
						},
						"isCorrect": {
							Type:        genai.TypeBoolean,
							Description: "True if this answer is the correct one, otherwise false.",
						},
					},
					Required: []string{"text", "isCorrect"},
				},
			},
			"timeLimit": {
				Type:        genai.TypeInteger,
				Description: "Time limit for the question in seconds. Should be between 10 and 30.",
			},
		},
		Required: []string{"question", "answers", "timeLimit"},
	},
}
