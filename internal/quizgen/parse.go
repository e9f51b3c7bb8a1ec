// Package quizgen produces validated quiz questions from a generative text service.
package quizgen

import (
	"bytes"
	"encoding/json"
	"fmt"

	"trivia-party-service/internal/domain"
)

// rawQuestion mirrors the response schema with pointers so missing fields are detectable.
type rawQuestion struct {
	Question *string     `json:"question"`
	Answers  []rawAnswer `json:"answers"`
	// TimeLimit is decoded as a float so integral values written as 15.0 pass.
	TimeLimit *float64 `json:"timeLimit"`
}

type rawAnswer struct {
	Text      *string `json:"text"`
	IsCorrect *bool   `json:"isCorrect"`
}

// ParseQuestions decodes and validates a JSON array of questions. It fails
// unless exactly count questions come back, each with four answers, exactly
// one of them correct, and a time limit between 10 and 30 seconds.
func ParseQuestions(raw []byte, count int) ([]domain.Question, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty response", domain.ErrQuizGeneration)
	}

	var items []rawQuestion
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: response is not a question array: %v", domain.ErrQuizGeneration, err)
	}
	if len(items) != count {
		return nil, fmt.Errorf("%w: expected %d questions, got %d", domain.ErrQuizGeneration, count, len(items))
	}

	questions := make([]domain.Question, 0, len(items))
	for i, item := range items {
		q, ok := item.toQuestion()
		if !ok || !domain.ValidateQuestion(q) {
			return nil, fmt.Errorf("%w: invalid question structure at index %d", domain.ErrQuizGeneration, i)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (r rawQuestion) toQuestion() (domain.Question, bool) {
	if r.Question == nil || r.TimeLimit == nil {
		return domain.Question{}, false
	}
	limit := int(*r.TimeLimit)
	if float64(limit) != *r.TimeLimit {
		return domain.Question{}, false
	}
	q := domain.Question{
		Question:  *r.Question,
		Answers:   make([]domain.Answer, 0, len(r.Answers)),
		TimeLimit: limit,
	}
	for _, a := range r.Answers {
		if a.Text == nil || a.IsCorrect == nil {
			return domain.Question{}, false
		}
		q.Answers = append(q.Answers, domain.Answer{Text: *a.Text, IsCorrect: *a.IsCorrect})
	}
	return q, true
}
