package quizgen

import (
	"context"
	"fmt"

	"trivia-party-service/internal/domain"
)

// Static is a quiz source backed by a fixed question bank (useful for tests/demos).
// It returns the first count questions of the bank, wrapping around when the
// bank is shorter.
type Static struct {
	bank []domain.Question
	err  error
}

func NewStatic(bank []domain.Question) *Static {
	return &Static{bank: bank}
}

// NewFailing returns a source whose every call fails with err.
func NewFailing(err error) *Static {
	return &Static{err: err}
}

func (s *Static) Generate(_ context.Context, _ string, count int) ([]domain.Question, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.bank) == 0 {
		return nil, fmt.Errorf("%w: empty question bank", domain.ErrQuizGeneration)
	}
	questions := make([]domain.Question, 0, count)
	for i := 0; i < count; i++ {
		questions = append(questions, s.bank[i%len(s.bank)])
	}
	return questions, nil
}

// SampleQuestions is a small general-knowledge bank. The correct answer is
// always the second one.
func SampleQuestions() []domain.Question {
	return []domain.Question{
		{
			Question: "What is 2 + 2?",
			Answers: []domain.Answer{
				{Text: "3", IsCorrect: false},
				{Text: "4", IsCorrect: true},
				{Text: "5", IsCorrect: false},
				{Text: "22", IsCorrect: false},
			},
			TimeLimit: 20,
		},
		{
			Question: "Which planet is known as the Red Planet?",
			Answers: []domain.Answer{
				{Text: "Venus", IsCorrect: false},
				{Text: "Mars", IsCorrect: true},
				{Text: "Jupiter", IsCorrect: false},
				{Text: "Mercury", IsCorrect: false},
			},
			TimeLimit: 10,
		},
		{
			Question: "What is the chemical symbol for gold?",
			Answers: []domain.Answer{
				{Text: "Ag", IsCorrect: false},
				{Text: "Au", IsCorrect: true},
				{Text: "Gd", IsCorrect: false},
				{Text: "Go", IsCorrect: false},
			},
			TimeLimit: 30,
		},
	}
}
