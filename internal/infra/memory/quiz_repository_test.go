package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"trivia-party-service/internal/domain"
)

func TestQuizRepositoryCaches(t *testing.T) {
	archive := &countingArchive{QuizArchive: NewQuizArchive(sampleQuiz())}
	repo := NewQuizRepository(archive, time.Minute)

	if _, err := repo.GetQuiz(context.Background(), "482913"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if archive.loads != 1 {
		t.Fatalf("expected archive once, got %d", archive.loads)
	}

	if _, err := repo.GetQuiz(context.Background(), "482913"); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if archive.loads != 1 {
		t.Fatalf("expected cache hit, archive loads %d", archive.loads)
	}
}

func TestQuizRepositorySaveWritesThrough(t *testing.T) {
	archive := &countingArchive{QuizArchive: NewQuizArchive()}
	repo := NewQuizRepository(archive, time.Minute)

	if err := repo.SaveQuiz(context.Background(), sampleQuiz()); err != nil {
		t.Fatalf("save quiz: %v", err)
	}
	quiz, err := repo.GetQuiz(context.Background(), "482913")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if quiz.Topic != "Arithmetic" || archive.loads != 0 {
		t.Fatalf("expected cached quiz without archive load, got %+v loads=%d", quiz, archive.loads)
	}
	if _, err := archive.LoadQuiz(context.Background(), "482913"); err != nil {
		t.Fatalf("expected quiz archived: %v", err)
	}
}

func TestQuizRepositoryExpiresEntries(t *testing.T) {
	archive := &countingArchive{QuizArchive: NewQuizArchive(sampleQuiz())}
	repo := NewQuizRepository(archive, time.Minute)
	now := time.Unix(1000, 0)
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetQuiz(context.Background(), "482913")
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetQuiz(context.Background(), "482913")
	if archive.loads != 2 {
		t.Fatalf("expected reload after expiry, loads=%d", archive.loads)
	}
}

func TestQuizRepositoryUnknownQuiz(t *testing.T) {
	repo := NewQuizRepository(NewQuizArchive(), time.Minute)

	if _, err := repo.GetQuiz(context.Background(), "000000"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type countingArchive struct {
	QuizArchive
	loads int
}

func (a *countingArchive) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	a.loads++
	return a.QuizArchive.LoadQuiz(ctx, quizID)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "482913",
		Topic: "Arithmetic",
		Questions: []domain.Question{
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
		},
	}
}
