package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"trivia-party-service/internal/domain"
)

// QuizArchive keeps every generated quiz as JSONB in Postgres, keyed by PIN.
type QuizArchive struct {
	pool *pgxpool.Pool
}

func NewQuizArchive(pool *pgxpool.Pool) *QuizArchive {
	return &QuizArchive{pool: pool}
}

func (a *QuizArchive) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var raw []byte
	err := a.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE id=$1`, quizID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return quiz, nil
}

// StoreQuiz upserts the quiz; a PIN reused after its game ended replaces the old quiz.
func (a *QuizArchive) StoreQuiz(ctx context.Context, quiz domain.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	_, err = a.pool.Exec(ctx, `
		INSERT INTO quizzes (id, topic, data, created_at) VALUES ($1, $2, $3::jsonb, $4)
		ON CONFLICT (id) DO UPDATE SET topic=EXCLUDED.topic, data=EXCLUDED.data, created_at=EXCLUDED.created_at`,
		quiz.ID, quiz.Topic, string(data), quiz.CreatedAt)
	if err != nil {
		return fmt.Errorf("store quiz: %w", err)
	}
	return nil
}
