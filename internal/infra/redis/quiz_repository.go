package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"trivia-party-service/internal/domain"
)

// QuizArchive loads and persists quiz content (e.g., Postgres).
type QuizArchive interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	StoreQuiz(ctx context.Context, quiz domain.Quiz) error
}

// QuizRepository caches quizzes in Redis and falls back to the archive on a cache miss.
// Quizzes are stored as JSON: SET trivia:quiz:{quizID} {json} EX ttl
type QuizRepository struct {
	client  *redis.Client
	archive QuizArchive
	ttl     time.Duration
	sf      singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuizRepository(client *redis.Client, archive QuizArchive, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client:  client,
		archive: archive,
		ttl:     ttl,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SaveQuiz writes through to the archive and then caches the quiz. Caching is best-effort.
func (r *QuizRepository) SaveQuiz(ctx context.Context, quiz domain.Quiz) error {
	if err := r.archive.StoreQuiz(ctx, quiz); err != nil {
		return err
	}
	_ = r.cache(ctx, quiz)
	return nil
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := r.cached(ctx, quizID); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := r.cached(ctx, quizID); ok {
			return quiz, nil
		}

		quiz, err := r.archive.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		_ = r.cache(ctx, quiz)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (r *QuizRepository) cached(ctx context.Context, quizID string) (domain.Quiz, bool) {
	raw, err := r.client.Get(ctx, r.key(quizID)).Bytes()
	if err != nil {
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (r *QuizRepository) cache(ctx context.Context, quiz domain.Quiz) error {
	ttl := r.ttlWithJitter()
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	if err := r.client.Set(ctx, r.key(quiz.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("cache quiz: %w", err)
	}
	return nil
}

func (r *QuizRepository) key(quizID string) string {
	return "trivia:quiz:" + quizID
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
