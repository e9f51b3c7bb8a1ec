package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"trivia-party-service/internal/domain"
)

// QuizLoader fetches quiz content from a backing store (e.g., Postgres).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizArchive is a QuizLoader that also persists new quizzes.
type QuizArchive interface {
	QuizLoader
	StoreQuiz(ctx context.Context, quiz domain.Quiz) error
}

// QuizRepository caches quizzes with TTL in front of an archive.
type QuizRepository struct {
	archive QuizArchive
	ttl     time.Duration
	clock   func() time.Time
	sf      singleflight.Group
	rnd     *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

// NewQuizRepository returns a repository; a ttl of zero disables caching.
func NewQuizRepository(archive QuizArchive, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		archive: archive,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:   make(map[string]cachedQuiz),
	}
}

// SaveQuiz writes through to the archive and warms the cache.
func (r *QuizRepository) SaveQuiz(ctx context.Context, quiz domain.Quiz) error {
	if err := r.archive.StoreQuiz(ctx, quiz); err != nil {
		return err
	}
	r.put(quiz, r.clock())
	return nil
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[quizID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.quiz, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[quizID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.quiz, nil
		}
		r.mu.RUnlock()

		quiz, err := r.archive.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		r.put(quiz, now)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (r *QuizRepository) put(quiz domain.Quiz, now time.Time) {
	ttl := r.ttlWithJitter()
	if ttl <= 0 {
		return
	}
	r.mu.Lock()
	r.cache[quiz.ID] = cachedQuiz{quiz: quiz, expiresAt: now.Add(ttl)}
	r.mu.Unlock()
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// QuizArchiveMap is an in-process archive backed by a map (useful for tests and
// single-instance deployments without Postgres).
type QuizArchiveMap struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
}

func NewQuizArchive(seed ...domain.Quiz) *QuizArchiveMap {
	a := &QuizArchiveMap{quizzes: make(map[string]domain.Quiz, len(seed))}
	for _, quiz := range seed {
		a.quizzes[quiz.ID] = quiz
	}
	return a
}

func (a *QuizArchiveMap) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if quiz, ok := a.quizzes[quizID]; ok {
		return quiz, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (a *QuizArchiveMap) StoreQuiz(_ context.Context, quiz domain.Quiz) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.quizzes[quiz.ID] = quiz
	return nil
}
