package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"trivia-party-service/internal/app"
)

// GameStore is a Redis-aware implementation of app.GameDirectory.
// Notes:
//   - Games themselves stay in a local map; their timers and subscribers live
//     in this process.
//   - Redis reserves the PIN with SETNX so two instances never hand out the
//     same join code, and marks the game alive until its TTL runs out.
type GameStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	games  map[string]*app.Game
}

func NewGameStore(client *redis.Client, ttl time.Duration) *GameStore {
	return &GameStore{
		client: client,
		ttl:    ttl,
		games:  make(map[string]*app.Game),
	}
}

func (s *GameStore) Register(pin string, game *app.Game) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[pin]; ok {
		return false
	}
	reserved, err := s.client.SetNX(context.Background(), s.key(pin), "1", s.ttl).Result()
	if err == nil && !reserved {
		return false
	}
	// On a Redis error the reservation is best-effort; the local map still guards this instance.
	s.games[pin] = game
	return true
}

func (s *GameStore) Get(pin string) (*app.Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[pin]
	return game, ok
}

func (s *GameStore) Delete(pin string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[pin]; !ok {
		return
	}
	delete(s.games, pin)
	_ = s.client.Del(context.Background(), s.key(pin)).Err()
}

func (s *GameStore) key(pin string) string {
	return "trivia:game:" + pin
}
