package memory

import (
	"sync"

	"trivia-party-service/internal/app"
)

// GameStore is an in-memory implementation of app.GameDirectory.
type GameStore struct {
	mu    sync.RWMutex
	games map[string]*app.Game
}

func NewGameStore() *GameStore {
	return &GameStore{
		games: make(map[string]*app.Game),
	}
}

func (s *GameStore) Register(pin string, game *app.Game) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[pin]; ok {
		return false
	}
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
	delete(s.games, pin)
}

// Len reports the number of live games.
func (s *GameStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}
