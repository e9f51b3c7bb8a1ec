package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"trivia-party-service/internal/domain"
	"trivia-party-service/internal/timer"
)

// GameDirectory abstracts where live games are registered by PIN (in-memory, Redis, etc).
type GameDirectory interface {
	// Register stores g under pin. It reports false if the PIN is taken.
	Register(pin string, g *Game) bool
	Get(pin string) (*Game, bool)
	Delete(pin string)
}

// QuizRepository stores generated quizzes by PIN (cache in front of an archive).
type QuizRepository interface {
	SaveQuiz(ctx context.Context, quiz domain.Quiz) error
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizSource produces validated questions for a topic.
type QuizSource interface {
	Generate(ctx context.Context, topic string, count int) ([]domain.Question, error)
}

// Config tunes the timing of a game. Zero values fall back to the defaults.
type Config struct {
	LeaderboardDwell time.Duration
	// JoinDelay is the artificial round trip of a join request. Negative disables it.
	JoinDelay time.Duration
	Clock     timer.Clock
	Seed      int64
	Logger    *slog.Logger
}

const (
	DefaultLeaderboardDwell = 8 * time.Second
	DefaultJoinDelay        = 500 * time.Millisecond
)

// GameService contains the game use cases.
type GameService struct {
	games   GameDirectory
	quizzes QuizRepository
	source  QuizSource
	clock   timer.Clock
	dwell   time.Duration
	delay   time.Duration
	logger  *slog.Logger

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewGameService(games GameDirectory, quizzes QuizRepository, source QuizSource, cfg Config) *GameService {
	if cfg.LeaderboardDwell <= 0 {
		cfg.LeaderboardDwell = DefaultLeaderboardDwell
	}
	if cfg.JoinDelay == 0 {
		cfg.JoinDelay = DefaultJoinDelay
	}
	if cfg.Clock == nil {
		cfg.Clock = timer.Real{}
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &GameService{
		games:   games,
		quizzes: quizzes,
		source:  source,
		clock:   cfg.Clock,
		dwell:   cfg.LeaderboardDwell,
		delay:   cfg.JoinDelay,
		logger:  cfg.Logger,
		rnd:     rand.New(rand.NewSource(cfg.Seed)),
	}
}

// NewGame returns a game on the Home screen, owned by one client.
func (s *GameService) NewGame() *Game {
	s.rndMu.Lock()
	seed := s.rnd.Int63()
	s.rndMu.Unlock()
	return newGame(s.clock, rand.New(rand.NewSource(seed)), s.dwell)
}

// OpenSetup navigates Home -> Setup.
func (s *GameService) OpenSetup(_ context.Context, g *Game) error {
	return g.openSetup()
}

// OpenJoinRoom navigates Home -> JoinRoom.
func (s *GameService) OpenJoinRoom(_ context.Context, g *Game) error {
	return g.openJoinRoom()
}

// Back leaves the current screen. On the lobby it cancels the room.
func (s *GameService) Back(ctx context.Context, g *Game) error {
	if g.Phase() == domain.PhaseLobby {
		pin, err := g.closeLobby()
		if err != nil {
			return err
		}
		s.release(ctx, pin)
		return nil
	}
	return g.back()
}

// CreateQuiz asks the quiz source for a quiz and opens the lobby under a new PIN.
func (s *GameService) CreateQuiz(ctx context.Context, g *Game, topic string, count int) error {
	topic = strings.TrimSpace(topic)
	if topic == "" || count < domain.MinQuestions || count > domain.MaxQuestions {
		return fmt.Errorf("%w: topic %q, %d questions", domain.ErrInvalidQuizRequest, topic, count)
	}
	if err := g.beginLoading(domain.PhaseSetup); err != nil {
		return err
	}

	questions, err := s.source.Generate(ctx, topic, count)
	if err == nil && len(questions) == 0 {
		err = errors.New("empty response")
	}
	if err != nil {
		if !errors.Is(err, domain.ErrQuizGeneration) {
			err = fmt.Errorf("%w: %v", domain.ErrQuizGeneration, err)
		}
		s.logger.Warn("quiz generation failed", "topic", topic, "count", count, "err", err)
		g.finishLoading(domain.UserMessage(err))
		return err
	}

	pin := s.allocatePIN(g)
	quiz := domain.Quiz{ID: pin, Topic: topic, Questions: questions, CreatedAt: s.clock.Now()}
	if err := s.quizzes.SaveQuiz(ctx, quiz); err != nil {
		s.games.Delete(pin)
		s.logger.Error("save quiz", "pin", pin, "err", err)
		g.finishLoading(domain.UserMessage(err))
		return fmt.Errorf("save quiz: %w", err)
	}
	if !g.openLobby(quiz) {
		// The creator left Setup while the quiz was generated.
		s.games.Delete(pin)
		return domain.ErrInvalidTransition
	}
	s.logger.Info("quiz created", "pin", pin, "topic", topic, "questions", len(questions))
	return nil
}

// allocatePIN registers g under a random 6-digit PIN not used by a live game.
func (s *GameService) allocatePIN(g *Game) string {
	for {
		s.rndMu.Lock()
		pin := fmt.Sprintf("%06d", 100000+s.rnd.Intn(900000))
		s.rndMu.Unlock()
		if s.games.Register(pin, g) {
			return pin
		}
	}
}

// JoinRoom resolves a join code to a live game waiting in its lobby. The
// caller switches its client over to the returned game.
func (s *GameService) JoinRoom(ctx context.Context, g *Game, raw string) (*Game, error) {
	pin := domain.NormalizePIN(raw)
	if !domain.ValidPIN(pin) {
		if g.Phase() != domain.PhaseJoinRoom {
			return nil, domain.ErrInvalidTransition
		}
		g.setError(domain.UserMessage(domain.ErrInvalidPIN))
		return nil, domain.ErrInvalidPIN
	}
	if err := g.beginLoading(domain.PhaseJoinRoom); err != nil {
		return nil, err
	}

	if err := s.wait(ctx); err != nil {
		g.finishLoading("")
		return nil, err
	}

	target, err := s.Lookup(ctx, pin)
	if err == nil && target.Phase() != domain.PhaseLobby {
		err = domain.ErrInvalidPIN
	}
	if err != nil {
		s.logger.Debug("join rejected", "pin", pin, "err", err)
		g.finishLoading(domain.UserMessage(domain.ErrInvalidPIN))
		return nil, domain.ErrInvalidPIN
	}
	g.finishLoading("")
	return target, nil
}

// Lookup returns the live game registered under pin. Users cannot join a PIN
// whose quiz is unknown.
func (s *GameService) Lookup(ctx context.Context, pin string) (*Game, error) {
	if _, err := s.quizzes.GetQuiz(ctx, pin); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPIN, err)
	}
	target, ok := s.games.Get(pin)
	if !ok {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPIN, domain.ErrGameNotFound)
	}
	return target, nil
}

func (s *GameService) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	done := make(chan struct{})
	task := s.clock.AfterFunc(s.delay, func() { close(done) })
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		task.Stop()
		return ctx.Err()
	}
}

// AddPlayer joins a player to the lobby.
func (s *GameService) AddPlayer(_ context.Context, g *Game, name string, character domain.Character) error {
	name, err := domain.NormalizeName(name)
	if err != nil {
		return err
	}
	if strings.TrimSpace(character.Base) == "" {
		character.Base = domain.DefaultAvatar
	}
	character.Accessory = nil
	if err := g.addPlayer(name, character); err != nil {
		return err
	}
	s.logger.Debug("player joined", "pin", g.PIN(), "name", name)
	return nil
}

// StartGame moves the lobby to the first question.
func (s *GameService) StartGame(_ context.Context, g *Game) error {
	if err := g.start(); err != nil {
		return err
	}
	s.logger.Info("game started", "pin", g.PIN())
	return nil
}

// SubmitAnswer answers the current question on behalf of every player.
func (s *GameService) SubmitAnswer(_ context.Context, g *Game, answerIndex int) (domain.AnswerOutcome, error) {
	return g.answer(answerIndex)
}

// PlayAgain leaves the podium for Home and releases the PIN.
func (s *GameService) PlayAgain(ctx context.Context, g *Game) error {
	pin, err := g.playAgain()
	if err != nil {
		return err
	}
	s.release(ctx, pin)
	return nil
}

// Close ends a game whose owner went away.
func (s *GameService) Close(ctx context.Context, g *Game) {
	s.release(ctx, g.abandon())
}

func (s *GameService) release(_ context.Context, pin string) {
	if pin == "" {
		return
	}
	s.games.Delete(pin)
	s.logger.Info("game closed", "pin", pin)
}

// Subscribe returns a channel that receives a view after every change of g.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *GameService) Subscribe(g *Game) (<-chan domain.View, func()) {
	return g.subscribe()
}
