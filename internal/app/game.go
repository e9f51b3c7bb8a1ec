package app

import (
	"math/rand"
	"sync"
	"time"

	"trivia-party-service/internal/domain"
	"trivia-party-service/internal/timer"
)

// podiumTimeline is when each podium stage is reached after entering the podium:
// title, third place, second place, first place with confetti, play-again button.
var podiumTimeline = []time.Duration{
	200 * time.Millisecond,
	800 * time.Millisecond,
	1600 * time.Millisecond,
	2400 * time.Millisecond,
	3500 * time.Millisecond,
}

const (
	podiumStageTitle = iota + 1
	podiumStageThird
	podiumStageSecond
	podiumStageFirst
	podiumStageButton
)

// Game is the session state of one game and the screen router driving it.
// All mutations happen under mu through the transition methods below.
type Game struct {
	clock timer.Clock
	rnd   *rand.Rand
	dwell time.Duration

	mu          sync.Mutex
	phase       domain.Phase
	quiz        domain.Quiz
	index       int
	roster      Roster
	previous    []domain.Player
	lastAnswers map[string]domain.AnswerOutcome
	pin         string
	loading     bool
	errMsg      string

	timeLeft    int
	answered    bool
	order       []int
	podiumStage int

	// turn is bumped on every screen change; timer callbacks carry the turn
	// they were scheduled in and do nothing once it moved on.
	turn        uint64
	tasks       []timer.Task
	subscribers map[chan domain.View]struct{}
}

func newGame(clock timer.Clock, rnd *rand.Rand, dwell time.Duration) *Game {
	return &Game{
		clock:       clock,
		rnd:         rnd,
		dwell:       dwell,
		phase:       domain.PhaseHome,
		lastAnswers: make(map[string]domain.AnswerOutcome),
		subscribers: make(map[chan domain.View]struct{}),
	}
}

// Phase returns the current screen.
func (g *Game) Phase() domain.Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// PIN returns the join code, empty until a quiz was created.
func (g *Game) PIN() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pin
}

// View renders the current state.
func (g *Game) View() domain.View {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.viewLocked()
}

func (g *Game) openSetup() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != domain.PhaseHome {
		return domain.ErrInvalidTransition
	}
	g.errMsg = ""
	g.moveLocked(domain.PhaseSetup)
	return nil
}

func (g *Game) openJoinRoom() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != domain.PhaseHome {
		return domain.ErrInvalidTransition
	}
	g.errMsg = ""
	g.moveLocked(domain.PhaseJoinRoom)
	return nil
}

// back leaves Setup or JoinRoom for Home. Lobby is handled by closeLobby.
func (g *Game) back() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != domain.PhaseSetup && g.phase != domain.PhaseJoinRoom {
		return domain.ErrInvalidTransition
	}
	if g.loading {
		return domain.ErrBusy
	}
	g.errMsg = ""
	g.moveLocked(domain.PhaseHome)
	return nil
}

// beginLoading marks the single outstanding request of a Setup or JoinRoom screen.
func (g *Game) beginLoading(phase domain.Phase) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != phase {
		return domain.ErrInvalidTransition
	}
	if g.loading {
		return domain.ErrBusy
	}
	g.loading = true
	g.errMsg = ""
	g.broadcastLocked()
	return nil
}

// finishLoading clears the loading flag and surfaces msg on the screen.
func (g *Game) finishLoading(msg string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.loading = false
	g.errMsg = msg
	g.broadcastLocked()
}

func (g *Game) setError(msg string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.errMsg = msg
	g.broadcastLocked()
}

// openLobby stores the generated quiz and moves Setup to Lobby. It reports
// false when the screen changed while the quiz was generated.
func (g *Game) openLobby(quiz domain.Quiz) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.loading = false
	if g.phase != domain.PhaseSetup {
		return false
	}
	g.quiz = quiz
	g.pin = quiz.ID
	g.errMsg = ""
	g.moveLocked(domain.PhaseLobby)
	return true
}

func (g *Game) addPlayer(name string, character domain.Character) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != domain.PhaseLobby {
		return domain.ErrInvalidTransition
	}
	if err := g.roster.Add(name, character); err != nil {
		g.errMsg = domain.UserMessage(err)
		g.broadcastLocked()
		return err
	}
	g.errMsg = ""
	g.broadcastLocked()
	return nil
}

func (g *Game) start() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != domain.PhaseLobby {
		return domain.ErrInvalidTransition
	}
	if g.roster.Len() == 0 {
		g.errMsg = domain.UserMessage(domain.ErrNoPlayers)
		g.broadcastLocked()
		return domain.ErrNoPlayers
	}
	if len(g.quiz.Questions) == 0 {
		return domain.ErrQuizNotFound
	}
	g.index = 0
	g.previous = nil
	g.lastAnswers = make(map[string]domain.AnswerOutcome)
	g.errMsg = ""
	g.enterQuestionLocked()
	return nil
}

// answer is an explicit answer click on the question screen.
func (g *Game) answer(index int) (domain.AnswerOutcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.phase {
	case domain.PhaseQuestion:
	case domain.PhaseLeaderboard:
		// The leaderboard always follows the submission for the current question.
		return domain.AnswerOutcome{}, domain.ErrAlreadyAnswered
	default:
		return domain.AnswerOutcome{}, domain.ErrInvalidTransition
	}
	if index < 0 || index >= len(g.quiz.Questions[g.index].Answers) {
		return domain.AnswerOutcome{}, domain.ErrInvalidAnswer
	}
	return g.submitLocked(index, g.timeLeft), nil
}

// closeLobby is Back on the lobby: the game is reset. It returns the PIN the
// game was registered under.
func (g *Game) closeLobby() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != domain.PhaseLobby {
		return "", domain.ErrInvalidTransition
	}
	return g.resetLocked(), nil
}

// playAgain resets a finished game once the podium has been fully revealed.
func (g *Game) playAgain() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase != domain.PhasePodium {
		return "", domain.ErrInvalidTransition
	}
	if g.podiumStage < podiumStageButton {
		return "", domain.ErrNotReady
	}
	return g.resetLocked(), nil
}

// abandon resets the game from any phase.
func (g *Game) abandon() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.resetLocked()
}

func (g *Game) resetLocked() string {
	pin := g.pin
	g.quiz = domain.Quiz{}
	g.index = 0
	g.roster.Reset()
	g.previous = nil
	g.lastAnswers = make(map[string]domain.AnswerOutcome)
	g.pin = ""
	g.loading = false
	g.errMsg = ""
	g.timeLeft = 0
	g.answered = false
	g.order = nil
	g.podiumStage = 0
	g.moveLocked(domain.PhaseHome)
	return pin
}

// moveLocked switches screens, cancelling every task owned by the screen left behind.
func (g *Game) moveLocked(phase domain.Phase) {
	for _, task := range g.tasks {
		task.Stop()
	}
	g.tasks = nil
	g.turn++
	g.phase = phase
	g.broadcastLocked()
}

func (g *Game) scheduleLocked(d time.Duration, fn func()) {
	turn := g.turn
	g.tasks = append(g.tasks, g.clock.AfterFunc(d, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.turn != turn {
			return
		}
		fn()
	}))
}

func (g *Game) enterQuestionLocked() {
	q := g.quiz.Questions[g.index]
	g.timeLeft = q.TimeLimit
	g.answered = false
	g.order = g.rnd.Perm(len(q.Answers))
	g.moveLocked(domain.PhaseQuestion)
	g.scheduleTickLocked()
}

func (g *Game) scheduleTickLocked() {
	g.scheduleLocked(time.Second, func() {
		if g.answered {
			return
		}
		g.timeLeft--
		if g.timeLeft <= 0 {
			g.timeLeft = 0
			g.submitLocked(domain.NoAnswer, 0)
			return
		}
		g.scheduleTickLocked()
		g.broadcastLocked()
	})
}

// submitLocked scores the current question, applies the delta to every player
// and shows the leaderboard.
func (g *Game) submitLocked(answerIndex, timeLeft int) domain.AnswerOutcome {
	g.answered = true
	outcome := ScoreAnswer(g.quiz.Questions[g.index], answerIndex, float64(timeLeft))
	// Nobody has a rank before the first question is scored.
	g.previous = nil
	if g.index > 0 {
		g.previous = Rank(g.roster.players)
	}
	g.lastAnswers = g.roster.AwardAll(outcome)
	g.moveLocked(domain.PhaseLeaderboard)
	g.scheduleLocked(g.dwell, g.advanceLocked)
	return outcome
}

func (g *Game) advanceLocked() {
	if g.index < len(g.quiz.Questions)-1 {
		g.index++
		g.enterQuestionLocked()
		return
	}
	g.podiumStage = 0
	g.moveLocked(domain.PhasePodium)
	for i, at := range podiumTimeline {
		stage := i + 1
		g.scheduleLocked(at, func() {
			g.podiumStage = stage
			g.broadcastLocked()
		})
	}
}

func (g *Game) subscribe() (<-chan domain.View, func()) {
	ch := make(chan domain.View, 8)

	g.mu.Lock()
	g.subscribers[ch] = struct{}{}
	// The channel is empty, so this cannot block.
	ch <- g.viewLocked()
	g.mu.Unlock()

	cancel := func() {
		g.mu.Lock()
		if _, ok := g.subscribers[ch]; ok {
			delete(g.subscribers, ch)
			close(ch)
		}
		g.mu.Unlock()
	}
	return ch, cancel
}

func (g *Game) broadcastLocked() {
	view := g.viewLocked()
	for ch := range g.subscribers {
		select {
		case ch <- view:
		default:
			// Drop the oldest snapshot so a slow client never blocks the game.
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
}

func (g *Game) viewLocked() domain.View {
	view := domain.View{
		Phase:     g.phase,
		PIN:       g.pin,
		Loading:   g.loading,
		Error:     g.errMsg,
		Players:   g.roster.Players(),
		UpdatedAt: g.clock.Now(),
	}

	switch g.phase {
	case domain.PhaseQuestion:
		q := g.quiz.Questions[g.index]
		buttons := make([]domain.AnswerButton, 0, len(g.order))
		for slot, original := range g.order {
			style := domain.AnswerStyles[slot%domain.AnswersPerQuiz]
			buttons = append(buttons, domain.AnswerButton{
				Index: original,
				Text:  q.Answers[original].Text,
				Shape: style.Shape,
				Color: style.Color,
			})
		}
		view.Question = &domain.QuestionView{
			Number:    g.index + 1,
			Total:     len(g.quiz.Questions),
			Text:      q.Question,
			Answers:   buttons,
			TimeLimit: q.TimeLimit,
			TimeLeft:  g.timeLeft,
			Answered:  g.answered,
		}
	case domain.PhaseLeaderboard:
		view.Leaderboard = g.leaderboardLocked()
	case domain.PhasePodium:
		view.Podium = g.podiumLocked()
	}
	return view
}

func (g *Game) leaderboardLocked() []domain.LeaderboardRow {
	ranked := Rank(g.roster.players)
	rows := make([]domain.LeaderboardRow, 0, len(ranked))
	for i, p := range ranked {
		row := domain.LeaderboardRow{
			Rank:      i + 1,
			Name:      p.Name,
			Character: p.Character,
			Score:     p.Score,
			Leader:    i == 0,
		}
		if outcome, ok := g.lastAnswers[p.Name]; ok {
			outcome := outcome
			row.LastAnswer = &outcome
		}
		row.Movement, row.Steps = RankMovement(g.previous, p.Name, i)
		rows = append(rows, row)
	}
	return rows
}

func (g *Game) podiumLocked() *domain.PodiumView {
	ranked := Rank(g.roster.players)
	if len(ranked) > 3 {
		ranked = ranked[:3]
	}
	view := &domain.PodiumView{
		Stage:        g.podiumStage,
		ShowTitle:    g.podiumStage >= podiumStageTitle,
		Confetti:     g.podiumStage >= podiumStageFirst,
		CanPlayAgain: g.podiumStage >= podiumStageButton,
	}
	revealAt := map[int]int{3: podiumStageThird, 2: podiumStageSecond, 1: podiumStageFirst}
	for place := len(ranked); place >= 1; place-- {
		view.Places = append(view.Places, domain.PodiumSlot{
			Place:    place,
			Player:   ranked[place-1],
			Revealed: g.podiumStage >= revealAt[place],
		})
	}
	return view
}
