package domain

import "time"

// Phase is one state of the screen router.
type Phase string

const (
	PhaseHome        Phase = "HOME"
	PhaseJoinRoom    Phase = "JOIN_ROOM"
	PhaseSetup       Phase = "SETUP"
	PhaseLobby       Phase = "LOBBY"
	PhaseQuestion    Phase = "QUESTION"
	PhaseLeaderboard Phase = "LEADERBOARD"
	PhasePodium      Phase = "PODIUM"
)

// Movement describes a rank change between two leaderboard snapshots.
type Movement string

const (
	MovementNone Movement = ""
	MovementUp   Movement = "up"
	MovementDown Movement = "down"
	MovementSame Movement = "same"
)

// View is the snapshot pushed to clients after every state change.
type View struct {
	Phase       Phase            `json:"phase"`
	PIN         string           `json:"pin,omitempty"`
	Loading     bool             `json:"loading"`
	Error       string           `json:"error,omitempty"`
	Players     []Player         `json:"players"`
	Question    *QuestionView    `json:"question,omitempty"`
	Leaderboard []LeaderboardRow `json:"leaderboard,omitempty"`
	Podium      *PodiumView      `json:"podium,omitempty"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// QuestionView hides correctness and carries the display order of the answers.
type QuestionView struct {
	Number    int            `json:"number"`
	Total     int            `json:"total"`
	Text      string         `json:"text"`
	Answers   []AnswerButton `json:"answers"`
	TimeLimit int            `json:"timeLimit"`
	TimeLeft  int            `json:"timeLeft"`
	Answered  bool           `json:"answered"`
}

// AnswerButton is one answer in display position; Index is the index to submit.
type AnswerButton struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Shape string `json:"shape"`
	Color string `json:"color"`
}

// AnswerStyles is the icon/color coding of the four display positions.
var AnswerStyles = [AnswersPerQuiz]struct{ Shape, Color string }{
	{"triangle", "red"},
	{"diamond", "blue"},
	{"circle", "yellow"},
	{"square", "green"},
}

// LeaderboardRow is one ranked player on the leaderboard.
type LeaderboardRow struct {
	Rank       int            `json:"rank"` // 1-based
	Name       string         `json:"name"`
	Character  Character      `json:"character"`
	Score      int            `json:"score"`
	Leader     bool           `json:"leader"`
	LastAnswer *AnswerOutcome `json:"lastAnswer,omitempty"`
	Movement   Movement       `json:"movement,omitempty"`
	Steps      int            `json:"steps,omitempty"`
}

// PodiumView lists the revealed places, third place first.
type PodiumView struct {
	Stage        int          `json:"stage"`
	ShowTitle    bool         `json:"showTitle"`
	Places       []PodiumSlot `json:"places"`
	Confetti     bool         `json:"confetti"`
	CanPlayAgain bool         `json:"canPlayAgain"`
}

// PodiumSlot is a top-three placement.
type PodiumSlot struct {
	Place    int    `json:"place"`
	Player   Player `json:"player"`
	Revealed bool   `json:"revealed"`
}
