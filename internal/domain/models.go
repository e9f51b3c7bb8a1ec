package domain

import "time"

// Answer is one of the four choices of a question.
type Answer struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question models an MCQ question with exactly one correct answer.
type Question struct {
	Question  string   `json:"question"`
	Answers   []Answer `json:"answers"`
	TimeLimit int      `json:"timeLimit"` // seconds, 10..30
}

// CorrectIndex returns the index of the correct answer, or -1.
func (q Question) CorrectIndex() int {
	for i, a := range q.Answers {
		if a.IsCorrect {
			return i
		}
	}
	return -1
}

// Quiz is a generated set of questions, keyed by the game PIN it was created for.
type Quiz struct {
	ID        string     `json:"id"`
	Topic     string     `json:"topic"`
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Character is the avatar a player picked in the lobby.
// Accessories are disabled; Accessory is always nil.
type Character struct {
	Base      string  `json:"base"`
	Accessory *string `json:"accessory"`
}

// DefaultAvatar is preselected in the character picker.
const DefaultAvatar = "sun"

// Player represents a joined player and their accumulated score.
type Player struct {
	Name      string    `json:"name"`
	Score     int       `json:"score"`
	Character Character `json:"character"`
}

// AnswerOutcome is the result of the last answer as seen by one player.
type AnswerOutcome struct {
	Correct bool `json:"correct"`
	Delta   int  `json:"delta"`
}

// NoAnswer marks a submission without a chosen answer (timeout).
const NoAnswer = -1

// Game rules shared by the router and the transport.
const (
	PINLength       = 6
	MaxNameLength   = 12
	MinQuestions    = 3
	MaxQuestions    = 15
	AnswersPerQuiz  = 4
	MinTimeLimit    = 10
	MaxTimeLimit    = 30
	MinScoreCorrect = 500
	MaxScoreCorrect = 1000
)
