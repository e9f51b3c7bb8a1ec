package domain

import "errors"

var (
	// ErrInvalidTransition is returned when an action is not allowed in the current phase.
	ErrInvalidTransition = errors.New("action not allowed in current phase")
	// ErrBusy is returned while a quiz generation or join request is outstanding.
	ErrBusy = errors.New("a request is already in progress")
	// ErrInvalidQuizRequest indicates an empty topic or a question count out of range.
	ErrInvalidQuizRequest = errors.New("invalid quiz request")
	// ErrQuizGeneration covers empty, malformed or failed quiz source responses.
	ErrQuizGeneration = errors.New("failed to generate quiz")
	// ErrInvalidPIN is returned when a join code does not resolve to a live game.
	ErrInvalidPIN = errors.New("invalid game pin")
	// ErrDuplicateName is returned when a nickname is already taken in the lobby.
	ErrDuplicateName = errors.New("player name already taken")
	// ErrInvalidName indicates an empty or too long nickname.
	ErrInvalidName = errors.New("invalid player name")
	// ErrNoPlayers is returned when starting a game with an empty roster.
	ErrNoPlayers = errors.New("at least one player must join before starting")
	// ErrAlreadyAnswered is returned for a second submission on the same question.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrInvalidAnswer indicates an answer index outside the question's answers.
	ErrInvalidAnswer = errors.New("invalid answer index")
	// ErrNotReady is returned when the podium has not finished revealing.
	ErrNotReady = errors.New("podium is still revealing")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrGameNotFound is returned when a PIN has no live game.
	ErrGameNotFound = errors.New("game not found")
)

// UserMessage maps an error to the text shown on the screen that raised it.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrQuizGeneration):
		return "Failed to generate a quiz. The topic might be too specific or the response was empty. Please try another topic."
	case errors.Is(err, ErrInvalidPIN):
		return "Invalid Game PIN. Please check the code and try again."
	case errors.Is(err, ErrDuplicateName):
		return "This name is already taken. Please choose another one."
	case errors.Is(err, ErrNoPlayers):
		return "At least one player must join before starting!"
	default:
		return err.Error()
	}
}
