package domain

import (
	"strings"
	"unicode/utf8"
)

// NormalizePIN keeps the digits of raw, at most PINLength of them, the way a
// pasted join code is cleaned up.
func NormalizePIN(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r < '0' || r > '9' {
			continue
		}
		b.WriteRune(r)
		if b.Len() == PINLength {
			break
		}
	}
	return b.String()
}

// ValidPIN reports whether pin is exactly PINLength digits.
func ValidPIN(pin string) bool {
	return len(pin) == PINLength && NormalizePIN(pin) == pin
}

// NormalizeName trims a nickname and checks its length.
func NormalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}

// ValidateQuestion checks the structural invariants of a generated question.
func ValidateQuestion(q Question) bool {
	if strings.TrimSpace(q.Question) == "" || len(q.Answers) != AnswersPerQuiz {
		return false
	}
	correct := 0
	for _, a := range q.Answers {
		if a.IsCorrect {
			correct++
		}
	}
	return correct == 1 && q.TimeLimit >= MinTimeLimit && q.TimeLimit <= MaxTimeLimit
}
