package app

import (
	"math"
	"sort"

	"trivia-party-service/internal/domain"
)

// ScoreAnswer scores a submission for q. answerIndex may be domain.NoAnswer.
// A correct answer earns 500 points plus up to 500 more for the share of the
// time limit left on the clock.
func ScoreAnswer(q domain.Question, answerIndex int, timeLeft float64) domain.AnswerOutcome {
	if answerIndex < 0 || answerIndex >= len(q.Answers) || !q.Answers[answerIndex].IsCorrect {
		return domain.AnswerOutcome{Correct: false, Delta: 0}
	}
	if q.TimeLimit <= 0 {
		return domain.AnswerOutcome{Correct: true, Delta: domain.MaxScoreCorrect}
	}
	limit := float64(q.TimeLimit)
	timeLeft = math.Max(0, math.Min(timeLeft, limit))
	bonus := timeLeft / limit * float64(domain.MaxScoreCorrect-domain.MinScoreCorrect)
	return domain.AnswerOutcome{
		Correct: true,
		Delta:   int(math.Round(float64(domain.MinScoreCorrect) + bonus)),
	}
}

// Rank returns a copy of players ordered by descending score. Equal scores
// keep their relative order.
func Rank(players []domain.Player) []domain.Player {
	ranked := make([]domain.Player, len(players))
	copy(ranked, players)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// RankMovement compares a player's position in the previous ranking with
// newIndex. Players absent from the previous ranking get no indicator.
func RankMovement(previous []domain.Player, name string, newIndex int) (domain.Movement, int) {
	oldIndex := -1
	for i, p := range previous {
		if p.Name == name {
			oldIndex = i
			break
		}
	}
	if oldIndex < 0 {
		return domain.MovementNone, 0
	}
	switch change := oldIndex - newIndex; {
	case change > 0:
		return domain.MovementUp, change
	case change < 0:
		return domain.MovementDown, -change
	default:
		return domain.MovementSame, 0
	}
}
