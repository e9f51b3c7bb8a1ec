package app

import "trivia-party-service/internal/domain"

// Roster holds the joined players in join order.
type Roster struct {
	players []domain.Player
}

// Add appends a player with a zero score. Names are matched exactly.
func (r *Roster) Add(name string, character domain.Character) error {
	if r.Has(name) {
		return domain.ErrDuplicateName
	}
	r.players = append(r.players, domain.Player{Name: name, Score: 0, Character: character})
	return nil
}

func (r *Roster) Has(name string) bool {
	for _, p := range r.players {
		if p.Name == name {
			return true
		}
	}
	return false
}

func (r *Roster) Len() int { return len(r.players) }

// Players returns a copy of the roster.
func (r *Roster) Players() []domain.Player {
	out := make([]domain.Player, len(r.players))
	copy(out, r.players)
	return out
}

// AwardAll applies the same outcome to every player and returns the
// per-player outcomes keyed by name.
func (r *Roster) AwardAll(outcome domain.AnswerOutcome) map[string]domain.AnswerOutcome {
	outcomes := make(map[string]domain.AnswerOutcome, len(r.players))
	for i := range r.players {
		r.players[i].Score += outcome.Delta
		outcomes[r.players[i].Name] = outcome
	}
	return outcomes
}

// Reset removes every player.
func (r *Roster) Reset() {
	r.players = nil
}
