package app

import (
	"errors"
	"testing"

	"trivia-party-service/internal/domain"
)

func TestRosterRejectsDuplicateNames(t *testing.T) {
	var r Roster
	avatar := domain.Character{Base: "sun"}

	if err := r.Add("Alice", avatar); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := r.Add("Alice", domain.Character{Base: "moon"}); !errors.Is(err, domain.ErrDuplicateName) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if r.Len() != 1 || r.Players()[0].Character.Base != "sun" {
		t.Fatalf("expected roster unchanged, got %+v", r.Players())
	}
	if err := r.Add("alice", avatar); err != nil {
		t.Fatalf("names are case-sensitive, got %v", err)
	}
}

func TestRosterAwardAllAddsDeltaToEveryone(t *testing.T) {
	var r Roster
	for _, name := range []string{"A", "B", "C"} {
		_ = r.Add(name, domain.Character{Base: "sun"})
	}

	outcomes := r.AwardAll(domain.AnswerOutcome{Correct: true, Delta: 800})
	total := 0
	for _, p := range r.Players() {
		total += p.Score
	}
	if total != 3*800 {
		t.Fatalf("expected total 2400, got %d", total)
	}
	if len(outcomes) != 3 || outcomes["B"].Delta != 800 || !outcomes["B"].Correct {
		t.Fatalf("unexpected outcomes %+v", outcomes)
	}

	r.Reset()
	if r.Len() != 0 {
		t.Fatalf("expected empty roster after reset")
	}
}
