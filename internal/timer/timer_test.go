package timer

import (
	"testing"
	"time"
)

func TestManualRunsTasksInDueOrder(t *testing.T) {
	clock := NewManual(time.Unix(0, 0))
	var fired []string

	clock.AfterFunc(2*time.Second, func() { fired = append(fired, "b") })
	clock.AfterFunc(time.Second, func() { fired = append(fired, "a") })
	clock.AfterFunc(5*time.Second, func() { fired = append(fired, "c") })

	clock.Advance(3 * time.Second)
	if len(fired) != 2 || fired[0] != "a" || fired[1] != "b" {
		t.Fatalf("expected [a b], got %v", fired)
	}
	if clock.Pending() != 1 {
		t.Fatalf("expected 1 pending task, got %d", clock.Pending())
	}
	if got := clock.Now(); !got.Equal(time.Unix(3, 0)) {
		t.Fatalf("expected clock at 3s, got %v", got)
	}
}

func TestManualStopCancelsTask(t *testing.T) {
	clock := NewManual(time.Unix(0, 0))
	fired := false
	task := clock.AfterFunc(time.Second, func() { fired = true })

	if !task.Stop() {
		t.Fatalf("expected first stop to succeed")
	}
	if task.Stop() {
		t.Fatalf("expected second stop to report false")
	}
	clock.Advance(time.Minute)
	if fired {
		t.Fatalf("stopped task must not fire")
	}
}

func TestManualChainedTasksFireWithinAdvance(t *testing.T) {
	clock := NewManual(time.Unix(0, 0))
	ticks := 0
	var tick func()
	tick = func() {
		ticks++
		clock.AfterFunc(time.Second, tick)
	}
	clock.AfterFunc(time.Second, tick)

	clock.Advance(5 * time.Second)
	if ticks != 5 {
		t.Fatalf("expected 5 ticks, got %d", ticks)
	}
}
