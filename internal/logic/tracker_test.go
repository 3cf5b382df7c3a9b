package logic

import (
	"testing"
	"time"
)

var (
	center = Snapshot{X: 2000, Y: 2000}
	up     = Snapshot{X: 2000, Y: 500}
	right  = Snapshot{X: 3500, Y: 2000}
	button = Snapshot{X: 2000, Y: 2000, Button: true}
)

func newTestTracker(start time.Time) *Tracker {
	return NewTracker(DefaultThresholds, DefaultVariant, 15*time.Second, start)
}

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr := newTestTracker(start)

	if tr.LastCommand() != CommandCenter {
		t.Errorf("expected initial command CENTER, got %s", tr.LastCommand())
	}
	if !tr.LastActivity().Equal(start) {
		t.Errorf("expected lastActivity %v, got %v", start, tr.LastActivity())
	}
}

func TestTrackerCenterAtRestSendsNothing(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr := newTestTracker(now)

	for i := 0; i < 10; i++ {
		d := tr.Process(center, now.Add(time.Duration(i)*20*time.Millisecond))
		if d.Send {
			t.Fatalf("iteration %d: unexpected send of %s", i, d.Command)
		}
		if d.Active {
			t.Fatalf("iteration %d: CENTER should not be active", i)
		}
	}
}

func TestTrackerSendsOnlyOnTransition(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr := newTestTracker(now)

	d := tr.Process(up, now)
	if !d.Send || d.Command != CommandUp {
		t.Fatalf("expected send UP, got send=%v cmd=%s", d.Send, d.Command)
	}

	// Same command again: no transition.
	d = tr.Process(up, now.Add(20*time.Millisecond))
	if d.Send {
		t.Error("repeated UP should not send")
	}

	d = tr.Process(right, now.Add(40*time.Millisecond))
	if !d.Send || d.Command != CommandRight {
		t.Errorf("expected send RIGHT, got send=%v cmd=%s", d.Send, d.Command)
	}

	// Release is a transition too.
	d = tr.Process(center, now.Add(60*time.Millisecond))
	if !d.Send || d.Command != CommandCenter {
		t.Errorf("expected send CENTER, got send=%v cmd=%s", d.Send, d.Command)
	}

	c := tr.CountsSnapshot()
	if c.Samples != 4 {
		t.Errorf("expected 4 samples, got %d", c.Samples)
	}
	if c.Transitions != 3 {
		t.Errorf("expected 3 transitions, got %d", c.Transitions)
	}
}

func TestTrackerIdleAfterTimeout(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr := newTestTracker(start)

	// Exactly at the timeout is not yet idle.
	d := tr.Process(center, start.Add(15*time.Second))
	if d.Idle {
		t.Error("should not be idle at exactly the timeout")
	}

	d = tr.Process(center, start.Add(15*time.Second+time.Millisecond))
	if !d.Idle {
		t.Error("should be idle past the timeout")
	}
}

func TestTrackerIdleWithoutSample(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr := newTestTracker(start)

	if tr.Idle(start.Add(10 * time.Second)) {
		t.Error("should not be idle after 10s")
	}
	if !tr.Idle(start.Add(16 * time.Second)) {
		t.Error("should be idle after 16s")
	}
	if c := tr.CountsSnapshot(); c.Samples != 0 {
		t.Errorf("Idle should not count samples, got %d", c.Samples)
	}
}

func TestTrackerActivityResetsClock(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr := newTestTracker(start)

	// Hold the stick up for 20s: never idle.
	for i := 0; i <= 20; i++ {
		d := tr.Process(up, start.Add(time.Duration(i)*time.Second))
		if d.Idle {
			t.Fatalf("second %d: idle while stick held", i)
		}
	}

	// Release at 20s, idle 15s after.
	release := start.Add(20 * time.Second)
	if d := tr.Process(center, release.Add(14*time.Second)); d.Idle {
		t.Error("should not be idle 14s after release")
	}
	if d := tr.Process(center, release.Add(16*time.Second)); !d.Idle {
		t.Error("should be idle 16s after release")
	}
}

func TestTrackerButtonHeldKeepsAwake(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr := newTestTracker(start)

	for i := 0; i <= 30; i++ {
		if d := tr.Process(button, start.Add(time.Duration(i)*time.Second)); d.Idle {
			t.Fatalf("second %d: idle while button held", i)
		}
	}
}

func TestTrackerStrictVariantButtonDoesNotKeepAwake(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr := NewTracker(DefaultThresholds, Variant{}, 15*time.Second, start)

	d := tr.Process(button, start)
	if !d.Send || d.Command != CommandSelect {
		t.Errorf("button should still send SELECT, got send=%v cmd=%s", d.Send, d.Command)
	}
	if d.Active {
		t.Error("button should not count as activity in strict variant")
	}

	if d := tr.Process(button, start.Add(16*time.Second)); !d.Idle {
		t.Error("expected idle with only the button held in strict variant")
	}
}

func TestTrackerObserveEpoch(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr := newTestTracker(start)

	if tr.ObserveEpoch(0, start.Add(time.Second)) {
		t.Error("unchanged epoch should not reset the clock")
	}

	connected := start.Add(10 * time.Second)
	if !tr.ObserveEpoch(1, connected) {
		t.Fatal("new epoch should reset the clock")
	}
	if !tr.LastActivity().Equal(connected) {
		t.Errorf("expected lastActivity %v, got %v", connected, tr.LastActivity())
	}

	// 20s after start but only 10s after connecting: not idle.
	if d := tr.Process(center, start.Add(20*time.Second)); d.Idle {
		t.Error("connection should count as activity")
	}

	if tr.ObserveEpoch(1, start.Add(21*time.Second)) {
		t.Error("same epoch observed twice should not reset")
	}
}
