package power

import (
	"errors"
	"testing"

	"github.com/sweeney/ble-joystick/internal/logic"
)

var (
	rest    = logic.Snapshot{X: 2000, Y: 2000}
	pushed  = logic.Snapshot{X: 2000, Y: 100}
	pressed = logic.Snapshot{X: 2000, Y: 2000, Button: true}
)

func TestGateTimerWakeAtRestSuspends(t *testing.T) {
	sus := NewFakeSuspender()

	err := Gate(BootTimerWake, rest, logic.DefaultThresholds, logic.DefaultVariant, DefaultBudget, sus)
	if !errors.Is(err, ErrSuspended) {
		t.Fatalf("expected ErrSuspended, got %v", err)
	}
	if len(sus.Calls) != 1 {
		t.Fatalf("expected 1 suspend call, got %d", len(sus.Calls))
	}
	if sus.Calls[0] != DefaultBudget {
		t.Errorf("expected budget %v, got %v", DefaultBudget, sus.Calls[0])
	}
}

func TestGateColdBootAtRestContinues(t *testing.T) {
	sus := NewFakeSuspender()

	if err := Gate(BootCold, rest, logic.DefaultThresholds, logic.DefaultVariant, DefaultBudget, sus); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if len(sus.Calls) != 0 {
		t.Errorf("expected no suspend, got %d calls", len(sus.Calls))
	}
}

func TestGateResetAtRestContinues(t *testing.T) {
	sus := NewFakeSuspender()

	if err := Gate(BootReset, rest, logic.DefaultThresholds, logic.DefaultVariant, DefaultBudget, sus); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if len(sus.Calls) != 0 {
		t.Errorf("expected no suspend, got %d calls", len(sus.Calls))
	}
}

func TestGateTimerWakeWithMotionContinues(t *testing.T) {
	for name, s := range map[string]logic.Snapshot{"pushed": pushed, "pressed": pressed} {
		t.Run(name, func(t *testing.T) {
			sus := NewFakeSuspender()
			if err := Gate(BootTimerWake, s, logic.DefaultThresholds, logic.DefaultVariant, DefaultBudget, sus); err != nil {
				t.Fatalf("expected nil, got %v", err)
			}
			if len(sus.Calls) != 0 {
				t.Errorf("expected no suspend, got %d calls", len(sus.Calls))
			}
		})
	}
}

func TestGateStrictVariantButtonAloneSuspends(t *testing.T) {
	sus := NewFakeSuspender()

	err := Gate(BootTimerWake, pressed, logic.DefaultThresholds, logic.Variant{}, DefaultBudget, sus)
	if !errors.Is(err, ErrSuspended) {
		t.Fatalf("expected ErrSuspended, got %v", err)
	}
}

func TestGateSuspendFailurePropagates(t *testing.T) {
	sus := NewFakeSuspender()
	sus.Err = errors.New("exec failed")

	err := Gate(BootTimerWake, rest, logic.DefaultThresholds, logic.DefaultVariant, DefaultBudget, sus)
	if err == nil || err.Error() != "exec failed" {
		t.Fatalf("expected suspender error, got %v", err)
	}
}
