package power

import (
	"log"
	"time"

	"github.com/sweeney/ble-joystick/internal/logic"
)

// Gate runs once at boot, before the radio exists. On a timer wake with the
// stick at rest it suspends again straight away, skipping radio start-up.
// It returns nil when startup should continue, otherwise whatever the
// suspender returned.
func Gate(cause BootCause, s logic.Snapshot, th logic.Thresholds, v logic.Variant, budget time.Duration, sus Suspender) error {
	if cause != BootTimerWake {
		return nil
	}

	cmd := logic.Classify(s, th, v)
	if logic.IsActive(cmd, s, th, v) {
		log.Printf("gate: wake with %s (x=%d y=%d button=%v), starting", cmd, s.X, s.Y, s.Button)
		return nil
	}

	return sus.Suspend(budget)
}
