// Package power decides when the device may skip startup and owns the
// platform suspend primitive.
//
// Suspension is a restart boundary: a successful Suspend never returns, and
// the process starts again from main with BootTimerWake as its boot cause.
package power

import (
	"errors"
	"os"
	"strings"
	"time"
)

// EnvBootCause carries the boot cause across a suspend/restart cycle.
const EnvBootCause = "JOYSTICK_BOOT_CAUSE"

// BootCause is why the process is running.
type BootCause int

const (
	BootCold BootCause = iota
	BootReset
	BootTimerWake
)

func (b BootCause) String() string {
	switch b {
	case BootReset:
		return "reset"
	case BootTimerWake:
		return "timer"
	default:
		return "cold"
	}
}

// ParseBootCause converts the EnvBootCause value. Anything unrecognized is
// treated as a cold boot so an unknown start never skips the radio.
func ParseBootCause(s string) BootCause {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reset":
		return BootReset
	case "timer":
		return BootTimerWake
	default:
		return BootCold
	}
}

// ReadBootCause reads the boot cause from the environment.
func ReadBootCause() BootCause {
	return ParseBootCause(os.Getenv(EnvBootCause))
}

// Suspender is the platform suspend primitive.
type Suspender interface {
	// Suspend powers down for budget and restarts the process.
	// It does not return on success. A returned error means the device
	// could not suspend.
	Suspend(budget time.Duration) error
}

// ErrSuspended is returned by FakeSuspender in place of a restart.
var ErrSuspended = errors.New("power: suspended")

// DefaultBudget is how long each suspend lasts before the wake check.
const DefaultBudget = 300 * time.Millisecond

// withBootCause returns env with EnvBootCause set to cause, replacing any
// existing value.
func withBootCause(env []string, cause BootCause) []string {
	prefix := EnvBootCause + "="
	out := make([]string, 0, len(env)+1)
	for _, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			continue
		}
		out = append(out, kv)
	}
	return append(out, prefix+cause.String())
}
