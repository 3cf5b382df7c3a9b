//go:build linux

package power

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

const (
	defaultWakeAlarm  = "/sys/class/rtc/rtc0/wakealarm"
	defaultPowerState = "/sys/power/state"
)

// Restarter suspends by sleeping (or by a real RTC-timed system suspend)
// and then replacing the process image with a fresh copy of itself.
type Restarter struct {
	exe  string
	args []string

	// RTC enables system suspend-to-RAM with an RTC wake alarm.
	RTC        bool
	WakeAlarm  string
	PowerState string
}

// NewRestarter creates a Restarter for the running binary.
func NewRestarter(rtc bool) (*Restarter, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}
	return &Restarter{
		exe:        exe,
		args:       os.Args,
		RTC:        rtc,
		WakeAlarm:  defaultWakeAlarm,
		PowerState: defaultPowerState,
	}, nil
}

// Suspend sleeps for budget and re-executes the binary with the boot cause
// set to timer. It only returns if the exec fails.
func (r *Restarter) Suspend(budget time.Duration) error {
	slept := false
	if r.RTC {
		if err := r.suspendToRAM(budget); err != nil {
			log.Printf("power: rtc suspend failed, sleeping instead: %v", err)
		} else {
			slept = true
		}
	}
	if !slept {
		if err := nanosleep(budget); err != nil {
			return fmt.Errorf("sleep: %w", err)
		}
	}

	env := withBootCause(os.Environ(), BootTimerWake)
	if err := unix.Exec(r.exe, r.args, env); err != nil {
		return fmt.Errorf("re-exec %s: %w", r.exe, err)
	}
	return nil
}

// suspendToRAM arms the RTC alarm and suspends the whole system. The write to
// the power state file blocks until the system resumes. The RTC has one
// second resolution, so the budget is rounded up.
func (r *Restarter) suspendToRAM(budget time.Duration) error {
	secs := int64((budget + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	// The alarm must be cleared before it can be re-armed.
	if err := os.WriteFile(r.WakeAlarm, []byte("0"), 0); err != nil {
		return fmt.Errorf("clear wake alarm: %w", err)
	}
	if err := os.WriteFile(r.WakeAlarm, []byte("+"+strconv.FormatInt(secs, 10)), 0); err != nil {
		return fmt.Errorf("arm wake alarm: %w", err)
	}
	if err := os.WriteFile(r.PowerState, []byte("mem"), 0); err != nil {
		return fmt.Errorf("enter suspend: %w", err)
	}
	return nil
}

func nanosleep(d time.Duration) error {
	req := unix.NsecToTimespec(d.Nanoseconds())
	for {
		var rem unix.Timespec
		err := unix.Nanosleep(&req, &rem)
		if errors.Is(err, unix.EINTR) {
			req = rem
			continue
		}
		return err
	}
}
