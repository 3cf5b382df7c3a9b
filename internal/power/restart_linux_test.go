//go:build linux

package power

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSuspendToRAMWritesSysfs(t *testing.T) {
	dir := t.TempDir()
	alarm := filepath.Join(dir, "wakealarm")
	state := filepath.Join(dir, "state")
	for _, p := range []string{alarm, state} {
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	r := &Restarter{RTC: true, WakeAlarm: alarm, PowerState: state}
	if err := r.suspendToRAM(300 * time.Millisecond); err != nil {
		t.Fatalf("suspendToRAM: %v", err)
	}

	got, _ := os.ReadFile(alarm)
	if string(got) != "+1" {
		t.Errorf("wakealarm: got %q, want +1", got)
	}
	got, _ = os.ReadFile(state)
	if string(got) != "mem" {
		t.Errorf("state: got %q, want mem", got)
	}
}

func TestSuspendToRAMRoundsUp(t *testing.T) {
	dir := t.TempDir()
	alarm := filepath.Join(dir, "wakealarm")
	state := filepath.Join(dir, "state")
	for _, p := range []string{alarm, state} {
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	r := &Restarter{RTC: true, WakeAlarm: alarm, PowerState: state}
	if err := r.suspendToRAM(2100 * time.Millisecond); err != nil {
		t.Fatalf("suspendToRAM: %v", err)
	}

	got, _ := os.ReadFile(alarm)
	if string(got) != "+3" {
		t.Errorf("wakealarm: got %q, want +3", got)
	}
}

func TestSuspendToRAMMissingAlarm(t *testing.T) {
	r := &Restarter{RTC: true, WakeAlarm: "/nonexistent/wakealarm", PowerState: "/nonexistent/state"}
	if err := r.suspendToRAM(time.Second); err == nil {
		t.Error("expected error for missing wake alarm")
	}
}

func TestNanosleep(t *testing.T) {
	start := time.Now()
	if err := nanosleep(5 * time.Millisecond); err != nil {
		t.Fatalf("nanosleep: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 5*time.Millisecond {
		t.Errorf("slept %v, want at least 5ms", elapsed)
	}
}
