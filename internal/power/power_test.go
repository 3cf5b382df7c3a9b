package power

import (
	"testing"
)

func TestParseBootCause(t *testing.T) {
	tests := []struct {
		in   string
		want BootCause
	}{
		{"", BootCold},
		{"cold", BootCold},
		{"reset", BootReset},
		{"timer", BootTimerWake},
		{" TIMER ", BootTimerWake},
		{"garbage", BootCold},
	}
	for _, tt := range tests {
		if got := ParseBootCause(tt.in); got != tt.want {
			t.Errorf("ParseBootCause(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestReadBootCause(t *testing.T) {
	t.Setenv(EnvBootCause, "timer")
	if got := ReadBootCause(); got != BootTimerWake {
		t.Errorf("got %v, want timer", got)
	}

	t.Setenv(EnvBootCause, "")
	if got := ReadBootCause(); got != BootCold {
		t.Errorf("got %v, want cold", got)
	}
}

func TestBootCauseRoundTripsThroughEnv(t *testing.T) {
	for _, c := range []BootCause{BootCold, BootReset, BootTimerWake} {
		if got := ParseBootCause(c.String()); got != c {
			t.Errorf("%v: parsed back as %v", c, got)
		}
	}
}

func TestWithBootCause(t *testing.T) {
	env := []string{"PATH=/usr/bin", EnvBootCause + "=reset", "HOME=/root"}

	got := withBootCause(env, BootTimerWake)

	want := []string{"PATH=/usr/bin", "HOME=/root", EnvBootCause + "=timer"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("env[%d]: got %q, want %q", i, got[i], want[i])
		}
	}

	// Input must not be modified.
	if env[1] != EnvBootCause+"=reset" {
		t.Errorf("input env modified: %v", env)
	}
}
