package power

import "time"

// FakeSuspender records suspend calls instead of powering down.
type FakeSuspender struct {
	// Calls contains the budget of every Suspend call.
	Calls []time.Duration

	// Err, if set, is returned instead of ErrSuspended.
	Err error

	// OnSuspend, if set, runs before Suspend returns.
	OnSuspend func()
}

// NewFakeSuspender creates a FakeSuspender.
func NewFakeSuspender() *FakeSuspender {
	return &FakeSuspender{}
}

// Suspend records the call and returns ErrSuspended.
func (f *FakeSuspender) Suspend(budget time.Duration) error {
	f.Calls = append(f.Calls, budget)
	if f.OnSuspend != nil {
		f.OnSuspend()
	}
	if f.Err != nil {
		return f.Err
	}
	return ErrSuspended
}
