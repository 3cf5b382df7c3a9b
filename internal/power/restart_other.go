//go:build !linux

package power

import (
	"errors"
	"time"
)

// Restarter is not available on non-Linux platforms.
type Restarter struct{}

// NewRestarter returns an error on non-Linux platforms.
func NewRestarter(rtc bool) (*Restarter, error) {
	return nil, errors.New("power: restart not supported on this platform (requires Linux)")
}

// Suspend is not implemented on non-Linux platforms.
func (r *Restarter) Suspend(budget time.Duration) error {
	return errors.New("power: not supported")
}
