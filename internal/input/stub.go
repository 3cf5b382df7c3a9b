//go:build !linux

package input

import (
	"errors"

	"github.com/sweeney/ble-joystick/internal/logic"
)

// Config is accepted for API parity with the Linux build.
type Config struct {
	I2CBus    string
	ChannelX  int
	ChannelY  int
	PinButton int
}

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader returns an error on non-Linux platforms.
func NewRealReader(cfg Config) (*RealReader, error) {
	return nil, errors.New("input: not supported on this platform (requires Linux)")
}

// Read is not implemented on non-Linux platforms.
func (r *RealReader) Read() (logic.Snapshot, error) {
	return logic.Snapshot{}, errors.New("input: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealReader) Close() error {
	return nil
}
