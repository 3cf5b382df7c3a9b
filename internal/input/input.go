// Package input samples the joystick hardware: two analog axes and a button.
// The real implementation reads the axes from an ADS1115 over I2C and the
// button from the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package input

import "github.com/sweeney/ble-joystick/internal/logic"

// Reader samples the joystick.
type Reader interface {
	// Read returns a fresh snapshot. Axis values are clamped to
	// 0..logic.AxisMax and the button is already in logical form
	// (true = pressed).
	Read() (logic.Snapshot, error)

	// Close releases hardware resources.
	Close() error
}

// Default wiring (BCM numbering, ADS1115 channels).
const (
	DefaultPinButton = 26
	DefaultChannelX  = 0
	DefaultChannelY  = 1
)
