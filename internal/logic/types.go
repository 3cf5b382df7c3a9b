// Package logic contains the pure decision logic of the joystick: command
// classification and idle/transition tracking.
// This package has NO external dependencies (no GPIO, radio, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Command is a discrete joystick command. The string value is also the
// notification payload sent to the receiver.
type Command string

const (
	CommandCenter Command = "CENTER"
	CommandUp     Command = "UP"
	CommandDown   Command = "DOWN"
	CommandLeft   Command = "LEFT"
	CommandRight  Command = "RIGHT"
	CommandSelect Command = "SELECT"
)

// Payload returns the wire encoding of the command: its name as ASCII bytes.
func (c Command) Payload() []byte {
	return []byte(c)
}

// AxisMax is the top of the digitization range for both axes.
const AxisMax = 4095

// Snapshot is a single sample of the joystick hardware.
type Snapshot struct {
	X      int  // 0..AxisMax
	Y      int  // 0..AxisMax, low = stick pushed up
	Button bool // true = pressed
}

// Thresholds defines the dead zone shared by both axes.
// A value inside [Low, High] is centered.
type Thresholds struct {
	Low  int
	High int
}

// DefaultThresholds is the dead zone used when none is configured.
var DefaultThresholds = Thresholds{Low: 1300, High: 2700}

// Variant selects between the behaviours seen across device builds.
type Variant struct {
	// LeftAsSelect maps a left deflection to SELECT instead of LEFT.
	LeftAsSelect bool
	// ButtonIsActivity makes a held button keep the device awake.
	ButtonIsActivity bool
}

// DefaultVariant is the canonical mapping.
var DefaultVariant = Variant{ButtonIsActivity: true}

// Decision is the outcome of feeding one sample to a Tracker.
type Decision struct {
	Timestamp time.Time
	Command   Command
	// Send is true when Command differs from the last transmitted command.
	Send bool
	// Active is true when the sample counted as operator activity.
	Active bool
	// Idle is true once no activity has been seen for longer than the timeout.
	Idle bool
}

// Counts tracks activity since the tracker was created.
type Counts struct {
	Samples     int
	Transitions int
}
