// Package mqtt mirrors joystick activity to an MQTT broker, with an
// abstraction for testing. The mirror is optional and off by default.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/ble-joystick/internal/logic"
)

// Topic is the MQTT topic for command transitions.
const Topic = "input/joystick/commands"

// TopicSystem is the MQTT topic for wake-cycle lifecycle events.
const TopicSystem = "input/joystick/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a command transition to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event CommandEvent) error

	// PublishSystem sends a lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// CommandEvent is a command transition seen by the activity loop.
type CommandEvent struct {
	Timestamp time.Time
	Command   logic.Command
	Delivered bool // whether the BLE notification went out
}

// SystemEvent is a wake-cycle lifecycle event.
type SystemEvent struct {
	Timestamp time.Time
	Event     string // "WAKE", "SUSPEND", "SHUTDOWN"
	Reason    string // e.g. "IDLE", "RADIO_FAILURE", "SIGTERM"
	BootCause string // WAKE only
}

// Payload represents the MQTT message payload for a command transition.
type Payload struct {
	Joystick JoystickPayload `json:"joystick"`
}

// JoystickPayload contains the command details.
type JoystickPayload struct {
	Timestamp string `json:"timestamp"`
	Command   string `json:"command"`
	Delivered bool   `json:"delivered"`
}

// FormatPayload creates the JSON payload for a command transition.
func FormatPayload(event CommandEvent) ([]byte, error) {
	payload := Payload{
		Joystick: JoystickPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
			Command:   string(event.Command),
			Delivered: event.Delivered,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for lifecycle events.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the lifecycle event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
	BootCause string `json:"boot_cause,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a lifecycle event.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
			Event:     event.Event,
			Reason:    event.Reason,
			BootCause: event.BootCause,
		},
	}
	return json.Marshal(payload)
}
