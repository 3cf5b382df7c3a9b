// Package status provides a thread-safe status tracker for the joystick.
// It is written by the activity loop and read by HTTP handlers.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/ble-joystick/internal/link"
	"github.com/sweeney/ble-joystick/internal/logic"
)

// Config contains the wake-cycle configuration for display.
type Config struct {
	PollMs        int64
	SettleMs      int64
	IdleTimeoutMs int64
	BudgetMs      int64
	Low           int
	High          int
	LeftAsSelect  bool
	ButtonWakes   bool
	Name          string
	BootCause     string
	Broker        string // empty = MQTT mirror disabled
	HTTPAddr      string
}

// Snapshot is a point-in-time view of the wake cycle.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	Command       logic.Command
	Link          link.State
	Connections   uint64
	Counts        logic.Counts
	LastActivity  time.Time
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the wake cycle started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// IdleFor returns the time since the last operator activity.
func (s Snapshot) IdleFor() time.Duration {
	if s.LastActivity.IsZero() {
		return s.Uptime()
	}
	return s.Now.Sub(s.LastActivity)
}

// Tracker holds mutable state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Command:      logic.CommandCenter,
			StartTime:    startTime,
			LastActivity: startTime,
			Config:       cfg,
		},
	}
}

// Update records the loop's view after a tick.
func (t *Tracker) Update(cmd logic.Command, st link.State, connections uint64, counts logic.Counts, lastActivity time.Time) {
	t.mu.Lock()
	t.snap.Command = cmd
	t.snap.Link = st
	t.snap.Connections = connections
	t.snap.Counts = counts
	t.snap.LastActivity = lastActivity
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
