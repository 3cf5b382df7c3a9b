package logic

import "time"

// Tracker detects command transitions and tracks idle time.
type Tracker struct {
	thresholds   Thresholds
	variant      Variant
	idleTimeout  time.Duration
	last         Command
	lastActivity time.Time
	epoch        uint64
	counts       Counts
}

// NewTracker creates a tracker whose activity clock starts at startTime.
// The last transmitted command starts as CENTER, the rest state.
func NewTracker(th Thresholds, v Variant, idleTimeout time.Duration, startTime time.Time) *Tracker {
	return &Tracker{
		thresholds:   th,
		variant:      v,
		idleTimeout:  idleTimeout,
		last:         CommandCenter,
		lastActivity: startTime,
	}
}

// Process classifies a sample and returns what the caller should do with it.
// The last transmitted command is updated whenever Send is true, whether or
// not the caller manages to deliver it.
func (t *Tracker) Process(s Snapshot, now time.Time) Decision {
	cmd := Classify(s, t.thresholds, t.variant)
	d := Decision{
		Timestamp: now,
		Command:   cmd,
		Active:    IsActive(cmd, s, t.thresholds, t.variant),
	}
	t.counts.Samples++

	if cmd != t.last {
		d.Send = true
		t.last = cmd
		t.counts.Transitions++
	}

	if d.Active {
		t.lastActivity = now
	}

	d.Idle = t.Idle(now)
	return d
}

// Idle reports whether the idle timeout has elapsed at now without any
// activity. It lets the caller check the clock on ticks where no sample
// could be read.
func (t *Tracker) Idle(now time.Time) bool {
	return t.IdleFor(now) > t.idleTimeout
}

// ObserveEpoch resets the activity clock when the link's connection epoch
// has moved since the last call. Returns true if it did.
func (t *Tracker) ObserveEpoch(epoch uint64, now time.Time) bool {
	if epoch == t.epoch {
		return false
	}
	t.epoch = epoch
	t.lastActivity = now
	return true
}

// IdleFor returns how long it has been since the last activity.
func (t *Tracker) IdleFor(now time.Time) time.Duration {
	return now.Sub(t.lastActivity)
}

// LastCommand returns the last transmitted command.
func (t *Tracker) LastCommand() Command {
	return t.last
}

// LastActivity returns the time of the last detected activity.
func (t *Tracker) LastActivity() time.Time {
	return t.lastActivity
}

// CountsSnapshot returns a copy of the counters.
func (t *Tracker) CountsSnapshot() Counts {
	return t.counts
}
