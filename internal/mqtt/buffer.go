package mqtt

import "log"

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// backlog holds messages published while the broker is unreachable, oldest
// first. When full it drops the oldest message.
// Not safe for concurrent use; the caller must synchronize.
type backlog struct {
	msgs    []bufferedMsg
	limit   int
	dropped int // messages dropped since last drain
}

func newBacklog(limit int) *backlog {
	return &backlog{
		msgs:  make([]bufferedMsg, 0, limit),
		limit: limit,
	}
}

func (b *backlog) push(msg bufferedMsg) {
	if len(b.msgs) == b.limit {
		if b.dropped == 0 {
			log.Printf("mqtt: backlog full (%d messages), dropping oldest", b.limit)
		}
		b.dropped++
		copy(b.msgs, b.msgs[1:])
		b.msgs = b.msgs[:len(b.msgs)-1]
	}
	b.msgs = append(b.msgs, msg)
}

// drain returns the held messages and how many were dropped, and empties
// the backlog.
func (b *backlog) drain() ([]bufferedMsg, int) {
	if len(b.msgs) == 0 {
		dropped := b.dropped
		b.dropped = 0
		return nil, dropped
	}
	out := make([]bufferedMsg, len(b.msgs))
	copy(out, b.msgs)
	dropped := b.dropped
	b.msgs = b.msgs[:0]
	b.dropped = 0
	return out, dropped
}

func (b *backlog) len() int {
	return len(b.msgs)
}
