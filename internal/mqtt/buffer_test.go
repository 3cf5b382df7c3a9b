package mqtt

import (
	"testing"
)

func TestBacklogEmptyDrain(t *testing.T) {
	b := newBacklog(10)
	got, dropped := b.drain()
	if got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
	if dropped != 0 {
		t.Errorf("expected 0 dropped, got %d", dropped)
	}
}

func TestBacklogPushAndDrain(t *testing.T) {
	b := newBacklog(10)
	for i := 0; i < 5; i++ {
		b.push(bufferedMsg{topic: "t", payload: []byte{byte(i)}})
	}
	if b.len() != 5 {
		t.Fatalf("expected len 5, got %d", b.len())
	}

	got, _ := b.drain()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i := 0; i < 5; i++ {
		if got[i].payload[0] != byte(i) {
			t.Errorf("item %d: expected payload %d, got %d", i, i, got[i].payload[0])
		}
	}

	// Second drain should be empty
	got2, _ := b.drain()
	if got2 != nil {
		t.Errorf("expected nil from second drain, got %d items", len(got2))
	}
}

func TestBacklogOverflowDropsOldest(t *testing.T) {
	limit := 5
	b := newBacklog(limit)

	// Push limit+3 items (0..7), backlog should keep the most recent 5 (3..7)
	for i := 0; i < limit+3; i++ {
		b.push(bufferedMsg{topic: "t", payload: []byte{byte(i)}})
	}
	if b.len() != limit {
		t.Fatalf("expected len %d, got %d", limit, b.len())
	}

	got, dropped := b.drain()
	if dropped != 3 {
		t.Errorf("expected 3 dropped, got %d", dropped)
	}
	for i, msg := range got {
		if want := byte(i + 3); msg.payload[0] != want {
			t.Errorf("item %d: expected payload %d, got %d", i, want, msg.payload[0])
		}
	}

	// Drop count resets after drain.
	b.push(bufferedMsg{topic: "t"})
	if _, dropped := b.drain(); dropped != 0 {
		t.Errorf("expected dropped reset, got %d", dropped)
	}
}

func TestBacklogDrainIsACopy(t *testing.T) {
	b := newBacklog(3)
	b.push(bufferedMsg{topic: "a"})
	got, _ := b.drain()

	b.push(bufferedMsg{topic: "b"})
	if got[0].topic != "a" {
		t.Errorf("drained slice changed by later push: %q", got[0].topic)
	}
}

func TestBacklogPreservesFlags(t *testing.T) {
	b := newBacklog(3)
	b.push(bufferedMsg{topic: TopicSystem, qos: 1, retained: true})

	got, _ := b.drain()
	if got[0].qos != 1 || !got[0].retained || got[0].topic != TopicSystem {
		t.Errorf("flags not preserved: %+v", got[0])
	}
}
