package ws

import (
	"errors"
	"testing"
	"time"

	"github.com/cesargomez89/youaudio/internal/domain"
)

type fakeConn struct {
	received     []interface{}
	deadlines    []time.Time
	failWith     error
	deadlineFail error
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.received = append(f.received, v)
	return nil
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	return f.failWith
}

func (f *fakeConn) SetWriteDeadline(t time.Time) error {
	if f.deadlineFail != nil {
		return f.deadlineFail
	}
	f.deadlines = append(f.deadlines, t)
	return nil
}

func TestHubRegisterUnregister(t *testing.T) {
	h := NewHub(nil)

	c := &fakeConn{}
	h.Register(c)
	if h.Count() != 1 {
		t.Errorf("Expected 1 subscriber, got %d", h.Count())
	}

	h.Unregister(c)
	if h.Count() != 0 {
		t.Errorf("Expected 0 subscribers, got %d", h.Count())
	}

	// Unregister of unknown connection is a no-op
	h.Unregister(&fakeConn{})
}

func TestHubBroadcast(t *testing.T) {
	h := NewHub(nil)

	a := &fakeConn{}
	b := &fakeConn{}
	h.Register(a)
	h.Register(b)

	event := domain.Snapshot{VideoID: "abc123", Percent: "42%", Stage: domain.StageDownloading}
	h.Broadcast(event)

	for name, c := range map[string]*fakeConn{"a": a, "b": b} {
		if len(c.received) != 1 {
			t.Fatalf("Subscriber %s: expected 1 event, got %d", name, len(c.received))
		}
		if c.received[0] != interface{}(event) {
			t.Errorf("Subscriber %s: expected %+v, got %+v", name, event, c.received[0])
		}
	}
}

func TestHubBroadcastDropsFailedSubscriber(t *testing.T) {
	h := NewHub(nil)

	healthy := &fakeConn{}
	dead := &fakeConn{failWith: errors.New("broken pipe")}
	h.Register(healthy)
	h.Register(dead)

	h.Broadcast(domain.Snapshot{VideoID: "abc123", Percent: "10%"})

	if h.Count() != 1 {
		t.Fatalf("Expected failed subscriber to be unregistered, count = %d", h.Count())
	}
	if len(healthy.received) != 1 {
		t.Errorf("Expected healthy subscriber to receive the event, got %d", len(healthy.received))
	}

	// Subsequent broadcasts only reach the survivor
	h.Broadcast(domain.Snapshot{VideoID: "abc123", Percent: "20%"})
	if len(healthy.received) != 2 {
		t.Errorf("Expected 2 events on healthy subscriber, got %d", len(healthy.received))
	}
	if len(dead.received) != 0 {
		t.Errorf("Expected no events on dead subscriber, got %d", len(dead.received))
	}
}

func TestHubBroadcastBoundsEverySend(t *testing.T) {
	h := NewHub(nil)

	c := &fakeConn{}
	h.Register(c)

	before := time.Now()
	h.Broadcast(domain.Snapshot{VideoID: "abc123", Percent: "10%"})
	h.Broadcast(domain.Snapshot{VideoID: "abc123", Percent: "20%"})

	// Every frame carries a fresh write deadline so a stalled subscriber
	// fails the send instead of blocking the loop.
	if len(c.deadlines) != 2 {
		t.Fatalf("Expected a deadline per send, got %d", len(c.deadlines))
	}
	for i, d := range c.deadlines {
		if !d.After(before) {
			t.Errorf("Deadline %d not in the future: %v", i, d)
		}
	}

	// A connection that cannot even accept a deadline is treated as dead
	stuck := &fakeConn{deadlineFail: errors.New("use of closed connection")}
	h.Register(stuck)
	h.Broadcast(domain.Snapshot{VideoID: "abc123", Percent: "30%"})
	if h.Count() != 1 {
		t.Errorf("Expected stuck subscriber dropped, count = %d", h.Count())
	}
	if len(c.received) != 3 {
		t.Errorf("Expected healthy subscriber unaffected, got %d events", len(c.received))
	}
}

func TestHubEchoUnknownConn(t *testing.T) {
	h := NewHub(nil)
	if err := h.Echo(&fakeConn{}, 1, []byte("ping")); err != nil {
		t.Errorf("Echo to unregistered conn should be a no-op, got %v", err)
	}
}
