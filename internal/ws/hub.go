// Package ws fans out progress events to live WebSocket subscribers.
package ws

import (
	"sync"
	"time"

	"github.com/cesargomez89/youaudio/internal/logger"
)

// writeWait bounds every outbound frame. A subscriber that cannot drain its
// TCP buffer within this window fails the send and is dropped, instead of
// stalling the broadcast loop for everyone behind it.
const writeWait = 10 * time.Second

// Conn is the subset of a websocket connection the hub needs. Satisfied by
// *websocket.Conn from gorilla.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
}

// subscriber wraps a connection with a write mutex so broadcast frames and
// echo frames never interleave on the wire.
type subscriber struct {
	conn Conn
	mu   sync.Mutex
}

func (s *subscriber) send(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteJSON(v)
}

func (s *subscriber) echo(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.conn.WriteMessage(messageType, data)
}

// Hub maintains the set of live subscriber connections. Delivery is
// best-effort: a connection whose send fails is dropped from the set as a
// side effect of the same Broadcast call, which is the sole cleanup path
// for dead subscribers.
type Hub struct {
	mu          sync.Mutex
	subscribers map[Conn]*subscriber
	logger      *logger.Logger
}

// NewHub creates an empty hub
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Default()
	}
	return &Hub{
		subscribers: make(map[Conn]*subscriber),
		logger:      log.WithComponent("ws"),
	}
}

// Register adds a connection to the subscriber set
func (h *Hub) Register(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[conn] = &subscriber{conn: conn}
}

// Unregister removes a connection from the subscriber set. Closing the
// underlying connection is the transport's responsibility.
func (h *Hub) Unregister(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers, conn)
}

// Count returns the number of live subscribers
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Echo writes a raw frame back to one subscriber, serialized against any
// concurrent broadcast to the same connection.
func (h *Hub) Echo(conn Conn, messageType int, data []byte) error {
	h.mu.Lock()
	s, ok := h.subscribers[conn]
	h.mu.Unlock()
	if !ok {
		return nil
	}
	return s.echo(messageType, data)
}

// Broadcast sends v to every registered subscriber sequentially. Any
// subscriber whose send fails is unregistered; other subscribers and the
// caller are unaffected.
func (h *Hub) Broadcast(v interface{}) {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subscribers))
	for _, s := range h.subscribers {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		if err := s.send(v); err != nil {
			h.logger.Debug("Dropping dead subscriber", "error", err)
			h.Unregister(s.conn)
		}
	}
}
