package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/teamsync/realtime/pkg/event"
)

const sendBuffer = 256

// Session is the hub-facing half of one transport connection. The transport
// (websocket handler, or a test) drains Events to the wire; the hub owns the
// channel and closes it when the connection is deregistered.
type Session struct {
	ID   string
	send chan event.Envelope

	// mu makes trySend and closeSend mutually exclusive: broadcasts can
	// run concurrently with a disconnect, and a send on a closed channel
	// would panic.
	mu     sync.Mutex
	closed bool
}

func NewSession() *Session {
	return &Session{
		ID:   uuid.NewString(),
		send: make(chan event.Envelope, sendBuffer),
	}
}

// Events is the outbound event stream for this connection.
func (s *Session) Events() <-chan event.Envelope {
	return s.send
}

func (s *Session) trySend(env event.Envelope) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.send <- env:
		return true
	default:
		return false
	}
}

// closeSend closes the outbound channel exactly once. Safe against
// concurrent trySend callers.
func (s *Session) closeSend() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.send)
}
