package realtime

import (
	"sync"
	"time"
)

type typingKey struct {
	userID         string
	conversationID string
}

type indicator struct {
	connID   string
	userName string
	at       time.Time
}

// TypingTracker holds the short-lived "who is typing where" state. At most
// one indicator exists per (user, conversation) pair; a second typing_start
// overwrites the first. Nothing here is ever persisted.
type TypingTracker struct {
	mu         sync.Mutex
	indicators map[typingKey]indicator
}

func NewTypingTracker() *TypingTracker {
	return &TypingTracker{indicators: make(map[typingKey]indicator)}
}

func (t *TypingTracker) Start(connID, userID, userName, conversationID string, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.indicators[typingKey{userID, conversationID}] = indicator{
		connID:   connID,
		userName: userName,
		at:       now,
	}
}

func (t *TypingTracker) Stop(userID, conversationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.indicators, typingKey{userID, conversationID})
}

// PurgeConnection drops every indicator owned by the disconnecting
// connection. An indicator the same user refreshed from another connection
// stays.
func (t *TypingTracker) PurgeConnection(connID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, ind := range t.indicators {
		if ind.connID == connID {
			delete(t.indicators, key)
		}
	}
}

// Sweep evicts indicators older than maxAge. No stop event is broadcast for
// swept entries; clients time out typing indicators locally as well.
func (t *TypingTracker) Sweep(now time.Time, maxAge time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, ind := range t.indicators {
		if now.Sub(ind.at) > maxAge {
			delete(t.indicators, key)
		}
	}
}

// Active reports whether an indicator exists for the pair.
func (t *TypingTracker) Active(userID, conversationID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.indicators[typingKey{userID, conversationID}]
	return ok
}
