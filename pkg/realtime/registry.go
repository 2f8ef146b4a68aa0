package realtime

import (
	"sync"
	"time"

	"github.com/teamsync/realtime/pkg/event"
)

type connection struct {
	session  *Session
	user     event.Identity
	lastSeen time.Time
}

// Registry maps live connections to their authenticated identity. One entry
// per transport connection; a user with two open clients has two entries.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*connection // session id -> connection
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*connection)}
}

func (r *Registry) Add(s *Session, user event.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[s.ID] = &connection{
		session:  s,
		user:     user,
		lastSeen: time.Now(),
	}
}

// Remove deletes and returns the connection, or nil if it was never
// registered (or already removed).
func (r *Registry) Remove(connID string) *connection {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.conns[connID]
	delete(r.conns, connID)
	return c
}

// Identity resolves the authenticated user behind a connection. The second
// return is false for unknown connections, which is how events from
// never-authenticated sockets turn into no-ops.
func (r *Registry) Identity(connID string) (event.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[connID]
	if !ok {
		return event.Identity{}, false
	}
	return c.user, true
}

func (r *Registry) sessionFor(connID string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[connID]
	if !ok {
		return nil
	}
	return c.session
}

// SessionsForUser returns every live session owned by the user.
func (r *Registry) SessionsForUser(userID string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sessions []*Session
	for _, c := range r.conns {
		if c.user.ID == userID {
			sessions = append(sessions, c.session)
		}
	}
	return sessions
}

// WorkspacePresence lists one entry per registered connection in the
// workspace. Users with several connections appear once per connection and
// are deliberately not deduplicated.
func (r *Registry) WorkspacePresence(workspaceID string) []event.PresenceEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]event.PresenceEntry, 0)
	for _, c := range r.conns {
		if c.user.WorkspaceID != workspaceID {
			continue
		}
		entries = append(entries, event.PresenceEntry{
			UserID:   c.user.ID,
			UserName: c.user.Name,
			LastSeen: c.lastSeen,
		})
	}
	return entries
}
