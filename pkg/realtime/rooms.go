package realtime

import (
	"sync"

	"github.com/teamsync/realtime/pkg/event"
)

type RoomKind string

const (
	RoomWorkspace RoomKind = "workspace"
	RoomGroup     RoomKind = "group"
	RoomDirect    RoomKind = "direct"
)

// ConversationKind maps the kind string carried in event payloads to a room
// kind. Workspace rooms are joined automatically at authentication and are
// not addressable from conversation events.
func ConversationKind(kind string) (RoomKind, bool) {
	switch kind {
	case event.KindGroup:
		return RoomGroup, true
	case event.KindDirect:
		return RoomDirect, true
	}
	return "", false
}

// roomKey namespaces the raw target id with the room kind. Group ids and
// direct-conversation ids come from independent id spaces and may collide.
func roomKey(kind RoomKind, targetID string) string {
	if kind == RoomDirect {
		return "conversation:" + targetID
	}
	return string(kind) + ":" + targetID
}

// Rooms tracks which connections are members of which rooms. Rooms exist
// implicitly while at least one connection is joined and are garbage
// collected once empty.
type Rooms struct {
	mu      sync.RWMutex
	members map[string]map[string]bool // room key -> session ids
	joined  map[string]map[string]bool // session id -> room keys
}

func NewRooms() *Rooms {
	return &Rooms{
		members: make(map[string]map[string]bool),
		joined:  make(map[string]map[string]bool),
	}
}

// Join adds the connection to the room. Idempotent.
func (r *Rooms) Join(connID string, kind RoomKind, targetID string) {
	key := roomKey(kind, targetID)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.members[key] == nil {
		r.members[key] = make(map[string]bool)
	}
	r.members[key][connID] = true
	if r.joined[connID] == nil {
		r.joined[connID] = make(map[string]bool)
	}
	r.joined[connID][key] = true
}

// Leave removes the connection from the room. Leaving a room the connection
// never joined is a no-op.
func (r *Rooms) Leave(connID string, kind RoomKind, targetID string) {
	key := roomKey(kind, targetID)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveKey(connID, key)
}

// LeaveAll removes the connection from every room it belongs to.
func (r *Rooms) LeaveAll(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.joined[connID] {
		r.leaveKey(connID, key)
	}
}

func (r *Rooms) leaveKey(connID, key string) {
	if members, ok := r.members[key]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.members, key)
		}
	}
	if keys, ok := r.joined[connID]; ok {
		delete(keys, key)
		if len(keys) == 0 {
			delete(r.joined, connID)
		}
	}
}

// Members returns a snapshot of the session ids currently in the room.
func (r *Rooms) Members(kind RoomKind, targetID string) []string {
	key := roomKey(kind, targetID)
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.members[key]))
	for id := range r.members[key] {
		ids = append(ids, id)
	}
	return ids
}
