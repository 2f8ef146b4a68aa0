package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/teamsync/realtime/pkg/event"
	"github.com/teamsync/realtime/pkg/model"
)

const (
	typingSweepInterval = 5 * time.Second
	typingStaleAfter    = 10 * time.Second
)

// PresenceMirror mirrors workspace presence into a shared store so that
// other processes can answer "who is online" without holding a socket.
// Best effort: mirror failures are logged and never affect hub state.
type PresenceMirror interface {
	Add(ctx context.Context, workspaceID, userID string) error
	Remove(ctx context.Context, workspaceID, userID string) error
}

// Hub is the connection registry and room broadcast service. It owns all
// ephemeral realtime state (connections, rooms, typing indicators) and is
// constructed once at gateway start. Everything it holds is lost on restart;
// clients reconnect and redo the authenticate + rejoin sequence.
type Hub struct {
	registry *Registry
	rooms    *Rooms
	typing   *TypingTracker
	mirror   PresenceMirror // may be nil

	stop     chan struct{}
	stopOnce sync.Once
}

// NewHub builds a hub. mirror may be nil when no shared presence store is
// configured.
func NewHub(mirror PresenceMirror) *Hub {
	return &Hub{
		registry: NewRegistry(),
		rooms:    NewRooms(),
		typing:   NewTypingTracker(),
		mirror:   mirror,
		stop:     make(chan struct{}),
	}
}

// Run drives the periodic typing-indicator sweep until Close is called.
func (h *Hub) Run() {
	ticker := time.NewTicker(typingSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			h.typing.Sweep(time.Now(), typingStaleAfter)
		case <-h.stop:
			return
		}
	}
}

func (h *Hub) Close() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// Authenticate registers the session under the given identity, joins it to
// its workspace room, sends it the current presence snapshot and announces
// user_online to the rest of the workspace. A missing or malformed identity
// gets an auth_error on the session and no registration.
func (h *Hub) Authenticate(s *Session, user event.Identity) error {
	if user.ID == "" || user.WorkspaceID == "" {
		if env, err := event.New(event.TypeAuthError, event.AuthError{Message: "missing or malformed identity"}); err == nil {
			s.trySend(env)
		}
		return errors.New("missing or malformed identity")
	}

	h.registry.Add(s, user)
	h.rooms.Join(s.ID, RoomWorkspace, user.WorkspaceID)
	h.mirrorAdd(user.WorkspaceID, user.ID)

	snapshot := h.registry.WorkspacePresence(user.WorkspaceID)
	if env, err := event.New(event.TypeOnlineUsers, event.OnlineUsers{Users: snapshot}); err == nil {
		h.deliver(s, env)
	}

	env, err := event.New(event.TypeUserOnline, event.UserOnline{
		UserID:   user.ID,
		UserName: user.Name,
		LastSeen: time.Now(),
	})
	if err == nil {
		h.broadcastRoom(RoomWorkspace, user.WorkspaceID, env, s.ID)
	}
	return nil
}

// Deregister tears down a disconnected session: registry entry, room
// memberships and typing indicators go, then user_offline is announced to
// the workspace. The announcement happens once per closed connection, even
// when the same user is still connected elsewhere.
func (h *Hub) Deregister(connID string) {
	c := h.registry.Remove(connID)
	if c == nil {
		return
	}
	h.rooms.LeaveAll(connID)
	h.typing.PurgeConnection(connID)
	h.mirrorRemove(c.user.WorkspaceID, c.user.ID)
	c.session.closeSend()

	if env, err := event.New(event.TypeUserOffline, event.UserOffline{UserID: c.user.ID}); err == nil {
		h.broadcastRoom(RoomWorkspace, c.user.WorkspaceID, env, connID)
	}
}

// drop removes a connection that can no longer keep up, without the offline
// announcement. The transport notices the closed events channel and tears
// the socket down; the follow-up Deregister is then a no-op.
func (h *Hub) drop(connID string) {
	c := h.registry.Remove(connID)
	if c == nil {
		return
	}
	h.rooms.LeaveAll(connID)
	h.typing.PurgeConnection(connID)
	h.mirrorRemove(c.user.WorkspaceID, c.user.ID)
	c.session.closeSend()
	log.Printf("Dropped slow connection %s (user %s)", connID, c.user.ID)
}

// Join adds an authenticated connection to a conversation room. Events from
// unknown connections or with unknown kinds are no-ops.
func (h *Hub) Join(connID, conversationID, kind string) {
	if _, ok := h.registry.Identity(connID); !ok {
		return
	}
	rk, ok := ConversationKind(kind)
	if !ok {
		return
	}
	h.rooms.Join(connID, rk, conversationID)
}

// Leave removes the connection from a conversation room. Idempotent.
func (h *Hub) Leave(connID, conversationID, kind string) {
	if _, ok := h.registry.Identity(connID); !ok {
		return
	}
	rk, ok := ConversationKind(kind)
	if !ok {
		return
	}
	h.rooms.Leave(connID, rk, conversationID)
}

// StartTyping records the indicator and tells everyone else in the room.
func (h *Hub) StartTyping(connID, conversationID, kind string) {
	user, ok := h.registry.Identity(connID)
	if !ok {
		return
	}
	rk, ok := ConversationKind(kind)
	if !ok {
		return
	}
	now := time.Now()
	h.typing.Start(connID, user.ID, user.Name, conversationID, now)

	env, err := event.New(event.TypeUserTyping, event.UserTyping{
		UserID:         user.ID,
		UserName:       user.Name,
		ConversationID: conversationID,
		Kind:           kind,
		Timestamp:      now,
	})
	if err != nil {
		return
	}
	h.broadcastRoom(rk, conversationID, env, connID)
}

// StopTyping clears the indicator and tells everyone else in the room.
func (h *Hub) StopTyping(connID, conversationID, kind string) {
	user, ok := h.registry.Identity(connID)
	if !ok {
		return
	}
	rk, ok := ConversationKind(kind)
	if !ok {
		return
	}
	h.typing.Stop(user.ID, conversationID)

	env, err := event.New(event.TypeUserStopTyping, event.UserStopTyping{
		UserID:         user.ID,
		ConversationID: conversationID,
	})
	if err != nil {
		return
	}
	h.broadcastRoom(rk, conversationID, env, connID)
}

// RecordMessageRead relays a read receipt to the rest of the room. Fire and
// forget; the hub keeps no read state.
func (h *Hub) RecordMessageRead(connID string, messageID int64, conversationID, kind string) {
	user, ok := h.registry.Identity(connID)
	if !ok {
		return
	}
	rk, ok := ConversationKind(kind)
	if !ok {
		return
	}
	env, err := event.New(event.TypeMessageReadReceipt, event.ReadReceipt{
		MessageID:      messageID,
		ReadBy:         event.ReadBy{UserID: user.ID, UserName: user.Name},
		ConversationID: conversationID,
		Kind:           kind,
		Timestamp:      time.Now(),
	})
	if err != nil {
		return
	}
	h.broadcastRoom(rk, conversationID, env, connID)
}

// BroadcastMessage fans a persisted chat message out to every connection in
// its conversation room, including the sender's own other tabs and devices.
// An empty room is an unremarkable no-op.
func (h *Hub) BroadcastMessage(msg model.Message) {
	rk, ok := ConversationKind(msg.Kind)
	if !ok {
		return
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	env, err := event.New(event.TypeNewMessage, msg)
	if err != nil {
		log.Printf("Failed to encode new_message: %v", err)
		return
	}
	h.broadcastRoom(rk, msg.ConversationID, env, "")
}

// BroadcastNotification unicasts to every connection the user has open.
// Room membership is irrelevant; a user with no connections misses it.
func (h *Hub) BroadcastNotification(userID string, notification json.RawMessage) {
	env := event.Envelope{Type: event.TypeNewNotification, Payload: notification}
	for _, s := range h.registry.SessionsForUser(userID) {
		h.deliver(s, env)
	}
}

// BroadcastGroupCreated tells every connected member of the workspace, so
// group lists update live regardless of what anyone is looking at.
func (h *Hub) BroadcastGroupCreated(workspaceID string, payload json.RawMessage) {
	h.broadcastWorkspace(workspaceID, event.TypeGroupCreated, payload)
}

func (h *Hub) BroadcastGroupUpdated(workspaceID string, payload json.RawMessage) {
	h.broadcastWorkspace(workspaceID, event.TypeGroupUpdated, payload)
}

func (h *Hub) BroadcastGroupDeleted(workspaceID string, payload json.RawMessage) {
	h.broadcastWorkspace(workspaceID, event.TypeGroupDeleted, payload)
}

// ListWorkspacePresence is the synchronous call surface used by HTTP
// handlers to seed UI state on page load.
func (h *Hub) ListWorkspacePresence(workspaceID string) []event.PresenceEntry {
	return h.registry.WorkspacePresence(workspaceID)
}

func (h *Hub) broadcastWorkspace(workspaceID string, t event.Type, payload json.RawMessage) {
	env := event.Envelope{Type: t, Payload: payload}
	h.broadcastRoom(RoomWorkspace, workspaceID, env, "")
}

func (h *Hub) broadcastRoom(kind RoomKind, targetID string, env event.Envelope, exclude string) {
	for _, connID := range h.rooms.Members(kind, targetID) {
		if connID == exclude {
			continue
		}
		if s := h.registry.sessionFor(connID); s != nil {
			h.deliver(s, env)
		}
	}
}

func (h *Hub) deliver(s *Session, env event.Envelope) {
	if !s.trySend(env) {
		h.drop(s.ID)
	}
}

func (h *Hub) mirrorAdd(workspaceID, userID string) {
	if h.mirror == nil {
		return
	}
	if err := h.mirror.Add(context.Background(), workspaceID, userID); err != nil {
		log.Printf("Failed to mirror presence for %s: %v", userID, err)
	}
}

func (h *Hub) mirrorRemove(workspaceID, userID string) {
	if h.mirror == nil {
		return
	}
	if err := h.mirror.Remove(context.Background(), workspaceID, userID); err != nil {
		log.Printf("Failed to clear mirrored presence for %s: %v", userID, err)
	}
}
