package event

import (
	"encoding/json"
	"time"
)

type Type string

// Client -> server events.
const (
	TypeAuthenticate      Type = "authenticate"
	TypeJoinConversation  Type = "join_conversation"
	TypeLeaveConversation Type = "leave_conversation"
	TypeTypingStart       Type = "typing_start"
	TypeTypingStop        Type = "typing_stop"
	TypeMessageRead       Type = "message_read"
)

// Server -> client events.
const (
	TypeAuthError          Type = "auth_error"
	TypeOnlineUsers        Type = "online_users"
	TypeUserOnline         Type = "user_online"
	TypeUserOffline        Type = "user_offline"
	TypeUserTyping         Type = "user_typing"
	TypeUserStopTyping     Type = "user_stop_typing"
	TypeNewMessage         Type = "new_message"
	TypeNewNotification    Type = "new_notification"
	TypeMessageReadReceipt Type = "message_read_receipt"
	TypeGroupCreated       Type = "group_created"
	TypeGroupUpdated       Type = "group_updated"
	TypeGroupDeleted       Type = "group_deleted"
)

// Conversation kinds as they appear in event payloads. Group ids and
// direct-conversation ids come from independent id spaces, so the kind
// always travels with the id.
const (
	KindGroup  = "group"
	KindDirect = "direct"
)

// Envelope is the wire frame for every event in both directions. Payload
// shapes are defined per event type below; the payload of relayed domain
// events (new_message, new_notification, group_*) stays opaque to the
// realtime layer.
type Envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// New builds an envelope around a marshalled payload.
func New(t Type, payload any) (Envelope, error) {
	if payload == nil {
		return Envelope{Type: t}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: t, Payload: raw}, nil
}

// Decode unmarshals the envelope payload into the given payload struct.
func (e Envelope) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Identity is the authenticated user bound to a connection. It is supplied
// by the transport layer at handshake time and trusted as-is afterwards.
type Identity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	WorkspaceID string `json:"workspaceId"`
}

// Authenticate is the payload of the first event a client must send. Either
// a JWT issued by the api service or a pre-verified user object (when a
// trusted proxy terminates auth) identifies the caller.
type Authenticate struct {
	Token string    `json:"token,omitempty"`
	User  *Identity `json:"user,omitempty"`
}

// ConversationRef addresses a conversation room in join/leave/typing events.
type ConversationRef struct {
	ConversationID string `json:"conversationId"`
	Kind           string `json:"type"`
}

// MessageRead is the inbound read-receipt payload.
type MessageRead struct {
	MessageID      int64  `json:"messageId"`
	ConversationID string `json:"conversationId"`
	Kind           string `json:"type"`
}

type AuthError struct {
	Message string `json:"message"`
}

// PresenceEntry is one connection's worth of presence. A user with several
// open connections appears once per connection.
type PresenceEntry struct {
	UserID   string    `json:"userId"`
	UserName string    `json:"userName"`
	LastSeen time.Time `json:"lastSeen"`
}

type OnlineUsers struct {
	Users []PresenceEntry `json:"users"`
}

type UserOnline struct {
	UserID   string    `json:"userId"`
	UserName string    `json:"userName"`
	LastSeen time.Time `json:"lastSeen"`
}

type UserOffline struct {
	UserID string `json:"userId"`
}

type UserTyping struct {
	UserID         string    `json:"userId"`
	UserName       string    `json:"userName"`
	ConversationID string    `json:"conversationId"`
	Kind           string    `json:"type"`
	Timestamp      time.Time `json:"timestamp"`
}

type UserStopTyping struct {
	UserID         string `json:"userId"`
	ConversationID string `json:"conversationId"`
}

type ReadBy struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type ReadReceipt struct {
	MessageID      int64     `json:"messageId"`
	ReadBy         ReadBy    `json:"readBy"`
	ConversationID string    `json:"conversationId"`
	Kind           string    `json:"type"`
	Timestamp      time.Time `json:"timestamp"`
}
