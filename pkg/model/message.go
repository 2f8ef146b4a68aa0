package model

import "time"

// Message is a chat message as it travels through the pipeline: stamped by
// the gateway, fanned out over connected clients and persisted by the
// messaging service.
type Message struct {
	ID             int64  `json:"id"`
	ConversationID string `json:"conversationId"`
	Kind           string `json:"type"` // "group" | "direct"
	SenderID       string `json:"senderId"`
	SenderName     string `json:"senderName"`
	// RecipientID is set for direct messages only; the messaging service
	// needs it to bump the right unread counter.
	RecipientID string    `json:"recipientId,omitempty"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
}

// ConversationKey namespaces a conversation id with its kind for the
// messages table partition key. Group and direct ids come from independent
// id spaces, so the raw id alone is ambiguous.
func ConversationKey(kind, conversationID string) string {
	if kind == "direct" {
		return "conversation:" + conversationID
	}
	return kind + ":" + conversationID
}
