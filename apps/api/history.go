package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/teamsync/realtime/pkg/db"
	"github.com/teamsync/realtime/pkg/event"
	"github.com/teamsync/realtime/pkg/model"
)

type HistoryHandler struct {
	db *db.Session
}

func NewHistoryHandler(session *db.Session) *HistoryHandler {
	return &HistoryHandler{db: session}
}

// ServeHTTP returns message history for one conversation, newest first.
// Query params: conversation_id and type (group|direct).
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conversationID := r.URL.Query().Get("conversation_id")
	if conversationID == "" {
		http.Error(w, "conversation_id is required", http.StatusBadRequest)
		return
	}
	kind := r.URL.Query().Get("type")
	if kind != event.KindGroup && kind != event.KindDirect {
		http.Error(w, "type must be group or direct", http.StatusBadRequest)
		return
	}

	key := model.ConversationKey(kind, conversationID)

	var messages []model.Message
	iter := h.db.Query("SELECT id, sender_id, sender_name, content, timestamp FROM messages WHERE conversation_key = ?", key).Iter()

	var id int64
	var senderID, senderName, content string
	var timestamp time.Time

	for iter.Scan(&id, &senderID, &senderName, &content, &timestamp) {
		messages = append(messages, model.Message{
			ID:             id,
			ConversationID: conversationID,
			Kind:           kind,
			SenderID:       senderID,
			SenderName:     senderName,
			Content:        content,
			Timestamp:      timestamp,
		})
	}

	if err := iter.Close(); err != nil {
		log.Printf("Failed to iterate messages: %v", err)
		http.Error(w, "Failed to retrieve history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}
