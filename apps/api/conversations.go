package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/teamsync/realtime/pkg/auth"
	"github.com/teamsync/realtime/pkg/db"
)

type Conversation struct {
	UserID      string    `json:"userId"`
	OtherUserID string    `json:"otherUserId"`
	LastUpdated time.Time `json:"lastUpdated"`
	UnreadCount int64     `json:"unreadCount"`
}

// ConversationsHandler lists the caller's direct conversations with unread
// counts, most useful for seeding the chat sidebar on page load.
func ConversationsHandler(session *db.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.FromContext(r.Context())
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		query := `SELECT user_id, other_user_id, last_updated FROM user_conversations WHERE user_id = ?`
		iter := session.Query(query, claims.UserID).Iter()

		var conversations []Conversation
		var c Conversation
		for iter.Scan(&c.UserID, &c.OtherUserID, &c.LastUpdated) {
			var count int64
			if err := session.Query(`SELECT unread_count FROM conversation_counters WHERE user_id = ? AND other_user_id = ?`, c.UserID, c.OtherUserID).Scan(&count); err == nil {
				c.UnreadCount = count
			}
			conversations = append(conversations, c)
		}

		if err := iter.Close(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(conversations)
	}
}
