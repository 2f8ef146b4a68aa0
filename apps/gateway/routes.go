package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/teamsync/realtime/pkg/auth"
	"github.com/teamsync/realtime/pkg/event"
	"github.com/teamsync/realtime/pkg/model"
	"github.com/teamsync/realtime/pkg/realtime"
)

// Server carries the write-side HTTP surface: routes the rest of the
// application calls after a persistence write commits, running in the same
// process as the hub.
type Server struct {
	hub      *realtime.Hub
	pipeline *Pipeline
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*") // Allow all for dev, or specific origin
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if r.Method == "OPTIONS" {
			return
		}

		next.ServeHTTP(w, r)
	})
}

type CreateMessageRequest struct {
	ConversationID string `json:"conversationId"`
	Kind           string `json:"type"`
	RecipientID    string `json:"recipientId,omitempty"`
	Content        string `json:"content"`
}

// handleCreateMessage accepts a chat message from an authenticated caller
// and hands it to the pipeline. The broadcast to connected clients follows
// once the message comes back off the topic.
func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ConversationID == "" || req.Content == "" {
		http.Error(w, "conversationId and content are required", http.StatusBadRequest)
		return
	}
	if _, ok := realtime.ConversationKind(req.Kind); !ok {
		http.Error(w, "type must be group or direct", http.StatusBadRequest)
		return
	}

	msg := model.Message{
		ConversationID: req.ConversationID,
		Kind:           req.Kind,
		SenderID:       claims.UserID,
		SenderName:     claims.Name,
		RecipientID:    req.RecipientID,
		Content:        req.Content,
	}

	if err := s.pipeline.Publish(r.Context(), &msg); err != nil {
		http.Error(w, "Failed to publish message", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(msg)
}

type CreateNotificationRequest struct {
	UserID       string          `json:"userId"`
	Notification json.RawMessage `json:"notification"`
}

// handleCreateNotification unicasts a stored notification to every open
// connection of the target user. No open connections is not an error.
func (s *Server) handleCreateNotification(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CreateNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	s.hub.BroadcastNotification(req.UserID, req.Notification)
	w.WriteHeader(http.StatusAccepted)
}

type GroupEventRequest struct {
	WorkspaceID string          `json:"workspaceId"`
	Group       json.RawMessage `json:"group"`
}

// handleGroups fans group lifecycle changes out to the whole workspace so
// client group lists update live. POST /groups announces a creation;
// PUT/DELETE /groups/{id} announce updates and deletions.
func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	var req GroupEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.WorkspaceID == "" {
		http.Error(w, "workspaceId is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPost:
		s.hub.BroadcastGroupCreated(req.WorkspaceID, req.Group)
	case http.MethodPut:
		s.hub.BroadcastGroupUpdated(req.WorkspaceID, req.Group)
	case http.MethodDelete:
		s.hub.BroadcastGroupDeleted(req.WorkspaceID, req.Group)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// handlePresence serves the live in-memory presence list for a workspace.
// Route: /workspaces/{id}/presence
func (s *Server) handlePresence(w http.ResponseWriter, r *http.Request) {
	pathParts := strings.Split(r.URL.Path, "/")
	if len(pathParts) < 4 || pathParts[3] != "presence" {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}
	workspaceID := pathParts[2]

	entries := s.hub.ListWorkspacePresence(workspaceID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(event.OnlineUsers{Users: entries})
}
