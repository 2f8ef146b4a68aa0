package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"
)

type PresenceHandler struct {
	redis *redis.Client
}

func NewPresenceHandler(redisAddr string) *PresenceHandler {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	return &PresenceHandler{redis: rdb}
}

// ServeHTTP lists the user ids mirrored as online for a workspace. The
// gateway owns the authoritative in-memory registry; this reads the redis
// copy it maintains.
func (h *PresenceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Extract workspace ID from URL path: /workspaces/{id}/presence
	pathParts := strings.Split(r.URL.Path, "/")
	if len(pathParts) < 4 || pathParts[3] != "presence" {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}
	workspaceID := pathParts[2]

	users, err := h.redis.SMembers(context.Background(), "workspace:"+workspaceID+":online").Result()
	if err != nil {
		log.Printf("Failed to fetch presence for workspace %s: %v", workspaceID, err)
		http.Error(w, "Failed to fetch presence", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}
