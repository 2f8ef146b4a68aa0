package main

import (
	"encoding/json"
	"net/http"

	"github.com/teamsync/realtime/pkg/auth"
)

type LoginRequest struct {
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	WorkspaceID string `json:"workspaceId"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

// LoginHandler issues a JWT carrying the full identity the gateway needs at
// handshake time. Credential checking belongs to the surrounding
// application; this service only mints tokens for it.
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.UserID == "" || req.WorkspaceID == "" {
		http.Error(w, "userId and workspaceId are required", http.StatusBadRequest)
		return
	}

	token, err := auth.GenerateToken(req.UserID, req.Name, req.Email, req.WorkspaceID)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(LoginResponse{Token: token})
}
