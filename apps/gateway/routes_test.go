package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/teamsync/realtime/pkg/event"
	"github.com/teamsync/realtime/pkg/realtime"
)

func drainSession(s *realtime.Session) []event.Envelope {
	var out []event.Envelope
	for {
		select {
		case env := <-s.Events():
			out = append(out, env)
		default:
			return out
		}
	}
}

func TestHandlePresence(t *testing.T) {
	req := require.New(t)
	hub := realtime.NewHub(nil)
	server := &Server{hub: hub}

	s := realtime.NewSession()
	req.NoError(hub.Authenticate(s, event.Identity{ID: "alice", Name: "Alice", WorkspaceID: "w1"}))

	rec := httptest.NewRecorder()
	server.handlePresence(rec, httptest.NewRequest("GET", "/workspaces/w1/presence", nil))
	req.Equal(http.StatusOK, rec.Code)

	var resp event.OnlineUsers
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	req.Len(resp.Users, 1)
	req.Equal("alice", resp.Users[0].UserID)

	// Unknown workspace: empty list, not an error.
	rec = httptest.NewRecorder()
	server.handlePresence(rec, httptest.NewRequest("GET", "/workspaces/w9/presence", nil))
	req.Equal(http.StatusOK, rec.Code)
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	req.Empty(resp.Users)

	rec = httptest.NewRecorder()
	server.handlePresence(rec, httptest.NewRequest("GET", "/workspaces/w1/oops", nil))
	req.Equal(http.StatusBadRequest, rec.Code)
}

func TestHandleCreateNotification(t *testing.T) {
	req := require.New(t)
	hub := realtime.NewHub(nil)
	server := &Server{hub: hub}

	s := realtime.NewSession()
	req.NoError(hub.Authenticate(s, event.Identity{ID: "alice", Name: "Alice", WorkspaceID: "w1"}))
	drainSession(s)

	body := `{"userId":"alice","notification":{"title":"task assigned"}}`
	rec := httptest.NewRecorder()
	server.handleCreateNotification(rec, httptest.NewRequest("POST", "/notifications", strings.NewReader(body)))
	req.Equal(http.StatusAccepted, rec.Code)

	envs := drainSession(s)
	req.Len(envs, 1)
	req.Equal(event.TypeNewNotification, envs[0].Type)
	req.JSONEq(`{"title":"task assigned"}`, string(envs[0].Payload))

	// Missing user id is rejected.
	rec = httptest.NewRecorder()
	server.handleCreateNotification(rec, httptest.NewRequest("POST", "/notifications", strings.NewReader(`{}`)))
	req.Equal(http.StatusBadRequest, rec.Code)

	// Target with no connections: accepted and dropped.
	rec = httptest.NewRecorder()
	server.handleCreateNotification(rec, httptest.NewRequest("POST", "/notifications", strings.NewReader(`{"userId":"nobody"}`)))
	req.Equal(http.StatusAccepted, rec.Code)
}

func TestHandleGroups(t *testing.T) {
	req := require.New(t)
	hub := realtime.NewHub(nil)
	server := &Server{hub: hub}

	s := realtime.NewSession()
	req.NoError(hub.Authenticate(s, event.Identity{ID: "alice", Name: "Alice", WorkspaceID: "w1"}))
	drainSession(s)

	body := `{"workspaceId":"w1","group":{"id":"g9","name":"design"}}`
	rec := httptest.NewRecorder()
	server.handleGroups(rec, httptest.NewRequest("POST", "/groups", strings.NewReader(body)))
	req.Equal(http.StatusAccepted, rec.Code)

	envs := drainSession(s)
	req.Len(envs, 1)
	req.Equal(event.TypeGroupCreated, envs[0].Type)
	req.JSONEq(`{"id":"g9","name":"design"}`, string(envs[0].Payload))

	rec = httptest.NewRecorder()
	server.handleGroups(rec, httptest.NewRequest("DELETE", "/groups/g9", strings.NewReader(body)))
	req.Equal(http.StatusAccepted, rec.Code)
	envs = drainSession(s)
	req.Len(envs, 1)
	req.Equal(event.TypeGroupDeleted, envs[0].Type)

	rec = httptest.NewRecorder()
	server.handleGroups(rec, httptest.NewRequest("POST", "/groups", strings.NewReader(`{"group":{}}`)))
	req.Equal(http.StatusBadRequest, rec.Code)
}

func TestHandleCreateMessage_Validation(t *testing.T) {
	req := require.New(t)
	server := &Server{hub: realtime.NewHub(nil)}

	// Unauthenticated context is rejected before anything else.
	rec := httptest.NewRecorder()
	server.handleCreateMessage(rec, httptest.NewRequest("POST", "/messages", strings.NewReader(`{}`)))
	req.Equal(http.StatusUnauthorized, rec.Code)
}
