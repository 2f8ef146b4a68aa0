package realtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/teamsync/realtime/pkg/event"
)

func TestRegistry_AddRemove(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	s := NewSession()

	r.Add(s, event.Identity{ID: "alice", Name: "Alice", WorkspaceID: "w1"})

	user, ok := r.Identity(s.ID)
	req.True(ok)
	req.Equal("alice", user.ID)
	req.Same(s, r.sessionFor(s.ID))

	c := r.Remove(s.ID)
	req.NotNil(c)
	req.Nil(r.Remove(s.ID), "second remove returns nil")
	_, ok = r.Identity(s.ID)
	req.False(ok)
	req.Nil(r.sessionFor(s.ID))
}

func TestRegistry_UnknownConnection(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	_, ok := r.Identity("nope")
	req.False(ok)
	req.Nil(r.sessionFor("nope"))
	req.Empty(r.SessionsForUser("nobody"))
}

func TestRegistry_SessionsForUser(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	s1, s2, s3 := NewSession(), NewSession(), NewSession()

	r.Add(s1, event.Identity{ID: "alice", WorkspaceID: "w1"})
	r.Add(s2, event.Identity{ID: "alice", WorkspaceID: "w1"})
	r.Add(s3, event.Identity{ID: "bob", WorkspaceID: "w1"})

	sessions := r.SessionsForUser("alice")
	req.Len(sessions, 2)
	req.ElementsMatch([]*Session{s1, s2}, sessions)
}

func TestRegistry_WorkspacePresenceKeepsDuplicates(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	// Two connections for alice: presence lists her twice by design.
	r.Add(NewSession(), event.Identity{ID: "alice", Name: "Alice", WorkspaceID: "w1"})
	r.Add(NewSession(), event.Identity{ID: "alice", Name: "Alice", WorkspaceID: "w1"})
	r.Add(NewSession(), event.Identity{ID: "carol", Name: "Carol", WorkspaceID: "w2"})

	entries := r.WorkspacePresence("w1")
	req.Len(entries, 2)
	for _, e := range entries {
		req.Equal("alice", e.UserID)
		req.False(e.LastSeen.IsZero())
	}

	req.Empty(r.WorkspacePresence("w3"))
}
