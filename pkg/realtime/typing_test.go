package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTypingTracker_StartOverwrites(t *testing.T) {
	req := require.New(t)
	tr := NewTypingTracker()
	now := time.Now()

	tr.Start("c1", "alice", "Alice", "d1", now)
	tr.Start("c2", "alice", "Alice", "d1", now.Add(time.Second))

	// At most one indicator per (user, conversation); the second start
	// replaced the first, including its owning connection.
	req.Len(tr.indicators, 1)
	ind := tr.indicators[typingKey{"alice", "d1"}]
	req.Equal("c2", ind.connID)
	req.Equal(now.Add(time.Second), ind.at)
}

func TestTypingTracker_Stop(t *testing.T) {
	req := require.New(t)
	tr := NewTypingTracker()

	tr.Start("c1", "alice", "Alice", "d1", time.Now())
	tr.Stop("alice", "d1")
	req.False(tr.Active("alice", "d1"))

	// Stopping again is a no-op.
	tr.Stop("alice", "d1")
	req.Empty(tr.indicators)
}

func TestTypingTracker_PurgeConnection(t *testing.T) {
	req := require.New(t)
	tr := NewTypingTracker()
	now := time.Now()

	tr.Start("c1", "alice", "Alice", "d1", now)
	tr.Start("c2", "alice", "Alice", "g1", now)
	tr.Start("c3", "bob", "Bob", "d1", now)

	tr.PurgeConnection("c1")

	req.False(tr.Active("alice", "d1"))
	req.True(tr.Active("alice", "g1"), "indicator owned by another connection survives")
	req.True(tr.Active("bob", "d1"))
}

func TestTypingTracker_SweepEvictsStale(t *testing.T) {
	req := require.New(t)
	tr := NewTypingTracker()
	now := time.Now()

	tr.Start("c1", "alice", "Alice", "d1", now.Add(-11*time.Second))
	tr.Start("c2", "bob", "Bob", "d1", now.Add(-3*time.Second))

	tr.Sweep(now, 10*time.Second)

	req.False(tr.Active("alice", "d1"))
	req.True(tr.Active("bob", "d1"))
}
