package realtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRooms_JoinIsIdempotent(t *testing.T) {
	req := require.New(t)
	rooms := NewRooms()

	rooms.Join("c1", RoomGroup, "g1")
	rooms.Join("c1", RoomGroup, "g1")

	req.Equal([]string{"c1"}, rooms.Members(RoomGroup, "g1"))
}

func TestRooms_LeaveNonMemberIsNoOp(t *testing.T) {
	req := require.New(t)
	rooms := NewRooms()

	rooms.Join("c1", RoomGroup, "g1")
	rooms.Leave("c2", RoomGroup, "g1")
	rooms.Leave("c1", RoomGroup, "never-joined")

	req.Equal([]string{"c1"}, rooms.Members(RoomGroup, "g1"))
}

func TestRooms_KindNamespacesCollidingIDs(t *testing.T) {
	req := require.New(t)
	rooms := NewRooms()

	// A group and a direct conversation can share the same raw id; they
	// must still be distinct rooms.
	rooms.Join("c1", RoomGroup, "42")
	rooms.Join("c2", RoomDirect, "42")

	req.Equal([]string{"c1"}, rooms.Members(RoomGroup, "42"))
	req.Equal([]string{"c2"}, rooms.Members(RoomDirect, "42"))
}

func TestRooms_LeaveAll(t *testing.T) {
	req := require.New(t)
	rooms := NewRooms()

	rooms.Join("c1", RoomWorkspace, "w1")
	rooms.Join("c1", RoomGroup, "g1")
	rooms.Join("c1", RoomDirect, "d1")
	rooms.Join("c2", RoomGroup, "g1")

	rooms.LeaveAll("c1")

	req.Empty(rooms.Members(RoomWorkspace, "w1"))
	req.Empty(rooms.Members(RoomDirect, "d1"))
	req.Equal([]string{"c2"}, rooms.Members(RoomGroup, "g1"))
}

func TestRooms_EmptyRoomsAreCollected(t *testing.T) {
	req := require.New(t)
	rooms := NewRooms()

	rooms.Join("c1", RoomGroup, "g1")
	rooms.Leave("c1", RoomGroup, "g1")

	req.Empty(rooms.members)
	req.Empty(rooms.joined)
}

func TestConversationKind(t *testing.T) {
	req := require.New(t)

	rk, ok := ConversationKind("group")
	req.True(ok)
	req.Equal(RoomGroup, rk)

	rk, ok = ConversationKind("direct")
	req.True(ok)
	req.Equal(RoomDirect, rk)

	// The workspace room is not addressable from conversation events.
	_, ok = ConversationKind("workspace")
	req.False(ok)

	_, ok = ConversationKind("")
	req.False(ok)
}
