package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvelope_NewAndDecode(t *testing.T) {
	req := require.New(t)

	env, err := New(TypeUserTyping, UserTyping{UserID: "alice", ConversationID: "d1", Kind: KindDirect})
	req.NoError(err)
	req.Equal(TypeUserTyping, env.Type)

	var p UserTyping
	req.NoError(env.Decode(&p))
	req.Equal("alice", p.UserID)
	req.Equal("d1", p.ConversationID)
}

func TestEnvelope_NilPayload(t *testing.T) {
	req := require.New(t)

	env, err := New(TypeUserOffline, nil)
	req.NoError(err)

	raw, err := json.Marshal(env)
	req.NoError(err)
	req.JSONEq(`{"type":"user_offline"}`, string(raw))
}

func TestEnvelope_WireFormat(t *testing.T) {
	req := require.New(t)

	var env Envelope
	err := json.Unmarshal([]byte(`{"type":"join_conversation","payload":{"conversationId":"g1","type":"group"}}`), &env)
	req.NoError(err)
	req.Equal(TypeJoinConversation, env.Type)

	var ref ConversationRef
	req.NoError(env.Decode(&ref))
	req.Equal("g1", ref.ConversationID)
	req.Equal(KindGroup, ref.Kind)
}
