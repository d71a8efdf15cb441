package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient builds a client with a live send queue and no socket; queue
// inspection stands in for actual delivery.
func newTestClient(gw *Gateway, userID, name string) *Client {
	return newClient(gw, nil, Identity{UserID: userID, Name: name})
}

type frameEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// nextFrame pops one queued frame, failing the test when the queue is empty.
func nextFrame(t *testing.T, c *Client) frameEnvelope {
	t.Helper()

	select {
	case raw := <-c.send:
		var env frameEnvelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return env
	default:
		t.Fatal("expected a queued frame")
		return frameEnvelope{}
	}
}

// assertNoFrames fails the test when the client has anything queued.
func assertNoFrames(t *testing.T, c *Client) {
	t.Helper()

	select {
	case raw := <-c.send:
		t.Fatalf("expected no queued frames, got %s", raw)
	default:
	}
}

func TestRouterJoinAndLeaveAll(t *testing.T) {
	r := NewRouter()
	c := newTestClient(nil, "64b000000000000000000001", "ana")

	r.Join(c, "chat1")
	r.Join(c, "chat1")
	r.Join(c, "chat2")
	assert.Equal(t, 1, r.MemberCount("chat1"))
	assert.Equal(t, 1, r.MemberCount("chat2"))

	r.LeaveAll(c)
	assert.Equal(t, 0, r.MemberCount("chat1"))
	assert.Equal(t, 0, r.MemberCount("chat2"))
}

func TestRouterBroadcastExcludesSender(t *testing.T) {
	r := NewRouter()
	sender := newTestClient(nil, "64b000000000000000000001", "ana")
	peer := newTestClient(nil, "64b000000000000000000002", "ben")
	r.Join(sender, "chat1")
	r.Join(peer, "chat1")

	r.BroadcastToRoom("chat1", NewTypingStarted("chat1", sender.identity.UserID, "ana"), sender)

	env := nextFrame(t, peer)
	assert.Equal(t, TypeTypingStarted, env.Type)
	assertNoFrames(t, sender)
}

func TestRouterBroadcastReachesRoomOnly(t *testing.T) {
	r := NewRouter()
	inRoom := newTestClient(nil, "64b000000000000000000001", "ana")
	outside := newTestClient(nil, "64b000000000000000000002", "ben")
	r.Join(inRoom, "chat1")
	r.Join(outside, "chat2")

	r.BroadcastToRoom("chat1", NewTypingStopped("chat1", "64b000000000000000000003"), nil)

	assert.Equal(t, TypeTypingStopped, nextFrame(t, inRoom).Type)
	assertNoFrames(t, outside)
}

func TestRouterFullQueueDoesNotBlockOthers(t *testing.T) {
	r := NewRouter()
	slow := newTestClient(nil, "64b000000000000000000001", "ana")
	healthy := newTestClient(nil, "64b000000000000000000002", "ben")
	r.Join(slow, "chat1")
	r.Join(healthy, "chat1")

	for i := 0; i < sendQueueSize; i++ {
		require.NoError(t, slow.enqueue([]byte("{}")))
	}

	r.BroadcastToRoom("chat1", NewUserOnline("64b000000000000000000003", "cora"), nil)

	assert.Equal(t, TypeUserOnline, nextFrame(t, healthy).Type)
}

func TestRouterBroadcastToAllSkipsExcluded(t *testing.T) {
	r := NewRouter()
	self := newTestClient(nil, "64b000000000000000000001", "ana")
	other := newTestClient(nil, "64b000000000000000000002", "ben")
	r.Join(self, self.identity.UserID)
	r.Join(other, other.identity.UserID)

	r.BroadcastToAllExcept(NewUserOnline(self.identity.UserID, "ana"), self)

	assert.Equal(t, TypeUserOnline, nextFrame(t, other).Type)
	assertNoFrames(t, self)
}
