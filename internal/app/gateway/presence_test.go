package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresenceRegisterAndDeregister(t *testing.T) {
	p := NewPresence()
	c := newTestClient(nil, "64b000000000000000000001", "ana")

	require.Nil(t, p.Register(c))
	assert.True(t, p.IsOnline(c.identity.UserID))
	assert.Equal(t, 1, p.Count())

	require.True(t, p.Deregister(c))
	assert.False(t, p.IsOnline(c.identity.UserID))
	assert.Equal(t, 0, p.Count())
}

func TestPresenceSecondConnectionReplacesFirst(t *testing.T) {
	p := NewPresence()
	first := newTestClient(nil, "64b000000000000000000001", "ana")
	second := newTestClient(nil, "64b000000000000000000001", "ana")

	require.Nil(t, p.Register(first))
	evicted := p.Register(second)

	require.Same(t, first, evicted)
	assert.True(t, p.IsOnline(first.identity.UserID))
	assert.Equal(t, 1, p.Count())
}

func TestPresenceDeregisterIgnoresStaleConnection(t *testing.T) {
	p := NewPresence()
	first := newTestClient(nil, "64b000000000000000000001", "ana")
	second := newTestClient(nil, "64b000000000000000000001", "ana")

	p.Register(first)
	p.Register(second)

	// The replaced connection's teardown must not knock the live session offline.
	require.False(t, p.Deregister(first))
	assert.True(t, p.IsOnline(second.identity.UserID))

	require.True(t, p.Deregister(second))
	assert.False(t, p.IsOnline(second.identity.UserID))
}

func TestPresenceOnlineListsDistinctUsers(t *testing.T) {
	p := NewPresence()
	p.Register(newTestClient(nil, "64b000000000000000000001", "ana"))
	p.Register(newTestClient(nil, "64b000000000000000000002", "ben"))

	online := p.Online()
	assert.ElementsMatch(t, []string{"64b000000000000000000001", "64b000000000000000000002"}, online)
}
