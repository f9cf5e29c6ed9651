package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planningpoker/internal/room"
)

func TestHub_BindMovesConnection(t *testing.T) {
	h := NewHub()
	a, b := &clientConn{}, &clientConn{}
	h.register(a)
	h.register(b)

	h.Bind(a, Binding{Slug: "one-0000", SessionID: "s1"})
	h.Bind(b, Binding{Slug: "one-0000", SessionID: "s2"})
	assert.Equal(t, 1, h.Rooms())
	assert.Equal(t, 2, h.Connections())

	h.Bind(a, Binding{Slug: "two-0000", SessionID: "s1"})
	assert.Equal(t, 2, h.Rooms())
	got, ok := h.Lookup(a)
	require.True(t, ok)
	assert.Equal(t, "two-0000", got.Slug)

	prev, ok := h.Unbind(b)
	require.True(t, ok)
	assert.Equal(t, Binding{Slug: "one-0000", SessionID: "s2"}, prev)
	assert.Equal(t, 1, h.Rooms(), "empty connection sets are dropped")

	_, ok = h.Unbind(b)
	assert.False(t, ok)
}

func TestHub_Unregister(t *testing.T) {
	h := NewHub()
	c := &clientConn{}
	h.register(c)

	_, ok := h.unregister(c)
	assert.False(t, ok)
	assert.Zero(t, h.Connections())

	h.register(c)
	h.Bind(c, Binding{Slug: "one-0000", SessionID: "s1"})
	b, ok := h.unregister(c)
	require.True(t, ok)
	assert.Equal(t, "s1", b.SessionID)
	assert.Zero(t, h.Rooms())
	assert.Empty(t, h.bound())
}

func TestHub_RoomUpdatedWithoutListeners(t *testing.T) {
	h := NewHub()
	assert.NotPanics(t, func() { h.RoomUpdated("quiet-0000", room.New("quiet", false, "")) })
}
