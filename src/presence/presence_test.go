package presence

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry() *Registry {
	return NewRegistry(zerolog.Nop())
}

func TestJoinAndSnapshot(t *testing.T) {
	r := newRegistry()

	_, ok := r.Join("conn-1", "alice", nil)
	require.True(t, ok)
	_, ok = r.Join("conn-2", "bob", map[string]string{"age": "30"})
	require.True(t, ok)

	users := r.Snapshot()
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
	assert.Equal(t, "conn-1", users[0].ID)
	assert.Equal(t, "30", users[1].Attributes["age"])
	assert.False(t, users[0].JoinedAt.IsZero())
}

func TestJoinTrimsUsername(t *testing.T) {
	r := newRegistry()

	profile, ok := r.Join("conn-1", "  alice  ", nil)
	require.True(t, ok)
	assert.Equal(t, "alice", profile.Username)
}

func TestJoinRejectsBlankUsername(t *testing.T) {
	r := newRegistry()

	_, ok := r.Join("conn-1", "", nil)
	assert.False(t, ok)
	_, ok = r.Join("conn-2", "   ", nil)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Count())
}

func TestJoinOverwritesSameConnection(t *testing.T) {
	r := newRegistry()

	r.Join("conn-1", "alice", nil)
	r.Join("conn-2", "bob", nil)
	r.Join("conn-1", "alicia", nil)

	users := r.Snapshot()
	require.Len(t, users, 2)
	// Re-join keeps the original position in join order.
	assert.Equal(t, "alicia", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
}

func TestLeave(t *testing.T) {
	r := newRegistry()

	r.Join("conn-1", "alice", nil)
	r.Join("conn-2", "bob", nil)

	profile, ok := r.Leave("conn-1")
	require.True(t, ok)
	assert.Equal(t, "alice", profile.Username)

	users := r.Snapshot()
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Username)
}

func TestLeaveUnknownIsNoop(t *testing.T) {
	r := newRegistry()
	r.Join("conn-1", "alice", nil)

	_, ok := r.Leave("conn-ghost")
	assert.False(t, ok)
	assert.Equal(t, 1, r.Count())

	// Leaving twice is also a no-op.
	_, ok = r.Leave("conn-1")
	assert.True(t, ok)
	_, ok = r.Leave("conn-1")
	assert.False(t, ok)
}

func TestGet(t *testing.T) {
	r := newRegistry()
	r.Join("conn-1", "alice", nil)

	profile, ok := r.Get("conn-1")
	require.True(t, ok)
	assert.Equal(t, "alice", profile.Username)

	_, ok = r.Get("conn-2")
	assert.False(t, ok)
}

func TestResolveCaseInsensitive(t *testing.T) {
	r := newRegistry()
	r.Join("conn-1", "Alice", nil)

	id, ok := r.Resolve("alice")
	require.True(t, ok)
	assert.Equal(t, "conn-1", id)

	id, ok = r.Resolve("  ALICE ")
	require.True(t, ok)
	assert.Equal(t, "conn-1", id)

	_, ok = r.Resolve("carol")
	assert.False(t, ok)
	_, ok = r.Resolve("")
	assert.False(t, ok)
}

func TestResolveDuplicateNamesFirstJoinWins(t *testing.T) {
	r := newRegistry()

	// Duplicate usernames are allowed; resolution picks the first in
	// join order.
	r.Join("conn-1", "alice", nil)
	r.Join("conn-2", "alice", nil)

	id, ok := r.Resolve("alice")
	require.True(t, ok)
	assert.Equal(t, "conn-1", id)

	// Once the first leaves, the second becomes the match.
	r.Leave("conn-1")
	id, ok = r.Resolve("alice")
	require.True(t, ok)
	assert.Equal(t, "conn-2", id)
}
