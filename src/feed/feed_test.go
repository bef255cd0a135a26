package feed

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(capacity int) *Store {
	return NewStore(capacity, zerolog.Nop())
}

func TestPublishPrependsNewestFirst(t *testing.T) {
	s := newStore(10)

	s.Publish("alice", "@alice", "first", "", "")
	s.Publish("bob", "@bob", "second", "", "")

	posts := s.Snapshot()
	require.Len(t, posts, 2)
	assert.Equal(t, "second", posts[0].Content)
	assert.Equal(t, "first", posts[1].Content)
}

func TestPublishAssignsUniqueIDs(t *testing.T) {
	s := newStore(100)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		post := s.Publish("alice", "", fmt.Sprintf("post-%d", i), "", "")
		require.NotEmpty(t, post.ID)
		assert.False(t, seen[post.ID], "duplicate post ID %s", post.ID)
		seen[post.ID] = true
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	s := newStore(3)

	for i := 1; i <= 5; i++ {
		s.Publish("alice", "", fmt.Sprintf("post-%d", i), "", "")
	}

	posts := s.Snapshot()
	require.Len(t, posts, 3)
	assert.Equal(t, "post-5", posts[0].Content)
	assert.Equal(t, "post-3", posts[2].Content)
}

func TestToggleLikeIsSelfInverse(t *testing.T) {
	s := newStore(10)
	post := s.Publish("alice", "", "hello", "", "")

	require.True(t, s.ToggleLike(post.ID, "alice"))
	got, _ := s.Get(post.ID)
	assert.Equal(t, []string{"alice"}, got.LikedBy)

	require.True(t, s.ToggleLike(post.ID, "alice"))
	got, _ = s.Get(post.ID)
	assert.Empty(t, got.LikedBy)
}

func TestToggleLikeSetSemantics(t *testing.T) {
	s := newStore(10)
	post := s.Publish("alice", "", "hello", "", "")

	s.ToggleLike(post.ID, "bob")
	s.ToggleLike(post.ID, "carol")
	s.ToggleLike(post.ID, "bob")

	got, _ := s.Get(post.ID)
	assert.Equal(t, []string{"carol"}, got.LikedBy)
}

func TestToggleLikeUnknownPostIsNoop(t *testing.T) {
	s := newStore(10)
	s.Publish("alice", "", "hello", "", "")

	assert.False(t, s.ToggleLike("missing-id", "bob"))
}

func TestAddCommentKeepsInsertionOrder(t *testing.T) {
	s := newStore(10)
	post := s.Publish("alice", "", "hello", "", "")

	require.True(t, s.AddComment(post.ID, "bob", "first!"))
	require.True(t, s.AddComment(post.ID, "carol", "second"))

	got, _ := s.Get(post.ID)
	require.Len(t, got.Comments, 2)
	assert.Equal(t, "bob", got.Comments[0].Author)
	assert.Equal(t, "carol", got.Comments[1].Author)
}

func TestAddCommentUnknownPostIsNoop(t *testing.T) {
	s := newStore(10)
	assert.False(t, s.AddComment("missing-id", "bob", "hello?"))
}

func TestMutationsPreservePostOrder(t *testing.T) {
	s := newStore(10)
	older := s.Publish("alice", "", "older", "", "")
	s.Publish("bob", "", "newer", "", "")

	s.ToggleLike(older.ID, "carol")
	s.AddComment(older.ID, "carol", "nice")

	posts := s.Snapshot()
	require.Len(t, posts, 2)
	assert.Equal(t, "newer", posts[0].Content)
	assert.Equal(t, "older", posts[1].Content)
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newStore(10)
	post := s.Publish("alice", "", "hello", "", "")
	s.ToggleLike(post.ID, "bob")

	posts := s.Snapshot()
	posts[0].LikedBy[0] = "mallory"

	got, _ := s.Get(post.ID)
	assert.Equal(t, []string{"bob"}, got.LikedBy)
}
