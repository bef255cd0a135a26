// Package feed maintains the shared social feed: a bounded, newest-first
// list of posts with toggleable likes and append-only comments.
package feed

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/loungelabs/lounge/src/types"
	"github.com/rs/zerolog"
)

// DefaultCapacity bounds the feed when no explicit capacity is configured.
const DefaultCapacity = 100

// Store holds the feed posts, newest first. Mutations on unknown post IDs
// are silent no-ops.
type Store struct {
	mu       sync.RWMutex
	posts    []types.Post
	capacity int
	logger   zerolog.Logger
}

// NewStore creates an empty feed capped at capacity posts. Non-positive
// capacities fall back to DefaultCapacity.
func NewStore(capacity int, logger zerolog.Logger) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		logger:   logger.With().Str("component", "feed").Logger(),
	}
}

// Publish creates a post and prepends it to the feed, evicting the oldest
// post once the capacity is exceeded. Post IDs are uuids so they stay
// unique even under same-millisecond bursts.
func (s *Store) Publish(author, handle, content, postType, mediaURL string) types.Post {
	post := types.Post{
		ID:        uuid.New().String(),
		Author:    author,
		Handle:    handle,
		Content:   content,
		Type:      postType,
		MediaURL:  mediaURL,
		CreatedAt: time.Now(),
		LikedBy:   []string{},
		Comments:  []types.Comment{},
	}

	s.mu.Lock()
	s.posts = append([]types.Post{post}, s.posts...)
	if len(s.posts) > s.capacity {
		s.posts = s.posts[:s.capacity]
	}
	count := len(s.posts)
	s.mu.Unlock()

	s.logger.Info().
		Str("post_id", post.ID).
		Str("author", author).
		Int("posts", count).
		Msg("post published")
	return post
}

// ToggleLike flips username's membership in the post's like set: absent
// inserts, present removes. Reports whether a post was modified.
func (s *Store) ToggleLike(postID, username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.posts {
		if s.posts[i].ID != postID {
			continue
		}
		likes := s.posts[i].LikedBy
		for j, name := range likes {
			if name == username {
				s.posts[i].LikedBy = append(likes[:j], likes[j+1:]...)
				return true
			}
		}
		s.posts[i].LikedBy = append(likes, username)
		return true
	}

	s.logger.Debug().Str("post_id", postID).Msg("like toggle on unknown post ignored")
	return false
}

// AddComment appends a comment to the post. Reports whether a post was
// modified.
func (s *Store) AddComment(postID, author, content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.posts {
		if s.posts[i].ID != postID {
			continue
		}
		s.posts[i].Comments = append(s.posts[i].Comments, types.Comment{
			Author:  author,
			Content: content,
			Time:    time.Now().Format("15:04"),
		})
		return true
	}

	s.logger.Debug().Str("post_id", postID).Msg("comment on unknown post ignored")
	return false
}

// Get returns a copy of the post with the given ID.
func (s *Store) Get(postID string) (types.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.posts {
		if s.posts[i].ID == postID {
			return copyPost(s.posts[i]), true
		}
	}
	return types.Post{}, false
}

// Snapshot returns the full feed, newest first. Like and comment updates
// never reorder existing posts.
func (s *Store) Snapshot() []types.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Post, len(s.posts))
	for i := range s.posts {
		out[i] = copyPost(s.posts[i])
	}
	return out
}

// Len returns the number of posts currently retained.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}

func copyPost(p types.Post) types.Post {
	cp := p
	cp.LikedBy = append([]string{}, p.LikedBy...)
	cp.Comments = append([]types.Comment{}, p.Comments...)
	return cp
}
