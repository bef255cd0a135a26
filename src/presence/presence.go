// Package presence tracks which connections have registered a user profile.
// The registry is the source of truth for "who is online" and also resolves
// display names to live connections for directed delivery.
package presence

import (
	"strings"
	"sync"
	"time"

	"github.com/loungelabs/lounge/src/types"
	"github.com/rs/zerolog"
)

// Registry maps live connection IDs to user profiles. Snapshot order is
// join order. Username uniqueness is not enforced: two connections may
// register the same name, and Resolve picks the first match in join order.
type Registry struct {
	entries map[string]types.UserProfile
	order   []string

	mu     sync.RWMutex
	logger zerolog.Logger
}

// NewRegistry creates an empty presence registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		entries: make(map[string]types.UserProfile),
		logger:  logger.With().Str("component", "presence").Logger(),
	}
}

// Join registers a profile for connID. The username is trimmed; a blank
// result is rejected and Join reports false without surfacing an error.
// Joining twice on the same connection overwrites the previous profile
// without changing its position in join order.
func (r *Registry) Join(connID, username string, attrs map[string]string) (types.UserProfile, bool) {
	name := strings.TrimSpace(username)
	if name == "" {
		r.logger.Debug().Str("client_id", connID).Msg("join with blank username ignored")
		return types.UserProfile{}, false
	}

	profile := types.UserProfile{
		ID:         connID,
		Username:   name,
		Attributes: attrs,
		JoinedAt:   time.Now(),
	}

	r.mu.Lock()
	if _, exists := r.entries[connID]; !exists {
		r.order = append(r.order, connID)
	}
	r.entries[connID] = profile
	count := len(r.entries)
	r.mu.Unlock()

	r.logger.Info().
		Str("client_id", connID).
		Str("username", name).
		Int("online", count).
		Msg("user joined")
	return profile, true
}

// Leave removes the entry for connID and returns the profile that was
// registered. Removing an unknown connection is a no-op.
func (r *Registry) Leave(connID string) (types.UserProfile, bool) {
	r.mu.Lock()
	profile, ok := r.entries[connID]
	if !ok {
		r.mu.Unlock()
		return types.UserProfile{}, false
	}
	delete(r.entries, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	count := len(r.entries)
	r.mu.Unlock()

	r.logger.Info().
		Str("client_id", connID).
		Str("username", profile.Username).
		Int("online", count).
		Msg("user left")
	return profile, true
}

// Get returns the profile registered for connID.
func (r *Registry) Get(connID string) (types.UserProfile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.entries[connID]
	return profile, ok
}

// Snapshot returns the current online list in join order.
func (r *Registry) Snapshot() []types.UserProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]types.UserProfile, 0, len(r.order))
	for _, id := range r.order {
		users = append(users, r.entries[id])
	}
	return users
}

// Resolve finds the connection for a display name using a case-insensitive
// exact match. When several connections share the name, the first match in
// join order wins; that tie-break is a documented contract choice, not a
// guaranteed-correct routing decision.
func (r *Registry) Resolve(username string) (string, bool) {
	target := strings.ToLower(strings.TrimSpace(username))
	if target == "" {
		return "", false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		if strings.ToLower(r.entries[id].Username) == target {
			return id, true
		}
	}
	return "", false
}

// Count returns the number of registered users.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
