// Package history keeps a bounded FIFO log of recent public chat messages,
// replayed to connections when they join.
package history

import (
	"sync"

	"github.com/loungelabs/lounge/src/types"
)

// DefaultCapacity is the number of messages retained when no explicit
// capacity is configured.
const DefaultCapacity = 100

// Ring is a fixed-capacity message log. Once full, appending evicts the
// oldest entry.
type Ring struct {
	mu       sync.RWMutex
	messages []types.ChatMessage
	capacity int
}

// NewRing creates a ring holding at most capacity messages. Non-positive
// capacities fall back to DefaultCapacity.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{
		messages: make([]types.ChatMessage, 0, capacity),
		capacity: capacity,
	}
}

// Append inserts a message at the logical end, evicting the oldest entry
// if the ring is full.
func (r *Ring) Append(msg types.ChatMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == r.capacity {
		copy(r.messages, r.messages[1:])
		r.messages[len(r.messages)-1] = msg
		return
	}
	r.messages = append(r.messages, msg)
}

// Snapshot returns the retained messages in arrival order.
func (r *Ring) Snapshot() []types.ChatMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.ChatMessage, len(r.messages))
	copy(out, r.messages)
	return out
}

// Len returns the number of retained messages.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.messages)
}
