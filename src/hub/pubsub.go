package hub

import (
	"github.com/loungelabs/lounge/src/types"
)

// All delivery is fire-and-forget: no acknowledgement, no retry. A client
// whose send buffer is full simply misses the event.

// trySend queues an event for the client unless it is closed or its buffer
// is full. The client lock is held across the send so Close can never race
// a write to the channel.
func (c *Client) trySend(evt types.Event) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- evt:
		return true
	default:
		return false
	}
}

// Broadcast delivers an event to every registered client, the sender
// included.
func (h *Hub) Broadcast(evt types.Event) {
	for _, client := range h.clientSnapshot() {
		if !client.trySend(evt) {
			h.logger.Warn().Str("client_id", client.ID).Msg("send buffer full, dropping")
		}
	}
}

// BroadcastExcept delivers an event to every registered client but the one
// identified by exclude. The chat surface currently announces inclusively
// via Broadcast; this mode exists for senders that must not see their own
// event.
func (h *Hub) BroadcastExcept(exclude string, evt types.Event) {
	for _, client := range h.clientSnapshot() {
		if client.ID == exclude {
			continue
		}
		if !client.trySend(evt) {
			h.logger.Warn().Str("client_id", client.ID).Msg("send buffer full, dropping")
		}
	}
}

// Publish delivers an event to the subscribers of a room.
func (h *Hub) Publish(room string, evt types.Event) {
	h.mu.RLock()
	subs, ok := h.rooms[room]
	if !ok {
		h.mu.RUnlock()
		return
	}
	clients := make([]*Client, 0, len(subs))
	for id := range subs {
		if c, exists := h.clients[id]; exists {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if !client.trySend(evt) {
			h.logger.Warn().
				Str("client_id", client.ID).
				Str("room", room).
				Msg("send buffer full, dropping")
		}
	}
}

// SendToClient delivers an event to exactly one client.
func (h *Hub) SendToClient(clientID string, evt types.Event) bool {
	h.mu.RLock()
	client, ok := h.clients[clientID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	return client.trySend(evt)
}

// JoinRoom subscribes a client to a room.
func (h *Hub) JoinRoom(room, clientID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[clientID]
	if !ok {
		return false
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]bool)
	}
	h.rooms[room][clientID] = true
	client.AddRoom(room)
	return true
}

// LeaveRoom removes a client from a room.
func (h *Hub) LeaveRoom(room, clientID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.rooms[room]
	if !ok {
		return false
	}
	delete(subs, clientID)
	if len(subs) == 0 {
		delete(h.rooms, room)
	}
	if c, ok := h.clients[clientID]; ok {
		c.RemoveRoom(room)
	}
	return true
}

func (h *Hub) clientSnapshot() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	return clients
}
