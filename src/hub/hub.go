package hub

import (
	"sync"

	"github.com/loungelabs/lounge/src/types"
	"github.com/rs/zerolog"
)

// Hub manages all WebSocket client connections and room subscriptions, and
// dispatches inbound events to registered handlers. Inbound events are
// processed one at a time on the Run loop, so each handler's store
// mutations and triggered broadcasts complete before the next event starts.
type Hub struct {
	clients map[string]*Client
	rooms   map[string]map[string]bool // room -> set of clientIDs

	register   chan *Client
	unregister chan *Client
	incoming   chan types.Event

	handlers  map[string]types.EventHandler
	onConnect []func(string)
	onDisconn []func(string)

	mu     sync.RWMutex
	logger zerolog.Logger
	done   chan struct{}
}

// New creates a new Hub instance.
func New(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan types.Event, 256),
		handlers:   make(map[string]types.EventHandler),
		logger:     logger.With().Str("component", "hub").Logger(),
		done:       make(chan struct{}),
	}
}

// Run starts the hub event loop. Call in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case evt := <-h.incoming:
			h.handleEvent(evt)
		case <-h.done:
			return
		}
	}
}

// Stop halts the hub event loop.
func (h *Hub) Stop() {
	close(h.done)
}

// Register queues a client for registration.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister queues a client for removal.
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()

	h.logger.Info().Str("client_id", c.ID).Msg("client registered")

	for _, cb := range h.onConnect {
		cb(c.ID)
	}
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.ID)

	// Drop all room subscriptions.
	for room, subs := range h.rooms {
		delete(subs, c.ID)
		if len(subs) == 0 {
			delete(h.rooms, room)
		}
	}
	h.mu.Unlock()

	c.Close()
	h.logger.Info().Str("client_id", c.ID).Msg("client unregistered")

	// Disconnect callbacks run after the client is gone so presence cleanup
	// never observes a live entry for a dead connection.
	for _, cb := range h.onDisconn {
		cb(c.ID)
	}
}

func (h *Hub) handleEvent(evt types.Event) {
	h.mu.RLock()
	handler, ok := h.handlers[evt.Name]
	h.mu.RUnlock()

	if !ok {
		h.logger.Debug().Str("event", evt.Name).Msg("no handler")
		return
	}
	if err := handler(evt.ClientID, evt); err != nil {
		h.logger.Error().Err(err).Str("event", evt.Name).Msg("handler error")
	}
}
