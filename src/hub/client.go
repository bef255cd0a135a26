package hub

import (
	"sync"
	"time"

	"github.com/loungelabs/lounge/src/types"
)

// Client wraps a WebSocket connection and manages message flow.
type Client struct {
	ID          string
	conn        types.Conn
	hub         *Hub
	Send        chan types.Event
	connectedAt time.Time
	rooms       map[string]bool
	mu          sync.RWMutex
	done        chan struct{}
	closed      bool
}

// NewClient creates a new WebSocket client wrapper.
func NewClient(id string, conn types.Conn, h *Hub) *Client {
	return NewClientBuffered(id, conn, h, 256)
}

// NewClientBuffered creates a client with an explicit send buffer size.
func NewClientBuffered(id string, conn types.Conn, h *Hub, buffer int) *Client {
	if buffer <= 0 {
		buffer = 256
	}
	return &Client{
		ID:          id,
		conn:        conn,
		hub:         h,
		Send:        make(chan types.Event, buffer),
		connectedAt: time.Now(),
		rooms:       make(map[string]bool),
		done:        make(chan struct{}),
	}
}

// Info returns metadata about this client.
func (c *Client) Info() types.ClientInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rooms := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		rooms = append(rooms, room)
	}
	return types.ClientInfo{
		ID:          c.ID,
		ConnectedAt: c.connectedAt,
		Rooms:       rooms,
	}
}

// AddRoom records a room subscription.
func (c *Client) AddRoom(room string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[room] = true
}

// RemoveRoom drops a room subscription.
func (c *Client) RemoveRoom(room string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, room)
}

// ReadPump reads events from the WebSocket and routes them to the hub.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		var evt types.Event
		if err := c.conn.ReadJSON(&evt); err != nil {
			return
		}
		evt.ClientID = c.ID
		evt.Timestamp = time.Now()
		c.hub.incoming <- evt
	}
}

// WritePump writes events from the send channel to the WebSocket.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for {
		select {
		case evt, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(evt); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// Close signals the client to stop its pumps.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.done)
		close(c.Send)
	}
}
