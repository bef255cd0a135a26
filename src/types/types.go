package types

import (
	"encoding/json"
	"time"
)

// Event is the single wire envelope exchanged over a WebSocket connection.
// Inbound events are routed to handlers by Name; outbound events carry the
// payload under Data.
type Event struct {
	Name      string         `json:"event"`
	Room      string         `json:"room,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	ClientID  string         `json:"clientId,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// UnmarshalJSON accepts both payload shapes clients send: an object, or a
// bare scalar (typically a string username or message text). Scalars are
// wrapped as {"value": v} so handlers see one uniform map.
func (e *Event) UnmarshalJSON(data []byte) error {
	type alias Event
	aux := struct {
		Data json.RawMessage `json:"data,omitempty"`
		*alias
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Data) == 0 {
		e.Data = nil
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal(aux.Data, &obj); err == nil {
		e.Data = obj
		return nil
	}

	var v any
	if err := json.Unmarshal(aux.Data, &v); err != nil {
		return err
	}
	e.Data = map[string]any{"value": v}
	return nil
}

// EventHandler handles an inbound event from a client.
type EventHandler func(clientID string, evt Event) error

// UserProfile describes a registered user on a live connection. It is
// created when the connection joins and never mutated afterwards.
type UserProfile struct {
	ID         string            `json:"id"`
	Username   string            `json:"username"`
	Attributes map[string]string `json:"attributes,omitempty"`
	JoinedAt   time.Time         `json:"joinedAt"`
}

// ChatMessage is a single lounge message, public or directed.
type ChatMessage struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Text     string `json:"text"`
	File     string `json:"file,omitempty"`
	FileType string `json:"fileType,omitempty"`
	Time     string `json:"time"`
	System   bool   `json:"system,omitempty"`
	Private  bool   `json:"private,omitempty"`
	Target   string `json:"target,omitempty"`
	SenderID string `json:"socketId,omitempty"`
}

// Comment is an append-only entry on a Post.
type Comment struct {
	Author  string `json:"author"`
	Content string `json:"content"`
	Time    string `json:"time"`
}

// Post is one feed entry. LikedBy has set semantics; Comments are ordered
// by insertion.
type Post struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Handle    string    `json:"handle,omitempty"`
	Content   string    `json:"content"`
	Type      string    `json:"type,omitempty"`
	MediaURL  string    `json:"mediaUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	LikedBy   []string  `json:"likedBy"`
	Comments  []Comment `json:"comments"`
}

// ClientInfo holds metadata about a connected WebSocket client.
type ClientInfo struct {
	ID          string    `json:"id"`
	ConnectedAt time.Time `json:"connected_at"`
	Rooms       []string  `json:"rooms"`
}

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	WriteJSON(v any) error
	ReadJSON(v any) error
	Close() error
}
