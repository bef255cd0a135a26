// Package service wires the hub to the presence registry, feed store, and
// history ring. It owns the session lifecycle: a connection starts bare,
// becomes joined once it registers a profile, and is cleaned up on
// disconnect. Content events from connections that never joined are
// silently ignored.
package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/loungelabs/lounge/src/feed"
	"github.com/loungelabs/lounge/src/history"
	"github.com/loungelabs/lounge/src/hub"
	"github.com/loungelabs/lounge/src/presence"
	"github.com/loungelabs/lounge/src/types"
	"github.com/rs/zerolog"
)

// FeedRoom is the room whose subscribers receive feed updates.
const FeedRoom = "global-feed"

// SystemUser is the sender name on server-generated messages.
const SystemUser = "System"

// Service routes inbound events through the stores and fans the results
// back out. Stores are injected so instances stay independently testable.
type Service struct {
	hub      *hub.Hub
	presence *presence.Registry
	feed     *feed.Store
	history  *history.Ring
	logger   zerolog.Logger
}

// New creates the service and registers its event handlers and lifecycle
// callbacks on the hub.
func New(h *hub.Hub, reg *presence.Registry, posts *feed.Store, ring *history.Ring, logger zerolog.Logger) *Service {
	s := &Service{
		hub:      h,
		presence: reg,
		feed:     posts,
		history:  ring,
		logger:   logger.With().Str("component", "service").Logger(),
	}

	h.RegisterHandler("join", s.handleJoin)
	h.RegisterHandler("sendMessage", s.handleChatMessage)
	h.RegisterHandler("chat_message", s.handleChatMessage)
	h.RegisterHandler("privateMessage", s.handlePrivateMessage)
	h.RegisterHandler("new-post", s.handleNewPost)
	h.RegisterHandler("new_post", s.handleNewPost)
	h.RegisterHandler("toggle-like", s.handleToggleLike)
	h.RegisterHandler("new-comment", s.handleNewComment)
	h.RegisterHandler("join-room", s.handleJoinRoom)

	h.OnDisconnection(s.handleDisconnect)

	return s
}

// handleJoin registers a profile for the connection, replays history to it,
// and announces the arrival. A blank username leaves the session unjoined
// with no error surfaced to the caller.
func (s *Service) handleJoin(clientID string, evt types.Event) error {
	username := stringField(evt.Data, "username", "value")
	profile, ok := s.presence.Join(clientID, username, stringAttributes(evt.Data, "username", "value"))
	if !ok {
		return nil
	}

	// History goes to the joiner before any announcement so the replay
	// holds exactly the messages that predate the join.
	s.hub.SendToClient(clientID, s.event("history", map[string]any{
		"messages": s.history.Snapshot(),
	}))

	s.broadcastUserList()
	s.hub.Broadcast(s.messageEvent(types.ChatMessage{
		ID:       uuid.New().String(),
		Username: SystemUser,
		Text:     fmt.Sprintf("%s has entered the lounge!", profile.Username),
		Time:     clock(),
		System:   true,
	}))
	return nil
}

// handleChatMessage broadcasts a public message from a joined connection
// and records it in the history ring.
func (s *Service) handleChatMessage(clientID string, evt types.Event) error {
	profile, ok := s.presence.Get(clientID)
	if !ok {
		s.logger.Debug().Str("client_id", clientID).Msg("message before join ignored")
		return nil
	}

	text := stringField(evt.Data, "text", "value")
	file := stringField(evt.Data, "file")
	if text == "" && file == "" {
		return nil
	}

	msg := types.ChatMessage{
		ID:       uuid.New().String(),
		Username: profile.Username,
		Text:     text,
		File:     file,
		FileType: stringField(evt.Data, "fileType"),
		Time:     clock(),
		SenderID: clientID,
	}
	s.history.Append(msg)
	s.hub.Broadcast(s.messageEvent(msg))
	return nil
}

// handlePrivateMessage delivers a directed message to the first connection
// whose username matches the target, and echoes it to the sender. An
// unresolvable target yields an offline notice to the sender alone.
func (s *Service) handlePrivateMessage(clientID string, evt types.Event) error {
	profile, ok := s.presence.Get(clientID)
	if !ok {
		s.logger.Debug().Str("client_id", clientID).Msg("private message before join ignored")
		return nil
	}

	target := stringField(evt.Data, "target", "to")
	text := stringField(evt.Data, "text", "value")
	if target == "" || text == "" {
		return nil
	}

	targetID, found := s.presence.Resolve(target)
	if !found {
		s.hub.SendToClient(clientID, s.messageEvent(types.ChatMessage{
			ID:       uuid.New().String(),
			Username: SystemUser,
			Text:     fmt.Sprintf("%s is offline", target),
			Time:     clock(),
			System:   true,
		}))
		return nil
	}

	msg := types.ChatMessage{
		ID:       uuid.New().String(),
		Username: profile.Username,
		Text:     text,
		Time:     clock(),
		Private:  true,
		Target:   target,
		SenderID: clientID,
	}
	wire := s.event("privateMessage", messagePayload(msg))
	s.hub.SendToClient(targetID, wire)
	if targetID != clientID {
		s.hub.SendToClient(clientID, wire)
	}
	return nil
}

// handleNewPost publishes a post and streams the updated feed to the
// feed room.
func (s *Service) handleNewPost(clientID string, evt types.Event) error {
	profile, ok := s.presence.Get(clientID)
	if !ok {
		s.logger.Debug().Str("client_id", clientID).Msg("post before join ignored")
		return nil
	}

	content := stringField(evt.Data, "content", "value")
	if content == "" {
		return nil
	}

	author := stringField(evt.Data, "user", "username")
	if author == "" {
		author = profile.Username
	}
	s.feed.Publish(
		author,
		stringField(evt.Data, "handle"),
		content,
		stringField(evt.Data, "type"),
		stringField(evt.Data, "mediaUrl"),
	)
	s.broadcastFeed()
	return nil
}

// handleToggleLike flips the caller's like on a post. Unknown post IDs are
// ignored without a feed broadcast.
func (s *Service) handleToggleLike(clientID string, evt types.Event) error {
	profile, ok := s.presence.Get(clientID)
	if !ok {
		return nil
	}

	postID := stringField(evt.Data, "postId")
	handle := stringField(evt.Data, "handle")
	if handle == "" {
		handle = profile.Username
	}
	if s.feed.ToggleLike(postID, handle) {
		s.broadcastFeed()
	}
	return nil
}

// handleNewComment appends a comment to a post. Unknown post IDs are
// ignored without a feed broadcast.
func (s *Service) handleNewComment(clientID string, evt types.Event) error {
	profile, ok := s.presence.Get(clientID)
	if !ok {
		return nil
	}

	postID := stringField(evt.Data, "postId")
	content := stringField(evt.Data, "content")
	if content == "" {
		return nil
	}
	author := stringField(evt.Data, "user")
	if author == "" {
		author = profile.Username
	}
	if s.feed.AddComment(postID, author, content) {
		s.broadcastFeed()
	}
	return nil
}

// handleJoinRoom subscribes the connection to a room. Joining the feed
// room immediately delivers the current feed to that connection. Room
// joins are allowed before a profile is registered.
func (s *Service) handleJoinRoom(clientID string, evt types.Event) error {
	room := stringField(evt.Data, "room", "value")
	if room == "" {
		return nil
	}
	if !s.hub.JoinRoom(room, clientID) {
		return fmt.Errorf("client %s not found", clientID)
	}
	if room == FeedRoom {
		s.hub.SendToClient(clientID, s.feedEvent())
	}
	return nil
}

// handleDisconnect tears down presence for a departed connection. It runs
// for every disconnect; connections that never joined need no cleanup.
func (s *Service) handleDisconnect(clientID string) {
	profile, wasJoined := s.presence.Leave(clientID)
	if !wasJoined {
		return
	}

	s.broadcastUserList()
	s.hub.Broadcast(s.messageEvent(types.ChatMessage{
		ID:       uuid.New().String(),
		Username: SystemUser,
		Text:     fmt.Sprintf("%s left the lounge.", profile.Username),
		Time:     clock(),
		System:   true,
	}))
}

func (s *Service) broadcastUserList() {
	s.hub.Broadcast(s.event("userListUpdate", map[string]any{
		"users": s.presence.Snapshot(),
	}))
}

func (s *Service) broadcastFeed() {
	s.hub.Publish(FeedRoom, s.feedEvent())
}

func (s *Service) feedEvent() types.Event {
	evt := s.event("feed-update", map[string]any{
		"posts": s.feed.Snapshot(),
	})
	evt.Room = FeedRoom
	return evt
}

func (s *Service) event(name string, data map[string]any) types.Event {
	return types.Event{
		Name:      name,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func (s *Service) messageEvent(msg types.ChatMessage) types.Event {
	return s.event("message", messagePayload(msg))
}

// OnlineUsers returns the current presence snapshot in join order.
func (s *Service) OnlineUsers() []types.UserProfile {
	return s.presence.Snapshot()
}

// Feed returns the current feed snapshot, newest first.
func (s *Service) Feed() []types.Post {
	return s.feed.Snapshot()
}

// History returns the retained public messages in arrival order.
func (s *Service) History() []types.ChatMessage {
	return s.history.Snapshot()
}

func messagePayload(msg types.ChatMessage) map[string]any {
	payload := map[string]any{
		"id":       msg.ID,
		"username": msg.Username,
		"text":     msg.Text,
		"time":     msg.Time,
	}
	if msg.System {
		payload["system"] = true
	}
	if msg.Private {
		payload["private"] = true
		payload["target"] = msg.Target
	}
	if msg.File != "" {
		payload["file"] = msg.File
		payload["fileType"] = msg.FileType
	}
	if msg.SenderID != "" {
		payload["socketId"] = msg.SenderID
	}
	return payload
}

// stringField returns the first non-empty string found under keys. Clients
// that send a bare string instead of an object arrive here as a payload
// with a single "value" key, so handlers list it as a fallback.
func stringField(data map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := data[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// stringAttributes collects the remaining string fields of a join payload
// as display attributes, skipping the named keys.
func stringAttributes(data map[string]any, skip ...string) map[string]string {
	attrs := make(map[string]string)
	for key, v := range data {
		str, ok := v.(string)
		if !ok {
			continue
		}
		skipped := false
		for _, sk := range skip {
			if key == sk {
				skipped = true
				break
			}
		}
		if !skipped {
			attrs[key] = str
		}
	}
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}

func clock() string {
	return time.Now().Format("15:04")
}
