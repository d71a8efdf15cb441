/*
Package gateway implements the realtime messaging core: connection lifecycle,
presence, room membership, typing indicators and message fan-out over
WebSocket connections.

The gateway never trusts client-supplied identity or authorization. Identity
comes from the verified token at upgrade time, and every typing or send action
is re-checked against the chat store's participants list.
*/
package gateway

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ecotrade/internal/app/chat"
	"ecotrade/internal/pkg/logx"
	"ecotrade/internal/pkg/metrics"
)

// storeTimeout bounds every chat store call made on behalf of a live event.
const storeTimeout = 5 * time.Second

// ChatStore is the durable conversation access the gateway needs. It is the
// single authorization source: membership checks and persistence both go
// through it.
type ChatStore interface {
	FindChatByID(ctx context.Context, chatID string) (*chat.Chat, error)
	ListParticipants(ctx context.Context, chatID string) ([]string, error)
	SaveMessage(ctx context.Context, chatID, senderID, content string, at time.Time) (*chat.Message, error)
}

// SenderResolver supplies display data (name, avatar) for a message sender.
type SenderResolver interface {
	SenderInfo(ctx context.Context, userID string) (chat.SenderInfo, error)
}

// Gateway owns all realtime state for the process: the presence registry, the
// room membership table and the typing tracker. One instance serves every
// WebSocket connection.
type Gateway struct {
	store   ChatStore
	senders SenderResolver

	presence *Presence
	rooms    *Router
	typing   *Tracker

	logger zerolog.Logger
}

// NewGateway wires a gateway around the given chat store and sender resolver.
func NewGateway(store ChatStore, senders SenderResolver) *Gateway {
	gw := &Gateway{
		store:    store,
		senders:  senders,
		presence: NewPresence(),
		rooms:    NewRouter(),
		logger:   logx.Logger().With().Str("component", "gateway").Logger(),
	}
	gw.typing = NewTracker(func(chatID, userID string) {
		gw.rooms.BroadcastToRoom(chatID, NewTypingStopped(chatID, userID), nil)
	})
	return gw
}

// HandleConnection takes ownership of an upgraded WebSocket connection for an
// authenticated user. It registers presence, kicks any previous session of the
// same user, joins the user's personal notification room, announces the user
// online, and blocks until the connection ends.
func (gw *Gateway) HandleConnection(conn *websocket.Conn, identity Identity) {
	c := newClient(gw, conn, identity)

	if evicted := gw.presence.Register(c); evicted != nil {
		evicted.kick("Session replaced by a newer connection")
	}

	gw.rooms.Join(c, identity.UserID)
	metrics.IncWSActive()

	gw.logger.Info().
		Str("user_id", identity.UserID).
		Str("conn_id", c.id).
		Msg("User connected")

	gw.rooms.BroadcastToAllExcept(NewUserOnline(identity.UserID, identity.Name), c)

	go c.writePump()
	c.readPump()
}

// Shutdown closes every live connection. Called during server shutdown after
// the listener has stopped accepting new upgrades.
func (gw *Gateway) Shutdown() {
	clients := gw.presence.Clients()
	gw.logger.Info().Int("connections", len(clients)).Msg("Closing realtime connections")

	for _, c := range clients {
		c.closeWith(websocket.CloseGoingAway, "Server shutting down")
	}
}

// OnlineUsers returns the ids of every user with a live connection.
func (gw *Gateway) OnlineUsers() []string {
	return gw.presence.Online()
}

// IsOnline reports whether the user has a live connection.
func (gw *Gateway) IsOnline(userID string) bool {
	return gw.presence.IsOnline(userID)
}

// NotifyUser delivers an event to every connection in the user's personal
// room. A user with no live connection simply misses the event.
func (gw *Gateway) NotifyUser(userID string, ev ServerEvent) {
	gw.rooms.BroadcastToRoom(userID, ev, nil)
}

// FanOutMessage broadcasts a persisted message: receive_message to the chat
// room (sender included, which doubles as the delivery acknowledgement) and
// notification:new_message to the personal room of every other participant.
// Used by both the live send path and the REST message endpoint.
func (gw *Gateway) FanOutMessage(ctx context.Context, chatID, senderID string, msg chat.WireMessage) {
	gw.rooms.BroadcastToRoom(chatID, NewReceiveMessage(msg), nil)

	participants, err := gw.store.ListParticipants(ctx, chatID)
	if err != nil {
		gw.logger.Error().Err(err).Str("chat_id", chatID).Msg("Error listing participants for notification fan-out")
		return
	}
	for _, p := range participants {
		if p == senderID {
			continue
		}
		gw.NotifyUser(p, NewMessageNotification(chatID, msg))
	}
}

// dispatch routes one decoded client event to its handler. A panic in a
// handler is contained to the offending event; the connection's read loop
// keeps running.
func (gw *Gateway) dispatch(c *Client, event ClientEvent) {
	defer func() {
		if rec := recover(); rec != nil {
			gw.logger.Error().
				Interface("panic", rec).
				Str("user_id", c.identity.UserID).
				Str("conn_id", c.id).
				Msg("Recovered panic in event handler")
		}
	}()

	switch ev := event.(type) {
	case JoinChatEvent:
		metrics.IncWSEvent(TypeJoinChat)
		gw.handleJoinChat(c, ev)
	case TypingStartEvent:
		metrics.IncWSEvent(TypeTypingStart)
		gw.handleTypingStart(c, ev)
	case TypingStopEvent:
		metrics.IncWSEvent(TypeTypingStop)
		gw.handleTypingStop(c, ev)
	case SendMessageEvent:
		metrics.IncWSEvent(TypeSendMessage)
		gw.handleSendMessage(c, ev)
	}
}

// handleJoinChat subscribes the connection to a chat room. Subscription is
// deliberately unchecked; broadcasts only ever follow authorized actions, so
// an uninvited subscriber receives nothing it could not read anyway via the
// checked paths.
func (gw *Gateway) handleJoinChat(c *Client, ev JoinChatEvent) {
	if _, err := primitive.ObjectIDFromHex(ev.ChatID); err != nil {
		c.logger.Warn().Str("chat_id", ev.ChatID).Msg("join_chat with malformed chat id")
		return
	}
	gw.rooms.Join(c, ev.ChatID)
}

// handleTypingStart marks the user typing and notifies the other subscribers.
// Unauthorized or malformed starts are dropped without a reply; typing is
// advisory state and not worth an error round-trip.
func (gw *Gateway) handleTypingStart(c *Client, ev TypingStartEvent) {
	if !gw.isParticipant(c, ev.ChatID) {
		return
	}

	gw.typing.Start(ev.ChatID, c.identity.UserID)
	gw.rooms.BroadcastToRoom(ev.ChatID, NewTypingStarted(ev.ChatID, c.identity.UserID, c.identity.Name), c)
}

// handleTypingStop clears the user's typing state. The broadcast fires only
// when an entry was actually cleared, so a stop after an expiry or disconnect
// stays silent.
func (gw *Gateway) handleTypingStop(c *Client, ev TypingStopEvent) {
	if gw.typing.Stop(ev.ChatID, c.identity.UserID) {
		gw.rooms.BroadcastToRoom(ev.ChatID, NewTypingStopped(ev.ChatID, c.identity.UserID), c)
	}
}

// handleSendMessage validates, authorizes and persists a live message, then
// fans it out. All failures go back to the sender only.
func (gw *Gateway) handleSendMessage(c *Client, ev SendMessageEvent) {
	content := ev.Content
	if isBlank(content) {
		c.sendError("Message content is required.")
		return
	}
	if len([]rune(content)) > chat.MaxContentLength {
		c.sendError("Message content exceeds the maximum length.")
		return
	}

	if !gw.isParticipant(c, ev.ChatID) {
		c.sendError("Chat not found or access denied.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	msg, err := gw.store.SaveMessage(ctx, ev.ChatID, c.identity.UserID, content, time.Now().UTC())
	if err != nil {
		c.logger.Error().Err(err).Str("chat_id", ev.ChatID).Msg("Error persisting message")
		c.sendError("Failed to send message.")
		return
	}

	wire := chat.WireMessage{Message: *msg, SenderInfo: gw.resolveSender(ctx, c)}

	// Sender clears their own typing indicator by sending; stop it for them.
	if gw.typing.Stop(ev.ChatID, c.identity.UserID) {
		gw.rooms.BroadcastToRoom(ev.ChatID, NewTypingStopped(ev.ChatID, c.identity.UserID), c)
	}

	gw.FanOutMessage(ctx, ev.ChatID, c.identity.UserID, wire)
}

// handleDisconnect tears down all state the connection held. Presence and the
// offline broadcast are skipped when a newer session for the same user already
// replaced this one.
func (gw *Gateway) handleDisconnect(c *Client) {
	deregistered := gw.presence.Deregister(c)

	gw.rooms.LeaveAll(c)
	metrics.DecWSActive()

	if !deregistered {
		gw.logger.Debug().
			Str("user_id", c.identity.UserID).
			Str("conn_id", c.id).
			Msg("Replaced session disconnected")
		return
	}

	for _, chatID := range gw.typing.ClearUser(c.identity.UserID) {
		gw.rooms.BroadcastToRoom(chatID, NewTypingStopped(chatID, c.identity.UserID), nil)
	}

	gw.logger.Info().
		Str("user_id", c.identity.UserID).
		Str("conn_id", c.id).
		Msg("User disconnected")

	gw.rooms.BroadcastToAllExcept(NewUserOffline(c.identity.UserID, c.identity.Name), c)
}

// isParticipant reports whether the connection's user belongs to the chat.
// Malformed ids, missing chats and non-membership all look the same to the
// caller.
func (gw *Gateway) isParticipant(c *Client, chatID string) bool {
	userOID, err := primitive.ObjectIDFromHex(c.identity.UserID)
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	ch, err := gw.store.FindChatByID(ctx, chatID)
	if err != nil {
		return false
	}
	return ch.HasParticipant(userOID)
}

// resolveSender looks up the sender's display data, falling back to the token
// identity when the lookup fails so a transient store error never blocks a
// message that already persisted.
func (gw *Gateway) resolveSender(ctx context.Context, c *Client) chat.SenderInfo {
	if gw.senders != nil {
		info, err := gw.senders.SenderInfo(ctx, c.identity.UserID)
		if err == nil {
			return info
		}
		gw.logger.Warn().Err(err).Str("user_id", c.identity.UserID).Msg("Error resolving sender info")
	}
	return chat.SenderInfo{ID: c.identity.UserID, Name: c.identity.Name}
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
