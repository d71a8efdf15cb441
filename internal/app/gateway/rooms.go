package gateway

import (
	"sync"

	"github.com/rs/zerolog"

	"ecotrade/internal/pkg/logx"
	"ecotrade/internal/pkg/metrics"
)

// Router tracks which connections are subscribed to which rooms. A room id is
// either a chat id (all participants of one conversation) or a user id (that
// user's personal notification room).
//
// Joining a chat room performs no authorization check: access control is
// enforced at send/read time against the chat store, not at the subscription
// level. An unauthorized subscriber can therefore sit in a room, but nothing
// is ever broadcast to a room except after an authorized, persisted action.
type Router struct {
	mu sync.RWMutex

	// rooms maps a room id to its subscribed connections.
	rooms map[string]map[*Client]struct{}

	// joined maps a connection to the room ids it subscribed to, for cleanup.
	joined map[*Client]map[string]struct{}

	logger zerolog.Logger
}

// NewRouter returns an empty membership router.
func NewRouter() *Router {
	return &Router{
		rooms:  make(map[string]map[*Client]struct{}),
		joined: make(map[*Client]map[string]struct{}),
		logger: logx.Logger().With().Str("component", "rooms").Logger(),
	}
}

// Join subscribes the connection to the room. Joining twice is a no-op.
func (r *Router) Join(c *Client, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[roomID]; !ok {
		r.rooms[roomID] = make(map[*Client]struct{})
	}
	r.rooms[roomID][c] = struct{}{}

	if _, ok := r.joined[c]; !ok {
		r.joined[c] = make(map[string]struct{})
	}
	r.joined[c][roomID] = struct{}{}
}

// LeaveAll removes the connection from every room it joined.
func (r *Router) LeaveAll(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for roomID := range r.joined[c] {
		if members, ok := r.rooms[roomID]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(r.rooms, roomID)
			}
		}
	}
	delete(r.joined, c)
}

// MemberCount returns the number of connections subscribed to the room.
func (r *Router) MemberCount(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms[roomID])
}

// BroadcastToRoom delivers the event to every connection in the room, except
// the optional excluded one. Delivery is fire-and-forget per connection: a
// recipient whose queue is full loses this frame, is logged and counted, and
// never affects delivery to the rest.
func (r *Router) BroadcastToRoom(roomID string, ev ServerEvent, except *Client) {
	frame, err := ev.Encode()
	if err != nil {
		r.logger.Error().Err(err).Str("event_type", ev.Type).Msg("Error marshaling broadcast event")
		return
	}

	r.mu.RLock()
	recipients := make([]*Client, 0, len(r.rooms[roomID]))
	for c := range r.rooms[roomID] {
		if c != except {
			recipients = append(recipients, c)
		}
	}
	r.mu.RUnlock()

	for _, c := range recipients {
		if err := c.enqueue(frame); err != nil {
			metrics.IncWSDeliveryError()
			r.logger.Warn().
				Str("room_id", roomID).
				Str("event_type", ev.Type).
				Str("user_id", c.identity.UserID).
				Err(err).
				Msg("Dropping broadcast for one recipient")
		}
	}
}

// BroadcastToAllExcept delivers the event to every connection in every room
// except the given one; used for presence events.
func (r *Router) BroadcastToAllExcept(ev ServerEvent, except *Client) {
	frame, err := ev.Encode()
	if err != nil {
		r.logger.Error().Err(err).Str("event_type", ev.Type).Msg("Error marshaling broadcast event")
		return
	}

	r.mu.RLock()
	recipients := make([]*Client, 0, len(r.joined))
	for c := range r.joined {
		if c != except {
			recipients = append(recipients, c)
		}
	}
	r.mu.RUnlock()

	for _, c := range recipients {
		if err := c.enqueue(frame); err != nil {
			metrics.IncWSDeliveryError()
			r.logger.Warn().
				Str("event_type", ev.Type).
				Str("user_id", c.identity.UserID).
				Err(err).
				Msg("Dropping broadcast for one recipient")
		}
	}
}
