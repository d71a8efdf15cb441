package gateway

import (
	"sync"

	"github.com/rs/zerolog"

	"ecotrade/internal/pkg/logx"
)

// Presence is the process-wide registry of online users. It maps a user id to
// its single active connection: a second connection for the same user replaces
// the first (last-writer-wins), and the evicted session is kicked.
//
// The registry is an injected dependency of the Gateway, never a package
// global, so tests construct isolated instances.
type Presence struct {
	mu sync.RWMutex

	// entries maps a user id to its active connection.
	entries map[string]*Client

	logger zerolog.Logger
}

// NewPresence returns an empty presence registry.
func NewPresence() *Presence {
	return &Presence{
		entries: make(map[string]*Client),
		logger:  logx.Logger().With().Str("component", "presence").Logger(),
	}
}

// Register records the connection as the user's active session. If the user
// already had a session, the previous connection is returned so the caller
// can kick it; otherwise nil.
func (p *Presence) Register(c *Client) *Client {
	p.mu.Lock()
	defer p.mu.Unlock()

	previous := p.entries[c.identity.UserID]
	p.entries[c.identity.UserID] = c

	if previous != nil {
		p.logger.Warn().
			Str("user_id", c.identity.UserID).
			Msg("User already connected. Replacing previous session.")
	}

	return previous
}

// Deregister removes the user's presence entry, but only if the given
// connection is still the active one. It returns false for a stale
// connection that was already replaced, in which case the user remains online.
func (p *Presence) Deregister(c *Client) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	current, ok := p.entries[c.identity.UserID]
	if !ok || current != c {
		return false
	}

	delete(p.entries, c.identity.UserID)
	return true
}

// IsOnline reports whether the user has an active connection.
func (p *Presence) IsOnline(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	_, ok := p.entries[userID]
	return ok
}

// Online returns the ids of every currently connected user.
func (p *Presence) Online() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]string, 0, len(p.entries))
	for userID := range p.entries {
		out = append(out, userID)
	}
	return out
}

// Clients returns a snapshot of every active connection.
func (p *Presence) Clients() []*Client {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]*Client, 0, len(p.entries))
	for _, c := range p.entries {
		out = append(out, c)
	}
	return out
}

// Count returns the number of online users.
func (p *Presence) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.entries)
}
