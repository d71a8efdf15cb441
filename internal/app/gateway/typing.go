package gateway

import (
	"sync"
	"time"
)

// TypingTimeout is the server-side safety net for typing state. A client is
// expected to send typing_stop itself, but if it disappears mid-keystroke the
// indicator self-clears after this interval instead of sticking forever.
const TypingTimeout = 8 * time.Second

// Tracker holds who is currently typing in which chat. Every transition out
// of the typing state, whether an explicit stop, an expiry or a disconnect,
// produces at most one stopped notification per (chat, user) pair.
type Tracker struct {
	mu sync.Mutex

	// timers maps chat id to user id to the expiry timer for that entry.
	timers map[string]map[string]*time.Timer

	// onExpire fires outside the lock when a typing entry times out.
	onExpire func(chatID, userID string)
}

// NewTracker returns a tracker that calls onExpire whenever a typing entry
// lapses without an explicit stop.
func NewTracker(onExpire func(chatID, userID string)) *Tracker {
	return &Tracker{
		timers:   make(map[string]map[string]*time.Timer),
		onExpire: onExpire,
	}
}

// Start records that the user is typing in the chat and arms (or re-arms) the
// expiry timer. Repeated starts refresh the timer.
func (t *Tracker) Start(chatID, userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.timers[chatID]; !ok {
		t.timers[chatID] = make(map[string]*time.Timer)
	}
	if timer, ok := t.timers[chatID][userID]; ok {
		timer.Stop()
	}
	t.timers[chatID][userID] = time.AfterFunc(TypingTimeout, func() {
		t.expire(chatID, userID)
	})
}

// Stop clears the typing entry for the user in the chat. It reports whether
// an entry was actually cleared, so callers broadcast typing_stopped exactly
// once per active entry.
func (t *Tracker) Stop(chatID, userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.removeLocked(chatID, userID)
}

// ClearUser clears every typing entry the user holds across all chats and
// returns the affected chat ids; used on disconnect.
func (t *Tracker) ClearUser(userID string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var chats []string
	for chatID, users := range t.timers {
		if _, ok := users[userID]; ok {
			t.removeLocked(chatID, userID)
			chats = append(chats, chatID)
		}
	}
	return chats
}

// IsTyping reports whether the user currently holds a typing entry in the chat.
func (t *Tracker) IsTyping(chatID, userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.timers[chatID][userID]
	return ok
}

func (t *Tracker) expire(chatID, userID string) {
	t.mu.Lock()
	cleared := t.removeLocked(chatID, userID)
	t.mu.Unlock()

	if cleared && t.onExpire != nil {
		t.onExpire(chatID, userID)
	}
}

func (t *Tracker) removeLocked(chatID, userID string) bool {
	users, ok := t.timers[chatID]
	if !ok {
		return false
	}
	timer, ok := users[userID]
	if !ok {
		return false
	}
	timer.Stop()
	delete(users, userID)
	if len(users) == 0 {
		delete(t.timers, chatID)
	}
	return true
}
