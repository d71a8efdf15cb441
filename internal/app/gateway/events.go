// Wire events for the realtime channel. Both directions use a closed set of
// typed variants instead of free-form string dispatch, so every event kind is
// handled exhaustively at compile time. The envelope on the wire is
// {"type": "<name>", "payload": {...}}.

package gateway

import (
	"encoding/json"
	"fmt"

	"ecotrade/internal/app/chat"
)

// Client-to-server event names.
const (
	TypeJoinChat    = "join_chat"
	TypeTypingStart = "typing_start"
	TypeTypingStop  = "typing_stop"
	TypeSendMessage = "send_message"
)

// Server-to-client event names. These are the bit-exact wire contract.
const (
	TypeReceiveMessage     = "receive_message"
	TypeNewMessage         = "notification:new_message"
	TypeTradeRequest       = "notification:trade_request"
	TypeTradeRequestStatus = "notification:trade_request_status"
	TypeTradeCompleted     = "notification:trade_completed"
	TypeTypingStarted      = "typing_started"
	TypeTypingStopped      = "typing_stopped"
	TypeUserOnline         = "user_online"
	TypeUserOffline        = "user_offline"
	TypeError              = "error"
)

// ClientEvent is the closed union of events a client may send. Exactly one
// variant is produced per decoded frame.
type ClientEvent interface {
	clientEvent()
}

// JoinChatEvent subscribes the connection to a chat room.
type JoinChatEvent struct {
	ChatID string `json:"chatId"`
}

// TypingStartEvent signals the user started composing in a chat.
type TypingStartEvent struct {
	ChatID string `json:"chatId"`
}

// TypingStopEvent signals the user stopped composing in a chat.
type TypingStopEvent struct {
	ChatID string `json:"chatId"`
}

// SendMessageEvent submits a message over the live channel.
type SendMessageEvent struct {
	ChatID  string `json:"chatId"`
	Content string `json:"content"`
}

func (JoinChatEvent) clientEvent()    {}
func (TypingStartEvent) clientEvent() {}
func (TypingStopEvent) clientEvent()  {}
func (SendMessageEvent) clientEvent() {}

// DecodeClientEvent parses a raw frame into its typed variant.
// Unknown event types are an error; the dispatcher logs and drops them.
func DecodeClientEvent(raw []byte) (ClientEvent, error) {
	var envelope struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("invalid event envelope: %w", err)
	}

	switch envelope.Type {
	case TypeJoinChat:
		var ev JoinChatEvent
		if err := json.Unmarshal(envelope.Payload, &ev); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", envelope.Type, err)
		}
		return ev, nil

	case TypeTypingStart:
		var ev TypingStartEvent
		if err := json.Unmarshal(envelope.Payload, &ev); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", envelope.Type, err)
		}
		return ev, nil

	case TypeTypingStop:
		var ev TypingStopEvent
		if err := json.Unmarshal(envelope.Payload, &ev); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", envelope.Type, err)
		}
		return ev, nil

	case TypeSendMessage:
		var ev SendMessageEvent
		if err := json.Unmarshal(envelope.Payload, &ev); err != nil {
			return nil, fmt.Errorf("invalid %s payload: %w", envelope.Type, err)
		}
		return ev, nil

	default:
		return nil, fmt.Errorf("unsupported event type %q", envelope.Type)
	}
}

// ServerEvent is one outbound event ready for marshaling.
type ServerEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Encode marshals the event to its wire form.
func (e ServerEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// PresencePayload announces a user going online or offline.
type PresencePayload struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName,omitempty"`
}

// TypingPayload announces a typing state change in a chat.
type TypingPayload struct {
	ChatID   string `json:"chatId"`
	UserID   string `json:"userId"`
	UserName string `json:"userName,omitempty"`
}

// NewMessagePayload is the personal-room notification for a new message.
type NewMessagePayload struct {
	ChatID  string           `json:"chatId"`
	Message chat.WireMessage `json:"message"`
}

// ErrorPayload carries a sender-only failure description.
type ErrorPayload struct {
	Message string `json:"message"`
}

// NewUserOnline builds the user_online broadcast.
func NewUserOnline(userID, userName string) ServerEvent {
	return ServerEvent{Type: TypeUserOnline, Payload: PresencePayload{UserID: userID, UserName: userName}}
}

// NewUserOffline builds the user_offline broadcast.
func NewUserOffline(userID, userName string) ServerEvent {
	return ServerEvent{Type: TypeUserOffline, Payload: PresencePayload{UserID: userID, UserName: userName}}
}

// NewTypingStarted builds the typing_started broadcast.
func NewTypingStarted(chatID, userID, userName string) ServerEvent {
	return ServerEvent{Type: TypeTypingStarted, Payload: TypingPayload{ChatID: chatID, UserID: userID, UserName: userName}}
}

// NewTypingStopped builds the typing_stopped broadcast.
func NewTypingStopped(chatID, userID string) ServerEvent {
	return ServerEvent{Type: TypeTypingStopped, Payload: TypingPayload{ChatID: chatID, UserID: userID}}
}

// NewReceiveMessage builds the chat-room broadcast for a persisted message.
func NewReceiveMessage(msg chat.WireMessage) ServerEvent {
	return ServerEvent{Type: TypeReceiveMessage, Payload: msg}
}

// NewMessageNotification builds the personal-room notification for a persisted message.
func NewMessageNotification(chatID string, msg chat.WireMessage) ServerEvent {
	return ServerEvent{Type: TypeNewMessage, Payload: NewMessagePayload{ChatID: chatID, Message: msg}}
}

// NewErrorEvent builds the sender-only error event.
func NewErrorEvent(message string) ServerEvent {
	return ServerEvent{Type: TypeError, Payload: ErrorPayload{Message: message}}
}

// NewNotification builds an arbitrary personal-room notification; used by the
// REST layer for trade workflow events.
func NewNotification(eventType string, payload any) ServerEvent {
	return ServerEvent{Type: eventType, Payload: payload}
}
