// Client represents one authenticated WebSocket connection and manages its
// lifecycle and read/write pumps; all event semantics live in the Gateway
// dispatcher.

package gateway

import (
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"ecotrade/internal/pkg/logx"
	"ecotrade/internal/pkg/randx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxFrameSize = 8192

	// sendQueueSize is the per-connection outbound buffer.
	sendQueueSize = 256

	// WsCloseCodeSessionKicked is a custom WebSocket Close Code (4000-4999 range)
	// used to signal the client that the session was replaced by a new connection.
	WsCloseCodeSessionKicked = 4001
)

// Identity is the verified user behind a connection. It is produced by the
// session authenticator before the connection reaches the gateway; everything
// downstream trusts it.
type Identity struct {
	UserID string
	Name   string
}

// Client represents one active WebSocket connection and its authenticated user.
type Client struct {
	// id is the unique connection handle.
	id string

	// gateway owning this connection.
	gw *Gateway

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// verified identity of the connected user.
	identity Identity

	// a buffered channel used to queue frames waiting to be sent to the client.
	send chan []byte

	// structured logger with connection context.
	logger zerolog.Logger
}

// newClient constructs a Client for an already-authenticated connection.
func newClient(gw *Gateway, conn *websocket.Conn, identity Identity) *Client {
	connID := randx.ConnectionID()

	clientLogger := logx.Logger().With().
		Str("conn_id", connID).
		Str("user_id", identity.UserID).
		Logger()

	return &Client{
		id:       connID,
		gw:       gw,
		conn:     conn,
		identity: identity,
		send:     make(chan []byte, sendQueueSize),
		logger:   clientLogger,
	}
}

// Identity returns the verified user behind this connection.
func (c *Client) Identity() Identity {
	return c.identity
}

// readPump reads frames from the WebSocket connection, decodes them into
// client events, and hands them to the gateway dispatcher. It performs
// disconnect cleanup when the loop terminates, however the connection ended.
func (c *Client) readPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxFrameSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading frame (client close/going away)")
			}
			break
		}

		event, err := DecodeClientEvent(frame)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Client sent an undecodable event")
			continue
		}

		c.gw.dispatch(c, event)
	}
}

// cleanupOnDisconnect runs the gateway's disconnect path and closes the socket.
// It must run even when the connection closed abnormally.
func (c *Client) cleanupOnDisconnect() {
	c.gw.handleDisconnect(c)

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Connection close error during cleanup")
	}
}

// writePump writes queued frames to the WebSocket connection and maintains
// the ping heartbeat.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in write pump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeQueuedFrame(frame, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePing() {
				return
			}
		}
	}
}

// writeQueuedFrame writes one frame pulled from the send channel.
// Returns false when the write pump should terminate.
func (c *Client) writeQueuedFrame(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Warn().Err(err).Msg("Error writing frame")
		return false
	}

	return true
}

// writePing sends the periodic heartbeat.
// Returns false when the write pump should terminate.
func (c *Client) writePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Info().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// enqueue places a frame on the send queue without blocking. A full queue
// drops the frame for this client only; the caller treats that as a
// per-recipient delivery failure.
func (c *Client) enqueue(frame []byte) error {
	select {
	case c.send <- frame:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send queue full, dropping frame")
		return errors.New("client send queue full")
	}
}

// sendEvent marshals and enqueues one server event for this client.
func (c *Client) sendEvent(ev ServerEvent) error {
	frame, err := ev.Encode()
	if err != nil {
		c.logger.Error().Err(err).Str("event_type", ev.Type).Msg("Error marshaling server event")
		return err
	}
	return c.enqueue(frame)
}

// sendError delivers an error event to this client only.
func (c *Client) sendError(message string) {
	if err := c.sendEvent(NewErrorEvent(message)); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to queue error event")
	}
}

// kick closes the connection with a custom Close Frame (code 4001) indicating
// that the session was replaced by a newer connection for the same user.
func (c *Client) kick(reason string) {
	c.logger.Warn().
		Int("close_code", WsCloseCodeSessionKicked).
		Str("reason", reason).
		Msg("Kicking connection")

	c.closeWith(WsCloseCodeSessionKicked, reason)
}

// closeWith writes a close frame with the given code and closes the socket.
func (c *Client) closeWith(code int, reason string) {
	closeMessage := websocket.FormatCloseMessage(code, reason)

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(websocket.CloseMessage, closeMessage); err != nil {
		c.logger.Warn().Err(err).Msg(fmt.Sprintf("Failed to send close frame %d", code))
	}

	_ = c.conn.Close()
}
