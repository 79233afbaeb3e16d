package realtime

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 32
)

// Client is one websocket connection. The stream is push-only; inbound
// frames beyond pong control messages are discarded.
type Client struct {
	ID     string
	hub    *Hub
	conn   *websocket.Conn
	Send   chan []byte
	logger zerolog.Logger
}

func NewClient(id string, hub *Hub, conn *websocket.Conn, logger zerolog.Logger) *Client {
	return &Client{
		ID:     id,
		hub:    hub,
		conn:   conn,
		Send:   make(chan []byte, sendBufferSize),
		logger: logger.With().Str("component", "client").Str("clientId", id).Logger(),
	}
}

// ReadPump drains the connection so pings/pongs flow and close frames are
// noticed. Must run in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug().Err(err).Msg("Unexpected close")
			}
			return
		}
	}
}

// WritePump forwards queued snapshots to the connection and keeps it alive
// with pings. Must run in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
