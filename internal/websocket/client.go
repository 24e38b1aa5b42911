package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024 // 64KB; commands and chat are small
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, you should check the origin
		return true
	},
}

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	hub *Hub

	conn *websocket.Conn

	// Buffered channel of outbound envelopes
	send chan *ServerEnvelope

	// Group this connection belongs to
	GroupID string

	// Player identity from the verified token
	PlayerID    string
	DisplayName string

	// RateLimitKey is set at connection time (e.g. client IP) for rate
	// limiting chat.
	RateLimitKey string

	ctx context.Context
}

// readPump pumps messages from the websocket connection to the handler.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("ws read error", "group_id", c.GroupID, "player_id", c.PlayerID, "err", err)
			}
			break
		}

		var clientMsg ClientInMessage
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			slog.Warn("ws message unmarshal error", "group_id", c.GroupID, "err", err)
			continue
		}
		if handler := c.hub.messageHandler(); handler != nil {
			handler.HandleMessage(c.ctx, c, &clientMsg)
		}
	}
}

// writePump pumps envelopes from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case envelope, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if err := json.NewEncoder(w).Encode(envelope); err != nil {
				slog.Warn("ws encode error", "group_id", c.GroupID, "err", err)
			}

			// Drain queued envelopes into the same frame
			n := len(c.send)
			for i := 0; i < n; i++ {
				if err := json.NewEncoder(w).Encode(<-c.send); err != nil {
					slog.Warn("ws encode error", "group_id", c.GroupID, "err", err)
				}
			}

			if err := w.Close(); err != nil {
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
