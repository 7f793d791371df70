package websocket

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/coder/websocket"
)

// Client represents one live websocket connection. Its lifecycle is
// CONNECTING (handshake) -> OPEN (registered with the bridge and the
// presence registry) -> CLOSED (unregistered). CLOSED is terminal; a
// reconnect creates a brand-new Client with a new connection ID.
type Client struct {
	// ID is the unique connection identifier, assigned at handshake.
	ID string
	// UserID is the authenticated user this connection serves. Set once at
	// handshake, never changed.
	UserID string

	conn   *websocket.Conn
	send   chan []byte
	bridge *Bridge
}

// readPump consumes frames from the connection until it errors, which is how
// we detect a disconnect. Clients talk to the server over the REST API;
// inbound websocket frames carry no application data and are discarded.
func (c *Client) readPump() {
	defer func() {
		c.bridge.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "Client disconnected")
	}()

	for {
		_, _, err := c.conn.Read(context.Background())
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || websocket.CloseStatus(err) == websocket.StatusGoingAway {
				slog.Info("WebSocket closed normally by client", "user_id", c.UserID, "conn_id", c.ID)
			} else if err != io.EOF {
				slog.Debug("WebSocket read error", "user_id", c.UserID, "conn_id", c.ID, "error", err)
			}
			return
		}
	}
}

// writePump pumps messages from the client's send channel to the connection.
func (c *Client) writePump() {
	defer func() {
		c.conn.Close(websocket.StatusNormalClosure, "Server-side cleanup")
	}()

	for {
		message, ok := <-c.send
		if !ok {
			// The bridge closed the channel.
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := c.conn.Write(ctx, websocket.MessageText, message)
		cancel()
		if err != nil {
			slog.Debug("WebSocket write error", "user_id", c.UserID, "conn_id", c.ID, "error", err)
			return
		}
	}
}
