package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nholden/beacon/internal/domain"
	"github.com/nholden/beacon/internal/middleware"
	"github.com/nholden/beacon/internal/presence"
	"github.com/nholden/beacon/internal/pubsub"
)

// ErrConnectionGone is returned by Push when the target connection is no
// longer registered. Callers treat it as a dropped event, never a failure
// of the operation that triggered the push.
var ErrConnectionGone = errors.New("websocket: connection not registered")

// Bridge manages all websocket connections. It owns the per-connection
// send channels, keeps the presence registry in sync with connection
// lifecycle, and exposes targeted Push and Broadcast to the rest of the
// application.
type Bridge struct {
	registry *presence.Registry

	// clients maps connection ID -> client.
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	// mu protects clients for reads outside the run loop (Push).
	mu sync.RWMutex

	logger *slog.Logger
}

// NewBridge initializes a Bridge wired to the given presence registry.
func NewBridge(registry *presence.Registry) *Bridge {
	return &Bridge{
		registry:   registry,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		logger:     slog.Default().With("component", "websocket_bridge"),
	}
}

// Run starts the bridge's lifecycle loop. It must run in its own goroutine.
func (b *Bridge) Run() {
	b.logger.Info("WebSocket bridge runner started")
	for {
		select {
		case client := <-b.register:
			b.mu.Lock()
			b.clients[client.ID] = client
			b.mu.Unlock()
			b.registry.Register(client.UserID, client.ID)
			b.logger.Info("Client connected", "user_id", client.UserID, "conn_id", client.ID)

		case client := <-b.unregister:
			b.mu.Lock()
			_, ok := b.clients[client.ID]
			if ok {
				delete(b.clients, client.ID)
				close(client.send)
			}
			b.mu.Unlock()
			if ok {
				b.registry.Unregister(client.UserID, client.ID)
				b.logger.Info("Client disconnected", "user_id", client.UserID, "conn_id", client.ID)
			}

		case payload := <-b.broadcast:
			b.mu.RLock()
			for _, client := range b.clients {
				select {
				case client.send <- payload:
				default:
					// The client's send buffer is full; assume it is dead or
					// stuck and let its read pump trigger the unregister.
					b.logger.Warn("Client send channel full, dropping broadcast", "conn_id", client.ID)
				}
			}
			b.mu.RUnlock()
		}
	}
}

// Push sends a wire event to one specific connection only.
func (b *Bridge) Push(connID, event string, payload any) error {
	frame, err := NewEnvelope(event, payload)
	if err != nil {
		return err
	}

	// The run loop closes client.send under the write lock when it
	// unregisters a client; the read lock must be held across the send so a
	// concurrent unregister cannot close the channel mid-Push.
	b.mu.RLock()
	defer b.mu.RUnlock()

	client, ok := b.clients[connID]
	if !ok {
		return ErrConnectionGone
	}

	select {
	case client.send <- frame:
		return nil
	default:
		return ErrConnectionGone
	}
}

// Broadcast sends a wire event to every connected client. It never blocks:
// the run loop that drains the broadcast buffer is also upstream of the
// presence publishes that produce broadcasts, so blocking here could wedge
// it. When the buffer is full the frame is dropped, same policy as the
// per-client buffers.
func (b *Bridge) Broadcast(event string, payload any) error {
	frame, err := NewEnvelope(event, payload)
	if err != nil {
		return err
	}
	select {
	case b.broadcast <- frame:
	default:
		b.logger.Warn("Broadcast buffer full, dropping frame", "event", event)
	}
	return nil
}

// SubscribeOnlineUsers relays presence registry updates to all clients as
// the "getOnlineUsers" wire event.
func (b *Bridge) SubscribeOnlineUsers(ctx context.Context, subscriber pubsub.Subscriber) error {
	return subscriber.Subscribe(ctx, presence.TopicOnlineUsers.Name(), func(ctx context.Context, msg pubsub.Message) error {
		var update presence.OnlineUsersPayload
		if err := json.Unmarshal(msg.Payload, &update); err != nil {
			b.logger.Error("Failed to unmarshal online users update", "error", err)
			return err
		}
		return b.Broadcast(EventOnlineUsers, update.Users)
	})
}

// Handler returns an echo.HandlerFunc that upgrades an authenticated request
// to a websocket connection. Requests without an authenticated user are
// rejected: anonymous connections are never silently accepted.
func (b *Bridge) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := c.Get(middleware.UserContextKey).(*domain.User)
		if !ok || user == nil {
			b.logger.Error("WebSocket upgrade without authenticated user")
			return c.String(http.StatusUnauthorized, "User not authenticated")
		}

		conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
			InsecureSkipVerify: true, // In production, check origin.
		})
		if err != nil {
			b.logger.Error("Failed to upgrade connection to WebSocket", "error", err)
			return err
		}

		client := &Client{
			ID:     uuid.NewString(),
			UserID: user.ID,
			conn:   conn,
			send:   make(chan []byte, 256),
			bridge: b,
		}
		b.register <- client

		go client.writePump()
		go client.readPump()

		return nil
	}
}

// ConnectionCount reports the number of live connections, for health output.
func (b *Bridge) ConnectionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}
