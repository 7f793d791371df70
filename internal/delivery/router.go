package delivery

import (
	"context"
	"log/slog"

	"github.com/nholden/beacon/internal/domain"
)

// EventNewMessage is the wire event name pushed to a receiver when a message
// addressed to them is persisted. The name is the de-facto protocol and must
// not change.
const EventNewMessage = "newMessage"

// ConnectionLookup answers which live connections currently serve a user.
// Implemented by the presence registry.
type ConnectionLookup interface {
	Lookup(userID string) []string
}

// Pusher delivers a wire event to one specific connection. Implemented by
// the websocket bridge.
type Pusher interface {
	Push(connID, event string, payload any) error
}

// Router performs best-effort real-time delivery of persisted messages.
// It never broadcasts: a message is pushed only to the receiver's own
// connections. Push failures are swallowed; durability comes from the
// message store, an offline receiver catches up on their next history fetch.
type Router struct {
	registry ConnectionLookup
	pusher   Pusher
	logger   *slog.Logger
}

// NewRouter creates a Router backed by the given registry and transport.
func NewRouter(registry ConnectionLookup, pusher Pusher) *Router {
	return &Router{
		registry: registry,
		pusher:   pusher,
		logger:   slog.Default().With("component", "delivery_router"),
	}
}

// Deliver pushes an already-persisted message to the receiver's live
// connections, if any. It returns nothing: the sender only ever learns
// whether persistence succeeded.
func (r *Router) Deliver(ctx context.Context, msg *domain.Message) {
	conns := r.registry.Lookup(msg.ReceiverID)
	if len(conns) == 0 {
		r.logger.Debug("Receiver offline, skipping push",
			"message_id", msg.ID,
			"receiver_id", msg.ReceiverID)
		return
	}

	for _, connID := range conns {
		if err := r.pusher.Push(connID, EventNewMessage, msg); err != nil {
			// The connection is gone but not yet unregistered. The transport's
			// own liveness detection will clean it up.
			r.logger.Debug("Push failed, dropping event",
				"message_id", msg.ID,
				"conn_id", connID,
				"error", err)
		}
	}
}
