package presence

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/nholden/beacon/internal/pubsub"
)

// Registry maintains the mapping from user IDs to their live websocket
// connection IDs. It is an owned, injected object: the transport layer
// registers connections as they open and close, and the delivery router
// looks up receivers through it.
//
// A user may hold several simultaneous connections (multiple tabs or
// devices); presence is defined as "at least one live connection".
type Registry struct {
	mu sync.RWMutex
	// conns maps userID -> connection IDs, in registration order.
	conns map[string][]string
	// owners maps connID -> userID for disconnect lookups.
	owners map[string]string

	publisher pubsub.Publisher
	logger    *slog.Logger
}

// NewRegistry creates a registry that announces every presence change on the
// given publisher.
func NewRegistry(publisher pubsub.Publisher) *Registry {
	return &Registry{
		conns:     make(map[string][]string),
		owners:    make(map[string]string),
		publisher: publisher,
		logger:    slog.Default().With("component", "presence_registry"),
	}
}

// Register records a live connection for a user and broadcasts the updated
// online set. Registering the same connection ID twice is a no-op beyond the
// broadcast.
func (r *Registry) Register(userID, connID string) {
	r.mu.Lock()
	if _, known := r.owners[connID]; !known {
		r.conns[userID] = append(r.conns[userID], connID)
		r.owners[connID] = userID
	}
	users := r.snapshotLocked()
	total := len(r.owners)
	r.mu.Unlock()

	r.logger.Info("Connection registered",
		"user_id", userID,
		"conn_id", connID,
		"online_users", len(users),
		"total_connections", total)

	r.publishOnlineUsers(users)
}

// Unregister removes one connection for a user and broadcasts the updated
// online set. It is safe to call for connections that were never registered;
// repeated disconnects are no-ops and publish nothing.
func (r *Registry) Unregister(userID, connID string) {
	r.mu.Lock()
	owner, known := r.owners[connID]
	if !known || owner != userID {
		r.mu.Unlock()
		r.logger.Debug("Unregister for unknown connection", "user_id", userID, "conn_id", connID)
		return
	}

	delete(r.owners, connID)
	remaining := r.conns[userID][:0]
	for _, id := range r.conns[userID] {
		if id != connID {
			remaining = append(remaining, id)
		}
	}
	if len(remaining) == 0 {
		delete(r.conns, userID)
	} else {
		r.conns[userID] = remaining
	}
	users := r.snapshotLocked()
	r.mu.Unlock()

	r.logger.Info("Connection unregistered",
		"user_id", userID,
		"conn_id", connID,
		"online_users", len(users))

	r.publishOnlineUsers(users)
}

// Lookup returns the live connection IDs serving a user. The returned slice
// is a copy and safe to retain.
func (r *Registry) Lookup(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.conns[userID]
	if len(conns) == 0 {
		return nil
	}
	out := make([]string, len(conns))
	copy(out, conns)
	return out
}

// Online reports whether a user has at least one live connection.
func (r *Registry) Online(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[userID]) > 0
}

// Snapshot returns the sorted set of user IDs with at least one live
// connection.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *Registry) snapshotLocked() []string {
	users := make([]string, 0, len(r.conns))
	for userID := range r.conns {
		users = append(users, userID)
	}
	sort.Strings(users)
	return users
}

func (r *Registry) publishOnlineUsers(users []string) {
	err := pubsub.Publish(context.Background(), r.publisher, TopicOnlineUsers, OnlineUsersPayload{Users: users})
	if err != nil {
		r.logger.Error("Failed to publish online users update",
			"error", err,
			"topic", TopicOnlineUsers.Name())
	}
}
