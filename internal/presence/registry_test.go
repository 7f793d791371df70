package presence_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nholden/beacon/internal/presence"
	"github.com/nholden/beacon/internal/pubsub"
)

// recordingPublisher captures every published message for inspection.
type recordingPublisher struct {
	mu       sync.Mutex
	messages []pubsub.Message
}

func (p *recordingPublisher) Publish(ctx context.Context, msg pubsub.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages)
}

func (p *recordingPublisher) last(t *testing.T) presence.OnlineUsersPayload {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(t, p.messages)
	var payload presence.OnlineUsersPayload
	require.NoError(t, json.Unmarshal(p.messages[len(p.messages)-1].Payload, &payload))
	return payload
}

func TestRegistry_SnapshotTracksConnectDisconnectSequence(t *testing.T) {
	pub := &recordingPublisher{}
	reg := presence.NewRegistry(pub)

	reg.Register("alice", "c1")
	reg.Register("bob", "c2")
	reg.Register("carol", "c3")
	reg.Unregister("bob", "c2")

	assert.Equal(t, []string{"alice", "carol"}, reg.Snapshot())
	assert.True(t, reg.Online("alice"))
	assert.False(t, reg.Online("bob"))
}

func TestRegistry_UnregisterIsIdempotent(t *testing.T) {
	pub := &recordingPublisher{}
	reg := presence.NewRegistry(pub)

	reg.Register("alice", "c1")
	reg.Unregister("alice", "c1")
	published := pub.count()

	// Repeated disconnects of an absent connection must be silent no-ops.
	reg.Unregister("alice", "c1")
	reg.Unregister("ghost", "never-registered")

	assert.Empty(t, reg.Snapshot())
	assert.Equal(t, published, pub.count())
}

func TestRegistry_MultipleConnectionsPerUser(t *testing.T) {
	pub := &recordingPublisher{}
	reg := presence.NewRegistry(pub)

	reg.Register("alice", "laptop")
	reg.Register("alice", "phone")

	assert.Equal(t, []string{"laptop", "phone"}, reg.Lookup("alice"))
	assert.Equal(t, []string{"alice"}, reg.Snapshot())

	// Dropping one device keeps the user online.
	reg.Unregister("alice", "laptop")
	assert.Equal(t, []string{"phone"}, reg.Lookup("alice"))
	assert.True(t, reg.Online("alice"))

	// Dropping the last one takes them offline.
	reg.Unregister("alice", "phone")
	assert.Nil(t, reg.Lookup("alice"))
	assert.Empty(t, reg.Snapshot())
}

func TestRegistry_PublishesOnlineUsersOnEveryChange(t *testing.T) {
	pub := &recordingPublisher{}
	reg := presence.NewRegistry(pub)

	reg.Register("alice", "c1")
	assert.Equal(t, []string{"alice"}, pub.last(t).Users)

	reg.Register("bob", "c2")
	assert.Equal(t, []string{"alice", "bob"}, pub.last(t).Users)

	reg.Unregister("alice", "c1")
	assert.Equal(t, []string{"bob"}, pub.last(t).Users)

	for _, msg := range pub.messages {
		assert.Equal(t, presence.TopicOnlineUsers.Name(), msg.Topic)
	}
}

func TestRegistry_ConcurrentRegisterUnregister(t *testing.T) {
	pub := &recordingPublisher{}
	reg := presence.NewRegistry(pub)

	var wg sync.WaitGroup
	users := []string{"u1", "u2", "u3", "u4"}
	for _, user := range users {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				connID := user + "-conn"
				reg.Register(user, connID)
				reg.Unregister(user, connID)
			}
			reg.Register(user, user+"-final")
		}(user)
	}
	wg.Wait()

	// Every user's last event was a connect, so all must be present.
	assert.Equal(t, users, reg.Snapshot())
}
