package websocket_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nholden/beacon/internal/delivery"
	"github.com/nholden/beacon/internal/domain"
	"github.com/nholden/beacon/internal/middleware"
	"github.com/nholden/beacon/internal/presence"
	"github.com/nholden/beacon/internal/pubsub"
	wsbridge "github.com/nholden/beacon/internal/websocket"
)

// testAuth injects a user into the request context based on the X-Test-User
// header, standing in for the real cookie middleware.
func testAuth(users map[string]*domain.User) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if user, ok := users[c.Request().Header.Get("X-Test-User")]; ok {
				c.Set(middleware.UserContextKey, user)
			}
			return next(c)
		}
	}
}

func setupBridgeTest(t *testing.T) (*wsbridge.Bridge, *presence.Registry, *httptest.Server) {
	t.Helper()

	ps := pubsub.NewWatermillBridge()
	t.Cleanup(func() { ps.Close() })

	registry := presence.NewRegistry(ps)
	bridge := wsbridge.NewBridge(registry)
	go bridge.Run()

	require.NoError(t, bridge.SubscribeOnlineUsers(context.Background(), ps))

	users := map[string]*domain.User{
		"alice": {ID: "user:alice", FullName: "Alice", Email: "alice@example.com"},
		"bob":   {ID: "user:bob", FullName: "Bob", Email: "bob@example.com"},
	}

	e := echo.New()
	e.GET("/ws", bridge.Handler(), testAuth(users))

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	return bridge, registry, srv
}

func dialWS(t *testing.T, srv *httptest.Server, testUser string) *websocket.Conn {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	header := http.Header{}
	header.Set("X-Test-User", testUser)

	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{HTTPHeader: header})
	require.NoError(t, err, "Failed to connect websocket for %s", testUser)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) wsbridge.Envelope {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, data, err := conn.Read(ctx)
	require.NoError(t, err, "Failed to read frame")

	var env wsbridge.Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func onlineUsers(t *testing.T, env wsbridge.Envelope) []string {
	t.Helper()
	require.Equal(t, wsbridge.EventOnlineUsers, env.Event)
	var users []string
	require.NoError(t, json.Unmarshal(env.Data, &users))
	return users
}

func TestBridge_PresenceLifecycle(t *testing.T) {
	_, _, srv := setupBridgeTest(t)

	alice := dialWS(t, srv, "alice")
	assert.Equal(t, []string{"user:alice"}, onlineUsers(t, readEnvelope(t, alice)))

	bob := dialWS(t, srv, "bob")
	assert.Equal(t, []string{"user:alice", "user:bob"}, onlineUsers(t, readEnvelope(t, bob)))
	assert.Equal(t, []string{"user:alice", "user:bob"}, onlineUsers(t, readEnvelope(t, alice)))

	require.NoError(t, bob.Close(websocket.StatusNormalClosure, ""))
	assert.Equal(t, []string{"user:alice"}, onlineUsers(t, readEnvelope(t, alice)))
}

func TestBridge_TargetedPush(t *testing.T) {
	bridge, registry, srv := setupBridgeTest(t)

	alice := dialWS(t, srv, "alice")
	bob := dialWS(t, srv, "bob")

	// Drain the presence frames before pushing application events.
	readEnvelope(t, alice)
	readEnvelope(t, alice)
	readEnvelope(t, bob)

	conns := registry.Lookup("user:alice")
	require.Len(t, conns, 1)

	msg := &domain.Message{ID: "message:1", SenderID: "user:bob", ReceiverID: "user:alice", Text: "hi"}
	require.NoError(t, bridge.Push(conns[0], delivery.EventNewMessage, msg))

	env := readEnvelope(t, alice)
	require.Equal(t, delivery.EventNewMessage, env.Event)

	var got domain.Message
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "hi", got.Text)
	assert.Equal(t, "user:bob", got.SenderID)

	// Bob must not see a message addressed to alice's connection.
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, _, err := bob.Read(ctx)
	assert.Error(t, err)
}

func TestBridge_RejectsAnonymousUpgrade(t *testing.T) {
	_, _, srv := setupBridgeTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.Dial(ctx, wsURL, nil)
	if conn != nil {
		conn.Close(websocket.StatusNormalClosure, "")
	}
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBridge_PushToUnknownConnection(t *testing.T) {
	bridge, _, _ := setupBridgeTest(t)

	err := bridge.Push("no-such-conn", delivery.EventNewMessage, map[string]string{"x": "y"})
	assert.ErrorIs(t, err, wsbridge.ErrConnectionGone)
}
