package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to read events from a WebSocket connection with a timeout.
func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	var ev Event
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, p, err := conn.ReadMessage()
	require.NoError(t, err, "Failed to read event from WebSocket")
	require.NoError(t, json.Unmarshal(p, &ev), "Failed to unmarshal Event JSON")
	return ev
}

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Authentication is the middleware's job; tests pass the user directly.
		ServeWs(hub, w, r, r.URL.Query().Get("user_id"))
	}))
	t.Cleanup(server.Close)

	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, wsURL, userID string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?user_id="+userID, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubIntegration(t *testing.T) {
	hub, wsURL := startHub(t)

	// 1. Both of user1's tabs get the session greeting on connect.
	tab1 := dial(t, wsURL, "user1")
	tab2 := dial(t, wsURL, "user1")
	other := dial(t, wsURL, "user2")

	for _, c := range []*websocket.Conn{tab1, tab2} {
		greeting := readEvent(t, c)
		assert.Equal(t, SessionType, greeting.Type)
		var p SessionPayload
		require.NoError(t, json.Unmarshal(greeting.Payload, &p))
		assert.Equal(t, StateAuthenticated, p.State)
		assert.Equal(t, "user1", p.User.ID)
	}
	_ = readEvent(t, other)

	// 2. An invalidation for user1 reaches every tab of user1 only.
	hub.Publish(NewEvent(InvalidateType, "user1", InvalidatePayload{Keys: []string{"notes:user1"}}))

	for _, c := range []*websocket.Conn{tab1, tab2} {
		ev := readEvent(t, c)
		assert.Equal(t, InvalidateType, ev.Type)
		assert.JSONEq(t, `{"keys":["notes:user1"]}`, string(ev.Payload))
	}

	other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err := other.ReadMessage()
	assert.Error(t, err, "user2 must not receive user1's events")

	assert.Equal(t, 2, hub.Connections("user1"))
}

func TestHubUnregistersClosedConnections(t *testing.T) {
	hub, wsURL := startHub(t)

	conn := dial(t, wsURL, "user1")
	_ = readEvent(t, conn)
	require.Equal(t, 1, hub.Connections("user1"))

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Connections("user1") == 0 }, time.Second, 10*time.Millisecond)
}

func TestPublishAfterStopDoesNotBlock(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() { hub.Run(ctx); close(stopped) }()
	cancel()
	<-stopped

	done := make(chan struct{})
	go func() {
		hub.Publish(NewEvent(SessionType, "u", SessionPayload{State: StateUnauthenticated}))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a stopped hub")
	}
}
