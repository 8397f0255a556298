package realtime

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

func dialHub(t *testing.T, hub *Hub, userID string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, r.URL.Query().Get("user"))
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForConnections(t *testing.T, counts <-chan int, want int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-counts:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("never reached %d connections", want)
		}
	}
}

func TestHubPublishToTargetsUser(t *testing.T) {
	hub := NewHub(nil, nil)
	counts := make(chan int, 16)
	hub.OnConnectionsChanged(func(n int) { counts <- n })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	alice := dialHub(t, hub, "alice")
	bob := dialHub(t, hub, "bob")
	waitForConnections(t, counts, 2)

	hub.PublishTo("alice", "message.created", map[string]string{"subject": "hi"})
	hub.Broadcast("leaderboard.updated", nil)

	require.NoError(t, alice.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := alice.ReadMessage()
	require.NoError(t, err)
	var first Event
	require.NoError(t, json.Unmarshal(raw, &first))
	assert.Equal(t, "message.created", first.Type)

	require.NoError(t, bob.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err = bob.ReadMessage()
	require.NoError(t, err)
	var got Event
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "leaderboard.updated", got.Type)
}

func TestNilHubIsNoop(t *testing.T) {
	var hub *Hub
	hub.PublishTo("alice", "x", nil)
	hub.Broadcast("x", nil)
}
