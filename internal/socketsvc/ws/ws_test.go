package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fielia/club-services/internal/comm"
)

func dialHub(t *testing.T, hub *Ws, socketId string) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.StoreConnection(socketId, conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	require.Eventually(t, func() bool {
		_, ok := hub.GetConnection(socketId)
		return ok
	}, time.Second, 10*time.Millisecond)

	return client
}

func TestBroadcastReachesConnectedClient(t *testing.T) {
	hub := NewWs()
	client := dialHub(t, hub, "s1")

	payload, _ := json.Marshal(map[string]string{"uuid": "04A1B2"})
	hub.Broadcast(&comm.MemberEvent{
		Type: "card.scan.hit",
		Data: payload,
		At:   time.Now().UTC(),
	})

	client.SetReadDeadline(time.Now().Add(time.Second))
	_, raw, err := client.ReadMessage()
	require.NoError(t, err)

	var msg comm.WSMessage
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "card.scan.hit", msg.Event)
	assert.JSONEq(t, string(payload), string(msg.Data))
}

func TestBroadcastDropsDeadConnections(t *testing.T) {
	hub := NewWs()
	client := dialHub(t, hub, "s1")

	// kill the client side, the next write should evict the socket
	client.Close()
	conn, ok := hub.GetConnection("s1")
	require.True(t, ok)
	conn.Close()

	payload, _ := json.Marshal(map[string]string{"uuid": "04A1B2"})
	hub.Broadcast(&comm.MemberEvent{Type: "card.scan.hit", Data: payload, At: time.Now().UTC()})

	_, ok = hub.GetConnection("s1")
	assert.False(t, ok)
}

func TestDisconnectRemovesConnection(t *testing.T) {
	hub := NewWs()
	dialHub(t, hub, "s1")

	hub.HandleDisconnect("s1")
	_, ok := hub.GetConnection("s1")
	assert.False(t, ok)
}
