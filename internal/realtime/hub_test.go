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

type testFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	AckID string          `json:"ackId"`
}

func startHub(t *testing.T) (*Hub, *Dispatcher, *MemoryRegistry, string) {
	t.Helper()
	reg := NewMemoryRegistry()
	hub := NewHub(HubConfig{Registry: reg})
	dispatcher := NewDispatcher(reg, hub, nil)
	hub.SetAckHandler(dispatcher.HandleAck)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, dispatcher, reg, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) testFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var frame testFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestHubAuthenticateAndNotify(t *testing.T) {
	_, dispatcher, reg, url := startHub(t)
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(map[string]any{"event": "authenticate", "data": "user_9"}))
	frame := readFrame(t, conn)
	assert.Equal(t, EventAuthSuccess, frame.Event)

	var ack struct {
		UserID       string `json:"userId"`
		Role         string `json:"role"`
		ConnectionID string `json:"connectionId"`
	}
	require.NoError(t, json.Unmarshal(frame.Data, &ack))
	assert.Equal(t, "user_9", ack.UserID)
	assert.Equal(t, "user", ack.Role)

	connID, ok := reg.Lookup("user_9")
	require.True(t, ok)
	assert.Equal(t, ack.ConnectionID, connID)

	assert.Equal(t, 1, dispatcher.NotifyUser("user_9", "analysis-complete", map[string]string{"imagePath": "uploads/a.jpg"}))
	frame = readFrame(t, conn)
	assert.Equal(t, "analysis-complete", frame.Event)
	assert.JSONEq(t, `{"imagePath":"uploads/a.jpg"}`, string(frame.Data))
}

func TestHubAuthenticateObjectPayloadAndAdmin(t *testing.T) {
	_, _, reg, url := startHub(t)
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(map[string]any{"event": "authenticate", "data": map[string]string{"userId": "admin_1"}}))
	frame := readFrame(t, conn)
	require.Equal(t, EventAuthSuccess, frame.Event)
	assert.Len(t, reg.Admins(), 1)
}

func TestHubAuthenticateRejectsEmpty(t *testing.T) {
	_, _, _, url := startHub(t)
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(map[string]any{"event": "authenticate", "data": "  "}))
	assert.Equal(t, EventAuthError, readFrame(t, conn).Event)
}

func TestHubAckRoundTrip(t *testing.T) {
	_, dispatcher, _, url := startHub(t)
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(map[string]any{"event": "authenticate", "data": "user_9"}))
	readFrame(t, conn)

	acked := make(chan string, 1)
	dispatcher.NotifyUserWithAck("user_9", "image-reviewed", map[string]string{"status": "approved"}, func(connID string) {
		acked <- connID
	})
	frame := readFrame(t, conn)
	require.Equal(t, "image-reviewed", frame.Event)
	require.NotEmpty(t, frame.AckID)

	require.NoError(t, conn.WriteJSON(map[string]any{"event": "ack", "ackId": frame.AckID}))
	select {
	case connID := <-acked:
		assert.True(t, strings.HasPrefix(connID, "ws_"))
	case <-time.After(3 * time.Second):
		t.Fatal("ack callback not invoked")
	}
}

func TestHubDisconnectUnregisters(t *testing.T) {
	hub, _, reg, url := startHub(t)
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(map[string]any{"event": "authenticate", "data": "user_9"}))
	readFrame(t, conn)
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		_, ok := reg.Lookup("user_9")
		return !ok && len(hub.ConnectionIDs()) == 0
	}, 3*time.Second, 20*time.Millisecond)
}
