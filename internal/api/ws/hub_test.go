package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, snapshot SnapshotFunc) (*Hub, *websocket.Conn) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(snapshot, nil)
	r := gin.New()
	r.GET("/stream", hub.HandleConnection)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return hub, conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg map[string]interface{}
	require.NoError(t, sonic.Unmarshal(data, &msg))
	return msg
}

func TestHelloCarriesSnapshot(t *testing.T) {
	_, conn := startHub(t, func() interface{} {
		return map[string]int{"widgets": 2}
	})

	msg := readMessage(t, conn)
	assert.Equal(t, TypeHello, msg["type"])
	assert.Equal(t, map[string]interface{}{"widgets": float64(2)}, msg["data"])
	assert.NotZero(t, msg["timestamp"])
}

func TestPingPong(t *testing.T) {
	_, conn := startHub(t, nil)
	readMessage(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	assert.Equal(t, TypePong, readMessage(t, conn)["type"])

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"dance"}`)))
	assert.Equal(t, TypeError, readMessage(t, conn)["type"])

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	assert.Equal(t, TypeError, readMessage(t, conn)["type"])
}

func TestBroadcastReachesClient(t *testing.T) {
	hub, conn := startHub(t, nil)
	readMessage(t, conn)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	hub.BroadcastEvent(TypeWindow, "window.opened", map[string]string{"id": "win_1"})

	msg := readMessage(t, conn)
	assert.Equal(t, TypeWindow, msg["type"])
	assert.Equal(t, "window.opened", msg["event"])
}

func TestCloseDisconnectsClients(t *testing.T) {
	hub, conn := startHub(t, nil)
	readMessage(t, conn)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	hub.Close()

	assert.Equal(t, 0, hub.Clients())
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
