package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

// Message types
const (
	TypeHello      = "hello"
	TypeProjection = "projection"
	TypeWindow     = "window"
	TypePong       = "pong"
	TypeError      = "error"
)

// Message is the envelope for everything sent over the stream
type Message struct {
	Type      string      `json:"type"`
	Event     string      `json:"event,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// inbound is what clients send
type inbound struct {
	Type string `json:"type"`
}

// Recorder receives WebSocket metrics
type Recorder interface {
	IncWSConnections()
	DecWSConnections()
	RecordWSMessage(direction, msgType string)
}

// SnapshotFunc produces the state a freshly connected client starts from
type SnapshotFunc func() interface{}

// Hub fans registry and window events out to connected UI clients
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	snapshot SnapshotFunc
	logger   *zap.Logger
	recorder Recorder
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

// NewHub creates a hub. snapshot may be nil.
func NewHub(snapshot SnapshotFunc, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true // The UI runs on a local origin
			},
		},
		snapshot: snapshot,
		logger:   logger,
	}
}

// WithMetrics adds metrics tracking to the hub
func (h *Hub) WithMetrics(recorder Recorder) *Hub {
	h.recorder = recorder
	return h
}

// HandleConnection upgrades the request and serves the client until it
// disconnects
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(cl)

	var data interface{}
	if h.snapshot != nil {
		data = h.snapshot()
	}
	h.enqueue(cl, Message{Type: TypeHello, Data: data})

	ctx, cancel := context.WithCancel(c.Request.Context())
	go h.writePump(ctx, cl)
	h.readPump(cl)
	cancel()
}

// Broadcast sends msg to every connected client. Slow clients whose
// buffer is full are dropped.
func (h *Hub) Broadcast(msg Message) {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}
	payload, err := sonic.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode broadcast", zap.String("type", msg.Type), zap.Error(err))
		return
	}

	h.mu.RLock()
	var slow []*client
	for cl := range h.clients {
		select {
		case cl.send <- payload:
			h.record("out", msg.Type)
		default:
			slow = append(slow, cl)
		}
	}
	h.mu.RUnlock()

	for _, cl := range slow {
		h.logger.Warn("Dropping slow WebSocket client")
		h.unregister(cl)
	}
}

// BroadcastEvent is a convenience wrapper around Broadcast
func (h *Hub) BroadcastEvent(msgType, event string, data interface{}) {
	h.Broadcast(Message{Type: msgType, Event: event, Data: data})
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for cl := range h.clients {
		clients = append(clients, cl)
	}
	h.mu.RUnlock()

	for _, cl := range clients {
		h.unregister(cl)
	}
}

func (h *Hub) register(cl *client) {
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()
	if h.recorder != nil {
		h.recorder.IncWSConnections()
	}
	h.logger.Debug("WebSocket client connected", zap.String("remote", cl.conn.RemoteAddr().String()))
}

func (h *Hub) unregister(cl *client) {
	cl.once.Do(func() {
		h.mu.Lock()
		delete(h.clients, cl)
		h.mu.Unlock()
		close(cl.send)
		if h.recorder != nil {
			h.recorder.DecWSConnections()
		}
	})
}

func (h *Hub) enqueue(cl *client, msg Message) {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}
	payload, err := sonic.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode message", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[cl]; !ok {
		return
	}
	select {
	case cl.send <- payload:
		h.record("out", msg.Type)
	default:
	}
}

func (h *Hub) readPump(cl *client) {
	defer func() {
		h.unregister(cl)
		cl.conn.Close()
	}()

	cl.conn.SetReadLimit(maxMessageSize)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}

		var msg inbound
		if err := sonic.Unmarshal(data, &msg); err != nil {
			h.enqueue(cl, Message{Type: TypeError, Data: "invalid message"})
			continue
		}
		h.record("in", msg.Type)

		switch msg.Type {
		case "ping":
			h.enqueue(cl, Message{Type: TypePong})
		case "snapshot":
			var snap interface{}
			if h.snapshot != nil {
				snap = h.snapshot()
			}
			h.enqueue(cl, Message{Type: TypeHello, Data: snap})
		default:
			h.enqueue(cl, Message{Type: TypeError, Data: "unknown message type"})
		}
	}
}

func (h *Hub) writePump(ctx context.Context, cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) record(direction, msgType string) {
	if h.recorder != nil {
		h.recorder.RecordWSMessage(direction, msgType)
	}
}
