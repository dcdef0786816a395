package realtime

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/inspectify/inspectify/api/internal/metrics"
)

// HubConfig defines dependencies required by Hub.
type HubConfig struct {
	Registry    Registry
	Logger      *log.Logger
	CheckOrigin func(r *http.Request) bool
}

// Hub maintains the set of open websocket connections and implements Transport.
type Hub struct {
	registry    Registry
	logger      *log.Logger
	checkOrigin func(r *http.Request) bool

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu      sync.RWMutex
	clients map[string]*Client
	onAck   func(ackID, connID string)
}

// NewHub creates a hub. Call Run before serving connections.
func NewHub(cfg HubConfig) *Hub {
	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		registry:    cfg.Registry,
		logger:      cfg.Logger,
		checkOrigin: checkOrigin,
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
		clients:     make(map[string]*Client),
	}
}

// SetAckHandler installs the callback invoked for client "ack" frames.
func (h *Hub) SetAckHandler(fn func(ackID, connID string)) {
	h.mu.Lock()
	h.onAck = fn
	h.mu.Unlock()
}

// Run は登録・解除要求を処理するメインループ。ctx 終了で全接続を閉じる。
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			metrics.RealtimeConnections.Inc()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
				metrics.RealtimeConnections.Dec()
			}
			h.mu.Unlock()
			h.registry.Unregister(client.id)

		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				delete(h.clients, id)
				close(client.send)
				h.registry.Unregister(id)
				metrics.RealtimeConnections.Dec()
			}
			h.mu.Unlock()
			return
		}
	}
}

// Send queues msg for connID without blocking. A full buffer drops the frame.
func (h *Hub) Send(connID string, msg Message) bool {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logf("realtime: %s のエンコードに失敗: %v", msg.Event, err)
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.clients[connID]
	if !ok {
		return false
	}
	select {
	case client.send <- payload:
		return true
	default:
		return false
	}
}

// ConnectionIDs returns every open connection id.
func (h *Hub) ConnectionIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}

func (h *Hub) handleAck(ackID, connID string) {
	h.mu.RLock()
	fn := h.onAck
	h.mu.RUnlock()
	if fn != nil && ackID != "" {
		fn(ackID, connID)
	}
}

func (h *Hub) logf(format string, args ...any) {
	if h.logger != nil {
		h.logger.Printf(format, args...)
	}
}
