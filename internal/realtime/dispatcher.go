package realtime

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/inspectify/inspectify/api/internal/metrics"
)

// Message is the frame pushed to clients.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
	AckID string `json:"ackId,omitempty"`
}

// Transport delivers frames to live connections without blocking.
type Transport interface {
	Send(connID string, msg Message) bool
	ConnectionIDs() []string
}

// AckFunc runs when a client confirms delivery of an acked message.
type AckFunc func(connID string)

const ackTTL = 2 * time.Minute

type pendingAck struct {
	fn       AckFunc
	expireAt time.Time
}

// Dispatcher は Registry を引いて対象コネクションへイベントを送る。
// 配送はベストエフォートで、未接続ユーザー宛ては黙って捨てる。
type Dispatcher struct {
	registry  Registry
	transport Transport
	logger    *log.Logger

	mu   sync.Mutex
	acks map[string]pendingAck
	now  func() time.Time
}

// NewDispatcher wires a dispatcher to a registry and a transport.
func NewDispatcher(registry Registry, transport Transport, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		transport: transport,
		logger:    logger,
		acks:      make(map[string]pendingAck),
		now:       time.Now,
	}
}

// NotifyUser pushes to every live session of userID and returns how many
// sessions accepted the frame. Absent users are dropped silently.
func (d *Dispatcher) NotifyUser(userID, event string, payload any) int {
	return d.deliver(event, d.registry.Sessions(userID), Message{Event: event, Data: payload})
}

// NotifyUserWithAck is NotifyUser with a delivery confirmation callback.
// onAck runs once per session that echoes the ack id.
func (d *Dispatcher) NotifyUserWithAck(userID, event string, payload any, onAck AckFunc) int {
	sessions := d.registry.Sessions(userID)
	if len(sessions) == 0 {
		metrics.NotificationsTotal.WithLabelValues(event, "absent").Inc()
		return 0
	}

	ackID := uuid.New().String()
	if onAck != nil {
		d.mu.Lock()
		d.pruneLocked()
		d.acks[ackID] = pendingAck{fn: onAck, expireAt: d.now().Add(ackTTL)}
		d.mu.Unlock()
	}
	return d.deliver(event, sessions, Message{Event: event, Data: payload, AckID: ackID})
}

// NotifyAdmins pushes to every admin session.
func (d *Dispatcher) NotifyAdmins(event string, payload any) int {
	return d.deliver(event, d.registry.Admins(), Message{Event: event, Data: payload})
}

// Broadcast pushes to every open connection, authenticated or not.
func (d *Dispatcher) Broadcast(event string, payload any) int {
	return d.deliver(event, d.transport.ConnectionIDs(), Message{Event: event, Data: payload})
}

// HandleAck resolves a pending acknowledgement. Unknown ids are ignored.
func (d *Dispatcher) HandleAck(ackID, connID string) {
	d.mu.Lock()
	pending, ok := d.acks[ackID]
	if ok && d.now().After(pending.expireAt) {
		delete(d.acks, ackID)
		ok = false
	}
	d.mu.Unlock()
	if !ok {
		return
	}
	pending.fn(connID)
}

func (d *Dispatcher) deliver(event string, connIDs []string, msg Message) int {
	if len(connIDs) == 0 {
		metrics.NotificationsTotal.WithLabelValues(event, "absent").Inc()
		return 0
	}
	sent := 0
	for _, connID := range connIDs {
		if d.transport.Send(connID, msg) {
			sent++
			metrics.NotificationsTotal.WithLabelValues(event, "sent").Inc()
			continue
		}
		metrics.NotificationsTotal.WithLabelValues(event, "dropped").Inc()
		if d.logger != nil {
			d.logger.Printf("realtime: %s を %s へ送信できませんでした", event, connID)
		}
	}
	return sent
}

func (d *Dispatcher) pruneLocked() {
	now := d.now()
	for id, pending := range d.acks {
		if now.After(pending.expireAt) {
			delete(d.acks, id)
		}
	}
}
