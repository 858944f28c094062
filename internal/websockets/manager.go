package websockets

import (
	"encoding/json"
	"sync"

	"advisorapi/config"
	"advisorapi/internal/database"
	"advisorapi/internal/events"
	"advisorapi/internal/logger"
	"advisorapi/internal/metrics"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const sendBufferSize = 32

// Conn is the part of *websocket.Conn the manager drives.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type Client struct {
	ID   string
	send chan []byte
}

// Manager pushes advisor change events to every connected websocket client.
// A client whose buffer is full misses the message instead of stalling the
// publisher.
type Manager struct {
	mu          sync.RWMutex
	clients     map[string]*Client
	unsubscribe func()
	metrics     *metrics.Metrics
	log         logger.Logger
}

func New(
	db database.DB,
	eventBus *events.EventBus,
	config config.Config,
	metrics *metrics.Metrics,
) (*Manager, error) {
	log := logger.New("websockets").Function("New")

	if eventBus == nil {
		return nil, log.ErrMsg("event bus is nil")
	}

	m := &Manager{
		clients: make(map[string]*Client),
		metrics: metrics,
		log:     logger.New("websockets"),
	}
	m.unsubscribe = eventBus.Subscribe(events.ADVISOR_CHANNEL, m.broadcastEvent)

	log.Info("Websocket manager ready", "environment", config.Environment, "cache", db.Cache.Events != nil)
	return m, nil
}

func (m *Manager) HandleWebSocket(c *websocket.Conn) {
	m.Serve(c)
}

// Serve owns conn until the peer disconnects.
func (m *Manager) Serve(conn Conn) {
	log := m.log.Function("Serve")

	client := m.register()
	log.Debug("Client connected", "clientID", client.ID)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for message := range client.send {
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Debug("Write failed", "clientID", client.ID, "error", err)
				_ = conn.Close()
				for range client.send {
				}
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	m.unregister(client.ID)
	<-done
	_ = conn.Close()
	log.Debug("Client disconnected", "clientID", client.ID)
}

func (m *Manager) register() *Client {
	client := &Client{
		ID:   uuid.New().String(),
		send: make(chan []byte, sendBufferSize),
	}

	m.mu.Lock()
	m.clients[client.ID] = client
	count := len(m.clients)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.WebsocketClients.Set(float64(count))
	}
	return client
}

func (m *Manager) unregister(id string) {
	m.mu.Lock()
	client, ok := m.clients[id]
	if ok {
		delete(m.clients, id)
		close(client.send)
	}
	count := len(m.clients)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.WebsocketClients.Set(float64(count))
	}
}

func (m *Manager) broadcastEvent(event events.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		m.log.Function("broadcastEvent").Er("failed to marshal event", err, "type", event.Type)
		return
	}
	m.Broadcast(payload)
}

// Broadcast queues payload for every client and returns how many were skipped.
func (m *Manager) Broadcast(payload []byte) (dropped int) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, client := range m.clients {
		select {
		case client.send <- payload:
		default:
			dropped++
		}
	}

	if dropped > 0 {
		m.log.Function("Broadcast").Warn("Dropped message for slow clients", "count", dropped)
		if m.metrics != nil {
			m.metrics.WebsocketDropped.Add(float64(dropped))
		}
	}
	return dropped
}

func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// Close stops listening for events. Connected clients are released as their
// read loops end.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}
