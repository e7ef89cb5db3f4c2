package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/lahiru-voiceai/site/internal/capture"
	"github.com/lahiru-voiceai/site/pkg/metrics"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// Hub maintains capture session ID -> connection for every open feedback page.
type Hub struct {
	clients map[string]*Client
	mu      sync.RWMutex
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewHub creates a new capture hub.
func NewHub(m *metrics.Metrics, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.Nop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
		metrics: m,
	}
}

// Register adds a client under its session ID.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
	h.metrics.ActiveCaptures.Inc()
	h.logger.Debug("capture client connected", zap.String("session_id", c.ID))
}

// Unregister removes a client and records the mode its session ended in.
func (h *Hub) Unregister(c *Client, final capture.Mode) {
	h.mu.Lock()
	_, ok := h.clients[c.ID]
	delete(h.clients, c.ID)
	h.mu.Unlock()
	if !ok {
		return
	}
	h.metrics.ActiveCaptures.Dec()
	h.metrics.CaptureSessions.WithLabelValues(string(final)).Inc()
	h.logger.Debug("capture client disconnected", zap.String("session_id", c.ID), zap.String("final_mode", string(final)))
}

// Get returns the client for a session ID.
func (h *Hub) Get(id string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[id]
	return c, ok
}

// Count returns the number of connected capture clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SendToClient sends a message to a single client. Dropped if the client is gone or its buffer is full.
func (h *Hub) SendToClient(id, event string, payload interface{}) {
	c, ok := h.Get(id)
	if !ok {
		return
	}
	c.emit(event, payload)
}

func encode(event string, payload interface{}) (WSMessage, error) {
	if payload == nil {
		return WSMessage{Event: event}, nil
	}
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return WSMessage{}, err
		}
	}
	return WSMessage{Event: event, Data: data}, nil
}
