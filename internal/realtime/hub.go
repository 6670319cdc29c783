package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	v1 "github.com/VaheKhachatryan/InTechTestAppSln/contracts/realtime/v1"
)

// Hub owns the in-memory set of live clients keyed by connection id and
// delivers eviction notifications for the presence coordinator.
type Hub struct {
	log *slog.Logger

	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub constructs a Hub instance.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		log:     log,
		clients: make(map[string]*Client),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	if h == nil || c == nil || c.ConnectionID == "" {
		return
	}

	h.mu.Lock()
	h.clients[c.ConnectionID] = c
	h.mu.Unlock()
}

// Unregister removes a client from the hub. No-op if absent.
func (h *Hub) Unregister(connectionID string) {
	if h == nil || connectionID == "" {
		return
	}

	h.mu.Lock()
	delete(h.clients, connectionID)
	h.mu.Unlock()
}

// Get returns the client registered under connectionID, or nil.
func (h *Hub) Get(connectionID string) *Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[connectionID]
}

// Len returns the number of registered clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ForceStop notifies the connection that it has been evicted and signals its
// goroutines to shut down. Delivery is best-effort: the envelope is enqueued
// without blocking and the client is closed regardless; the registry removal,
// not this notification, enforces single-connection presence.
func (h *Hub) ForceStop(connectionID string) {
	c := h.Get(connectionID)
	if c == nil {
		h.log.Info("hub.forcestop.unknown", "connection_id", connectionID)
		return
	}

	payload, _ := json.Marshal(v1.ForceStopConnectionPayload{ConnectionID: connectionID})
	env := newEnvelope(v1.TypeForceStopConnection, payload, time.Now().UTC())

	select {
	case <-c.Done():
	case c.Send <- env:
	default:
		// Queue full: the connection is stalling anyway; drop and close.
	}

	c.Close()
	h.log.Info("hub.forcestop", "connection_id", connectionID)
}
