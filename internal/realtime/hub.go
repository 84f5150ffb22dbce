// Package realtime pushes fresh trip balances to connected browsers over
// WebSocket whenever a trip's expenses or settlements change.
package realtime

import (
	"sync"
)

// Observer is told about connections and dropped messages
type Observer interface {
	ClientConnected()
	ClientDisconnected()
	MessageDropped()
}

// Hub tracks the connected clients of every trip
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]map[*Client]struct{}
	observer Observer
}

// NewHub creates an empty hub. observer may be nil.
func NewHub(observer Observer) *Hub {
	return &Hub{
		clients:  make(map[string]map[*Client]struct{}),
		observer: observer,
	}
}

// Register adds client to the trip's audience
func (h *Hub) Register(tripID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[tripID] == nil {
		h.clients[tripID] = make(map[*Client]struct{})
	}
	h.clients[tripID][client] = struct{}{}
	if h.observer != nil {
		h.observer.ClientConnected()
	}
}

// Unregister removes client and closes its send queue. Calling it again for
// the same client is a no-op.
func (h *Hub) Unregister(tripID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[tripID][client]; !ok {
		return
	}
	delete(h.clients[tripID], client)
	if len(h.clients[tripID]) == 0 {
		delete(h.clients, tripID)
	}
	close(client.send)
	if h.observer != nil {
		h.observer.ClientDisconnected()
	}
}

// Clients returns how many clients are watching the trip
func (h *Hub) Clients(tripID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[tripID])
}

// Broadcast queues payload for every client of the trip and returns how many
// accepted it. A client whose queue is full misses the message.
func (h *Hub) Broadcast(tripID string, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for client := range h.clients[tripID] {
		select {
		case client.send <- payload:
			delivered++
		default:
			if h.observer != nil {
				h.observer.MessageDropped()
			}
		}
	}
	return delivered
}

// Close disconnects every client, used on shutdown
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for tripID, clients := range h.clients {
		for client := range clients {
			close(client.send)
			if h.observer != nil {
				h.observer.ClientDisconnected()
			}
		}
		delete(h.clients, tripID)
	}
}
