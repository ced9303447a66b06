package ws

import (
	"encoding/json"
	"sync"
)

// Event types broadcast after successful mutations. Connected UIs refetch
// the affected collection and re-derive their view models.
const (
	EventClientsChanged  = "clients.changed"
	EventOrdersChanged   = "orders.changed"
	EventProductsChanged = "products.changed"
)

// Event is a WebSocket message pushed to connected UIs.
type Event struct {
	Type string `json:"type"`
}

// Hub maintains the set of active clients and broadcasts change events
// to all of them.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan Event

	mu sync.Mutex
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 256),
	}
}

// Run starts the hub's main loop.
// This should be called as a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			message, err := json.Marshal(event)
			if err != nil {
				continue
			}

			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, close and unregister
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues a change event for every connected client.
// This is the public API for handlers to announce mutations.
func (h *Hub) Broadcast(eventType string) {
	h.broadcast <- Event{Type: eventType}
}
