package ws

import (
	"encoding/json"
	"testing"
	"time"
)

func mockClient(hub *Hub) *Client {
	return &Client{
		hub:  hub,
		send: make(chan []byte, 8),
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestHubRegistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := mockClient(hub)
	hub.register <- client

	waitFor(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return hub.clients[client]
	})
}

func TestHubUnregistration(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := mockClient(hub)
	hub.register <- client
	waitFor(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return hub.clients[client]
	})

	hub.unregister <- client
	waitFor(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return !hub.clients[client]
	})

	// send channel must be closed so the write pump exits
	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected send channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	first := mockClient(hub)
	second := mockClient(hub)
	hub.register <- first
	hub.register <- second
	waitFor(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 2
	})

	hub.Broadcast(EventOrdersChanged)

	for _, c := range []*Client{first, second} {
		select {
		case msg := <-c.send:
			var event Event
			if err := json.Unmarshal(msg, &event); err != nil {
				t.Fatalf("unmarshal event: %v", err)
			}
			if event.Type != EventOrdersChanged {
				t.Errorf("event type: got %q, want %q", event.Type, EventOrdersChanged)
			}
		case <-time.After(time.Second):
			t.Fatal("client did not receive broadcast")
		}
	}
}

func TestBroadcastDropsSlowClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	slow := &Client{hub: hub, send: make(chan []byte)} // no buffer, never read
	hub.register <- slow
	waitFor(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return hub.clients[slow]
	})

	hub.Broadcast(EventClientsChanged)

	waitFor(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return !hub.clients[slow]
	})
}

func TestEventSerialization(t *testing.T) {
	data, err := json.Marshal(Event{Type: EventProductsChanged})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	if string(data) != `{"type":"products.changed"}` {
		t.Errorf("unexpected wire form: %s", data)
	}
}

func TestBroadcastWithNoClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// Must not block or panic with an empty client set.
	hub.Broadcast(EventOrdersChanged)
	hub.Broadcast(EventClientsChanged)
}
