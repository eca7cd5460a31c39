package broadcast

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// Event is one broadcast notification sent to every subscriber of a match.
type Event struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// Client wraps a websocket connection with a write lock, since gorilla
// connections do not allow concurrent writers.
type Client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{conn: conn}
}

func (that *Client) Send(v any) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.conn.WriteJSON(v)
}

// Hub manages per-match broadcast groups. Delivery is best-effort
// fire-and-forget: a failed write is logged and the rest of the group still
// receives the event.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[string]map[*Client]bool
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger.With("component", "hub"),
		clients: make(map[string]map[*Client]bool),
	}
}

// Register adds a client to a match's broadcast group.
func (that *Hub) Register(matchID string, client *Client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.clients[matchID] == nil {
		that.clients[matchID] = make(map[*Client]bool)
	}

	that.clients[matchID][client] = true
}

// Unregister removes a client from a match's broadcast group.
func (that *Hub) Unregister(matchID string, client *Client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.clients[matchID], client)

	if len(that.clients[matchID]) == 0 {
		delete(that.clients, matchID)
	}
}

// Broadcast sends an event to everyone currently subscribed to the match.
func (that *Hub) Broadcast(matchID, event string, payload any) {
	that.mu.RLock()
	group := make([]*Client, 0, len(that.clients[matchID]))
	for client := range that.clients[matchID] {
		group = append(group, client)
	}
	that.mu.RUnlock()

	for _, client := range group {
		if err := client.Send(Event{Event: event, Payload: payload}); err != nil {
			that.logger.Warn("failed to deliver event", "matchID", matchID, "event", event, "error", err)
		}
	}
}

// Subscribers reports the current size of a match's broadcast group.
func (that *Hub) Subscribers(matchID string) int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.clients[matchID])
}
