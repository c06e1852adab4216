package socket

import (
	"context"
	"encoding/json"
	"sync"

	"notewise/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	SessionType        = "SESSION"         // Signed in / signed out
	InvalidateType     = "INVALIDATE"      // Cache keys the client should refetch
	SummaryCreatedType = "SUMMARY_CREATED" // A summary row was persisted

	StateAuthenticated   = "authenticated"
	StateUnauthenticated = "unauthenticated"
)

// Event is the only message shape sent over the socket.
type Event struct {
	Type    string          `json:"type"`
	UserID  string          `json:"user_id"`
	Payload json.RawMessage `json:"payload"`
}

type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

type SessionPayload struct {
	State string       `json:"state"`
	User  *SessionUser `json:"user,omitempty"`
}

type InvalidatePayload struct {
	Keys []string `json:"keys"`
}

// NewEvent marshals payload into an Event addressed to userID's room.
func NewEvent(eventType, userID string, payload interface{}) Event {
	raw, err := json.Marshal(payload)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling %s payload: %v", eventType, err)
		raw = json.RawMessage(`null`)
	}
	return Event{Type: eventType, UserID: userID, Payload: raw}
}

// Hub keeps one room per user. Every connection a user has open joins the
// same room and receives the same events.
type Hub struct {
	Rooms      map[string]map[*Client]bool
	Broadcast  chan Event
	Register   chan *Client
	Unregister chan *Client

	mu   sync.Mutex
	done chan struct{}
	once sync.Once
}

type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	UserID string
	Send   chan []byte
}

func NewHub() *Hub {
	return &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Broadcast:  make(chan Event),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Publish hands ev to the hub loop. It returns immediately once the hub
// has stopped.
func (h *Hub) Publish(ev Event) {
	select {
	case h.Broadcast <- ev:
	case <-h.done:
	}
}

// Run owns room membership until ctx ends.
func (h *Hub) Run(ctx context.Context) {
	defer h.once.Do(func() { close(h.done) })

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.UserID] == nil {
				h.Rooms[client.UserID] = make(map[*Client]bool)
			}
			h.Rooms[client.UserID][client] = true
			h.mu.Unlock()

			// The connection was authenticated, so its first event says so.
			greeting := NewEvent(SessionType, client.UserID, SessionPayload{
				State: StateAuthenticated,
				User:  &SessionUser{ID: client.UserID},
			})
			payload, _ := json.Marshal(greeting)
			client.Send <- payload

		case client := <-h.Unregister:
			h.remove(client)

		case ev := <-h.Broadcast:
			payload, err := json.Marshal(ev)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling broadcast event: %v", err)
				continue
			}

			// Collect recipients first to avoid holding the lock during I/O.
			h.mu.Lock()
			clientsToSend := make([]*Client, 0, len(h.Rooms[ev.UserID]))
			for client := range h.Rooms[ev.UserID] {
				clientsToSend = append(clientsToSend, client)
			}
			h.mu.Unlock()

			for _, client := range clientsToSend {
				select {
				case client.Send <- payload:
				default:
					logger.Sugar.Warnf("Client %s's send buffer is full. Unregistering.", client.UserID)
					h.remove(client)
				}
			}
		}
	}
}

// Connections reports how many sockets userID has open.
func (h *Hub) Connections(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Rooms[userID])
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.Rooms[client.UserID][client]; !ok {
		return
	}
	delete(h.Rooms[client.UserID], client)
	close(client.Send)
	if len(h.Rooms[client.UserID]) == 0 {
		delete(h.Rooms, client.UserID)
		logger.Sugar.Debugf("Closed empty room for user %s", client.UserID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, clients := range h.Rooms {
		for client := range clients {
			close(client.Send)
		}
		delete(h.Rooms, userID)
	}
}

// Publisher is what services need from the hub.
type Publisher interface {
	Publish(ev Event)
}
