// internal/realtime/hub.go
package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
)

type Client struct {
	ID     string
	UserID uuid.UUID
	Conn   *WebSocketConn
	Send   chan []byte
}

// Hub keeps the set of connected clients and the proposal rooms they have
// joined. A room is keyed by proposal id; fan-out reaches only the sockets
// currently in the room.
type Hub struct {
	clients    map[string]*Client
	rooms      map[uuid.UUID]map[string]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[uuid.UUID]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

// JoinRoom subscribes a connected client to a proposal's room. Membership
// checks happen before this is called.
func (h *Hub) JoinRoom(proposalID uuid.UUID, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[proposalID]
	if room == nil {
		room = make(map[string]*Client)
		h.rooms[proposalID] = room
	}
	room[client.ID] = client
	log.Printf("Client %s joined room %s", client.ID, proposalID)
}

func (h *Hub) LeaveRoom(proposalID uuid.UUID, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[proposalID]; ok {
		delete(room, client.ID)
		if len(room) == 0 {
			delete(h.rooms, proposalID)
		}
	}
}

// SendToRoom fans a payload out to every socket joined to the proposal's
// room. Slow clients are skipped, not waited on.
func (h *Hub) SendToRoom(proposalID uuid.UUID, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("Error marshaling room payload: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.rooms[proposalID] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

// SendToUser sends a payload to every socket of a specific user.
func (h *Hub) SendToUser(userID uuid.UUID, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		if client.UserID == userID {
			select {
			case client.Send <- payload:
			default:
			}
		}
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			log.Printf("Client registered: %s (UserID: %s)", client.ID, client.UserID)

		case client := <-h.unregister:
			h.mu.Lock()
			if old, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				for pid, room := range h.rooms {
					delete(room, client.ID)
					if len(room) == 0 {
						delete(h.rooms, pid)
					}
				}
				close(old.Send)
				log.Printf("Client unregistered: %s", client.ID)
			}
			h.mu.Unlock()
		}
	}
}
