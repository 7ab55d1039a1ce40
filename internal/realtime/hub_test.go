package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestClient() *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: uuid.New(),
		Send:   make(chan []byte, 8),
	}
}

func TestRoomFanOut(t *testing.T) {
	hub := NewHub()
	proposalID := uuid.New()

	a := newTestClient()
	b := newTestClient()
	outsider := newTestClient()

	hub.JoinRoom(proposalID, a)
	hub.JoinRoom(proposalID, b)

	hub.SendToRoom(proposalID, map[string]string{"type": "chat_message"})

	for _, c := range []*Client{a, b} {
		select {
		case payload := <-c.Send:
			var got map[string]string
			assert.NoError(t, json.Unmarshal(payload, &got))
			assert.Equal(t, "chat_message", got["type"])
		default:
			t.Fatalf("client %s did not receive the payload", c.ID)
		}
	}

	select {
	case <-outsider.Send:
		t.Fatal("outsider received a room payload")
	default:
	}
}

func TestLeaveRoom(t *testing.T) {
	hub := NewHub()
	proposalID := uuid.New()

	a := newTestClient()
	hub.JoinRoom(proposalID, a)
	hub.LeaveRoom(proposalID, a)

	hub.SendToRoom(proposalID, map[string]string{"type": "chat_message"})

	select {
	case <-a.Send:
		t.Fatal("client received a payload after leaving")
	default:
	}
}

func TestUnregisterRemovesFromRooms(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	proposalID := uuid.New()
	a := newTestClient()

	hub.RegisterClient(a)
	hub.JoinRoom(proposalID, a)
	hub.UnregisterClient(a)

	// wait for the unregister to be processed and the channel closed
	deadline := time.After(time.Second)
	for {
		select {
		case _, open := <-a.Send:
			if !open {
				hub.SendToRoom(proposalID, map[string]string{"type": "chat_message"})
				return
			}
		case <-deadline:
			t.Fatal("send channel was not closed on unregister")
		}
	}
}

func TestSendToUserReachesAllSockets(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	userID := uuid.New()
	first := &Client{ID: uuid.New().String(), UserID: userID, Send: make(chan []byte, 8)}
	second := &Client{ID: uuid.New().String(), UserID: userID, Send: make(chan []byte, 8)}

	hub.RegisterClient(first)
	hub.RegisterClient(second)

	// registration goes through a channel; poll until both are visible
	deadline := time.After(time.Second)
	for {
		hub.mu.RLock()
		n := len(hub.clients)
		hub.mu.RUnlock()
		if n == 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("clients were not registered in time")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}

	hub.SendToUser(userID, map[string]string{"type": "notify"})

	for _, c := range []*Client{first, second} {
		select {
		case <-c.Send:
		case <-time.After(time.Second):
			t.Fatalf("socket %s did not receive the payload", c.ID)
		}
	}
}
