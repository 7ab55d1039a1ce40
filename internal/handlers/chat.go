package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rojgarhq/rojgar-backend/internal/apperr"
	"github.com/rojgarhq/rojgar-backend/internal/realtime"
	"github.com/rojgarhq/rojgar-backend/internal/services/chat"
	"github.com/rojgarhq/rojgar-backend/internal/utils"
)

type ChatHandler struct {
	Chat      *chat.Service
	Hub       *realtime.Hub
	RDB       *redis.Client
	JWTSecret string
}

func NewChatHandler(chatSvc *chat.Service, hub *realtime.Hub, rdb *redis.Client, jwtSecret string) *ChatHandler {
	return &ChatHandler{Chat: chatSvc, Hub: hub, RDB: rdb, JWTSecret: jwtSecret}
}

// History returns the proposal conversation in order.
func (h *ChatHandler) History(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}

	proposalID, err := uuid.Parse(c.Params("proposalId"))
	if err != nil {
		return badRequest(c, "invalid proposal id")
	}

	messages, err := h.Chat.History(c.Context(), proposalID, userID)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"messages": messages},
	})
}

type SendMessageReq struct {
	Content string `json:"content"`
}

// Send persists a message and fans it out to the proposal room. Sockets
// that missed the fan-out catch up from history on reconnect.
func (h *ChatHandler) Send(c *fiber.Ctx) error {
	userID, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}

	proposalID, err := uuid.Parse(c.Params("proposalId"))
	if err != nil {
		return badRequest(c, "invalid proposal id")
	}

	var req SendMessageReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	msg, err := h.Chat.Send(c.Context(), proposalID, userID, req.Content)
	if err != nil {
		return apperr.Respond(c, err)
	}

	h.Hub.SendToRoom(proposalID, fiber.Map{
		"type":    "chat_message",
		"message": msg,
	})
	h.notifyOffline(msg.ReceiverID, proposalID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"message": msg},
	})
}

// notifyOffline publishes a lightweight notification so other processes
// (or a future notification worker) can reach receivers without a live
// socket here.
func (h *ChatHandler) notifyOffline(receiverID, proposalID uuid.UUID) {
	if h.RDB == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := h.RDB.Publish(ctx, "chat:notify:"+receiverID.String(), proposalID.String()).Err(); err != nil {
		log.Printf("Chat notify publish failed: %v", err)
	}
}

// wsFrame is what clients send over the socket: room management only,
// messages themselves go through the REST endpoint.
type wsFrame struct {
	Type       string `json:"type"` // join, leave, pong
	ProposalID string `json:"proposal_id"`
}

// WebSocketHandler authenticates the socket from a query token, then
// serves join/leave frames until the connection drops.
func (h *ChatHandler) WebSocketHandler(c *websocket.Conn) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		log.Println("WebSocket: token parameter missing")
		c.Close()
		return
	}

	claims, err := utils.ParseJWT(h.JWTSecret, tokenStr)
	if err != nil {
		log.Println("WebSocket: invalid token:", err)
		c.Close()
		return
	}

	userUUID, err := uuid.Parse(claims.UserID)
	if err != nil {
		log.Println("WebSocket: invalid user id in token:", err)
		c.Close()
		return
	}

	log.Printf("WebSocket: user %s connected\n", userUUID)

	client := &realtime.Client{
		ID:     uuid.New().String(),
		UserID: userUUID,
		Conn:   &realtime.WebSocketConn{Conn: c},
		Send:   make(chan []byte, 256),
	}

	h.Hub.RegisterClient(client)
	defer func() {
		h.Hub.UnregisterClient(client)
		log.Printf("WebSocket: user %s disconnected\n", userUUID)
	}()

	// hub -> socket
	go func() {
		for msg := range client.Send {
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Println("WebSocket write error:", err)
				return
			}
		}
	}()

	// socket -> room management
	for {
		var frame wsFrame
		if err := c.ReadJSON(&frame); err != nil {
			log.Printf("WebSocket read error for user %s: %v\n", userUUID, err)
			break
		}

		switch frame.Type {
		case "join":
			proposalID, err := uuid.Parse(frame.ProposalID)
			if err != nil {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_, err = h.Chat.Authorize(ctx, proposalID, userUUID)
			cancel()
			if err != nil {
				log.Printf("WebSocket: join denied for user %s on proposal %s: %v\n", userUUID, proposalID, err)
				continue
			}
			h.Hub.JoinRoom(proposalID, client)

		case "leave":
			proposalID, err := uuid.Parse(frame.ProposalID)
			if err != nil {
				continue
			}
			h.Hub.LeaveRoom(proposalID, client)

		case "pong":
			// keepalive
		}
	}
}
