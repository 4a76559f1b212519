package handlers

import (
	"net/http"
	"sync"

	"github.com/adilzhanb/shiftdesk/internal/services"
	jwtutil "github.com/adilzhanb/shiftdesk/pkg/jwt"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// WSMessage is the frame format of the chat socket. "text" frames are
// persisted through the chat service, "typing" frames are relayed only.
type WSMessage struct {
	Type       string `json:"type"` // "text", "typing", "status"
	ReceiverID string `json:"receiver_id"`
	SenderID   string `json:"sender_id,omitempty"`
	Text       string `json:"text,omitempty"`
	Typing     bool   `json:"typing,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// ChatSocketHandler upgrades authenticated clients to a WebSocket and
// relays direct messages to connected peers in real time.
type ChatSocketHandler struct {
	Service   *services.ChatService
	JWTSecret string

	mu      sync.Mutex
	clients map[string]*websocket.Conn
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewChatSocketHandler(service *services.ChatService, jwtSecret string) *ChatSocketHandler {
	return &ChatSocketHandler{
		Service:   service,
		JWTSecret: jwtSecret,
		clients:   make(map[string]*websocket.Conn),
	}
}

func (h *ChatSocketHandler) broadcastStatus(userID, status string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conn := range h.clients {
		conn.WriteJSON(map[string]interface{}{
			"type":   "status",
			"userId": userID,
			"status": status,
		})
	}
}

// ServeWS handles GET /chat/ws?token=<jwt>.
func (h *ChatSocketHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}
	claims, err := jwtutil.ValidateToken(token, h.JWTSecret)
	if err != nil {
		log.WithError(err).Warn("WebSocket auth failed")
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}
	userID := claims.UserID

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	log.WithField("userID", userID).Info("WebSocket connected")

	h.mu.Lock()
	h.clients[userID] = conn
	h.mu.Unlock()
	h.broadcastStatus(userID, "online")

	defer func() {
		h.mu.Lock()
		delete(h.clients, userID)
		h.mu.Unlock()
		h.broadcastStatus(userID, "offline")
		conn.Close()
		log.WithField("userID", userID).Info("WebSocket disconnected")
	}()

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}

		if msg.Type == "typing" {
			h.mu.Lock()
			if receiverConn, ok := h.clients[msg.ReceiverID]; ok {
				receiverConn.WriteJSON(map[string]interface{}{
					"type":      "typing",
					"sender_id": userID,
					"typing":    msg.Typing,
				})
			}
			h.mu.Unlock()
			continue
		}

		if msg.Type != "" && msg.Type != "text" {
			continue
		}

		stored, _, err := h.Service.SendDirectMessage(r.Context(), userID, msg.ReceiverID, msg.Text)
		if err != nil {
			conn.WriteJSON(map[string]interface{}{
				"type":  "error",
				"error": err.Error(),
			})
			continue
		}

		response := map[string]interface{}{
			"type":        "text",
			"id":          stored.ID.Hex(),
			"sender_id":   userID,
			"receiver_id": msg.ReceiverID,
			"text":        stored.Text,
			"created_at":  stored.CreatedAt,
		}
		h.mu.Lock()
		if receiverConn, ok := h.clients[msg.ReceiverID]; ok {
			_ = receiverConn.WriteJSON(response)
		}
		_ = conn.WriteJSON(response)
		h.mu.Unlock()
	}
}
