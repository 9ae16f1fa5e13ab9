package ws

import (
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Client is one live connection bound to an authenticated user.
type Client struct {
	Conn   *websocket.Conn
	UserID uuid.UUID
}

type directMessage struct {
	UserID  uuid.UUID
	Payload []byte
}

// Hub tracks connections per user so notifications reach their
// recipient, and still supports broadcast for stock/order events.
type Hub struct {
	clients    map[*websocket.Conn]uuid.UUID
	Register   chan *Client
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	direct     chan directMessage
	mutex      sync.Mutex
	log        *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]uuid.UUID),
		Register:   make(chan *Client),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte),
		direct:     make(chan directMessage, 64),
		log:        log,
	}
}

// SendToUser queues a payload for every live connection of one user.
func (h *Hub) SendToUser(userID uuid.UUID, payload []byte) {
	h.direct <- directMessage{UserID: userID, Payload: payload}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mutex.Lock()
			h.clients[client.Conn] = client.UserID
			h.mutex.Unlock()
			h.log.WithField("user_id", client.UserID).Debug("ws client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mutex.Unlock()

		case msg := <-h.direct:
			h.mutex.Lock()
			for conn, userID := range h.clients {
				if userID != msg.UserID {
					continue
				}
				if err := conn.WriteMessage(websocket.TextMessage, msg.Payload); err != nil {
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}
