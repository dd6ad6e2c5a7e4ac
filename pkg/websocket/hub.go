package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/logger"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MessageTypeNotifications  = "notifications"
	MessageTypeTrustedContact = "trusted_contact"
)

// Hub fans messages out to every connection a user has open.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	rooms      map[string]map[*Client]bool
	mutex      sync.RWMutex
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

type Message struct {
	Type      string             `json:"type"`
	UserID    primitive.ObjectID `json:"user_id"`
	Timestamp int64              `json:"timestamp"`
	Data      interface{}        `json:"data"`
}

func NewMessage(messageType string, userID primitive.ObjectID, data interface{}) Message {
	return Message{
		Type:      messageType,
		UserID:    userID,
		Timestamp: getCurrentTimestamp(),
		Data:      data,
	}
}

func NewHub(log *logger.Logger, m *metrics.Metrics) *Hub {
	if log == nil {
		log = logger.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     log,
		metrics:    m,
	}
}

// Run serves register and unregister requests until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client] = true
	h.joinRoom(client, userRoom(client.UserID))
	h.metrics.SetWebSocketClients(len(h.clients))

	h.logger.WithUserID(client.UserID).Debug("Live feed client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.removeClient(client)
}

// removeClient must be called with the write lock held.
func (h *Hub) removeClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}

	delete(h.clients, client)
	close(client.send)

	for roomID := range client.rooms {
		if room, exists := h.rooms[roomID]; exists {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}

	h.metrics.SetWebSocketClients(len(h.clients))
	h.logger.WithUserID(client.UserID).Debug("Live feed client unregistered")
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		h.removeClient(client)
	}
}

// SendToUser delivers message to every open connection of userID. Clients
// whose buffers are full are dropped.
func (h *Hub) SendToUser(userID primitive.ObjectID, message Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode live feed message")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	room, exists := h.rooms[userRoom(userID)]
	if !exists {
		return
	}

	for client := range room {
		select {
		case client.send <- data:
		default:
			h.removeClient(client)
		}
	}
}

// SendUserNotification wraps data in a typed message for userID.
func (h *Hub) SendUserNotification(userID primitive.ObjectID, messageType string, data interface{}) {
	h.SendToUser(userID, NewMessage(messageType, userID, data))
}

// ConnectedClients reports how many connections userID has open.
func (h *Hub) ConnectedClients(userID primitive.ObjectID) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.rooms[userRoom(userID)])
}

// joinRoom must be called with the write lock held.
func (h *Hub) joinRoom(client *Client, roomID string) {
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.rooms[roomID] = true
}

func userRoom(userID primitive.ObjectID) string {
	return "user_" + userID.Hex()
}

func getCurrentTimestamp() int64 {
	return time.Now().Unix()
}
