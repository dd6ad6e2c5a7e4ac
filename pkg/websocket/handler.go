package websocket

import (
	"context"
	"net/http"
	"time"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Config struct {
	ReadBufferSize  int
	WriteBufferSize int
	PingInterval    time.Duration
	PongTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxMessageSize  int64
	AllowedOrigins  []string
}

func (c Config) withDefaults() Config {
	if c.PongTimeout <= 0 {
		c.PongTimeout = 60 * time.Second
	}
	if c.PingInterval <= 0 || c.PingInterval >= c.PongTimeout {
		c.PingInterval = (c.PongTimeout * 9) / 10
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 512
	}
	return c
}

// SnapshotProvider supplies the messages a client receives right after it
// connects, so a fresh connection starts from current state.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, userID primitive.ObjectID) ([]Message, error)
}

type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	config   Config
	snapshot SnapshotProvider
	logger   *logger.Logger
}

func NewHandler(hub *Hub, config Config, snapshot SnapshotProvider, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	config = config.withDefaults()

	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     originChecker(config.AllowedOrigins),
		},
		config:   config,
		snapshot: snapshot,
		logger:   log,
	}
}

func (h *Handler) HandleWebSocket(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	userObjectID, ok := userID.(primitive.ObjectID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := NewClient(h.hub, conn, userObjectID, h.config)

	if h.snapshot != nil {
		messages, err := h.snapshot.Snapshot(c.Request.Context(), userObjectID)
		if err != nil {
			h.logger.WithUserID(userObjectID).WithError(err).Warn("Failed to build live feed snapshot")
		}
		for _, message := range messages {
			client.enqueue(message)
		}
	}

	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (h *Handler) SendUserNotification(userID primitive.ObjectID, messageType string, data interface{}) {
	h.hub.SendUserNotification(userID, messageType, data)
}

func (h *Handler) GetHub() *Hub {
	return h.hub
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}

	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}
