package routes

import (
	handlers "github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/handlers/shared"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/middleware"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/logger"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/metrics"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/websocket"
	"github.com/gin-gonic/gin"
)

// Handlers groups everything the router dispatches to.
type Handlers struct {
	Alert          *handlers.AlertHandler
	DeviceToken    *handlers.DeviceTokenHandler
	TrustedContact *handlers.TrustedContactHandler
	Notification   *handlers.NotificationHandler
	Health         *handlers.HealthHandler
	WebSocket      *websocket.Handler
}

type RouterConfig struct {
	JWTSecret      string
	AllowedOrigins []string
	WebSocketPath  string
}

// NewRouter builds the API engine with the global middleware chain.
func NewRouter(cfg RouterConfig, h *Handlers, m *metrics.Metrics, log *logger.Logger) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(m.Middleware())

	router.GET("/health", h.Health.Health)
	router.GET("/ready", h.Health.Ready)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	v1 := router.Group("/api/v1")
	SetupAlertRoutes(v1, h, middleware.AuthRequired(cfg.JWTSecret, log))

	if h.WebSocket != nil {
		path := cfg.WebSocketPath
		if path == "" {
			path = "/ws"
		}
		router.GET(path, middleware.WebSocketAuth(cfg.JWTSecret, log), h.WebSocket.HandleWebSocket)
	}

	return router
}

// SetupAlertRoutes registers the authenticated panic-alert endpoints.
func SetupAlertRoutes(r *gin.RouterGroup, h *Handlers, auth gin.HandlerFunc) {
	devices := r.Group("/devices")
	devices.Use(auth)
	{
		devices.PUT("/token", h.DeviceToken.RegisterToken)
		devices.GET("/token", h.DeviceToken.GetToken)
	}

	contacts := r.Group("/contacts")
	contacts.Use(auth)
	{
		contacts.PUT("/trusted", h.TrustedContact.SetContact)
		contacts.GET("/trusted", h.TrustedContact.GetContact)
	}

	alerts := r.Group("/alerts")
	alerts.Use(auth)
	{
		alerts.POST("", h.Alert.EmitAlert)
		alerts.GET("", h.Alert.ListAlerts)
		alerts.GET("/availability", h.Alert.GetAvailability)
		alerts.GET("/:protocol", h.Alert.GetAlert)
	}

	notifications := r.Group("/notifications")
	notifications.Use(auth)
	{
		notifications.GET("", h.Notification.ListNotifications)
		notifications.GET("/unread-count", h.Notification.GetUnreadCount)
		notifications.POST("/read-all", h.Notification.MarkAllRead)
		notifications.POST("/:id/read", h.Notification.MarkRead)
	}
}
