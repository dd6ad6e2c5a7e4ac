package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/app"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/config"
	handlers "github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/handlers/shared"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/repositories/interfaces"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/repositories/mongodb"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/services"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/logger"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/metrics"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/queue"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/websocket"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/routes"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := app.NewLogger(cfg, "api")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if err := run(cfg, appLogger); err != nil {
		appLogger.WithError(err).Fatal("Server stopped")
	}
}

func run(cfg *config.Config, appLogger *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(registry)

	db, err := app.ConnectMongo(ctx, cfg.Database, appLogger)
	if err != nil {
		return err
	}
	defer db.Close()

	redisCache, err := app.ConnectRedis(cfg.Redis)
	if err != nil {
		return err
	}
	// Interfaces stay nil when Redis is disabled.
	var (
		userCache mongodb.CacheService
		guard     services.DeliveryGuard
	)
	checks := map[string]handlers.Pinger{"mongodb": db}
	if redisCache != nil {
		defer redisCache.Close()
		userCache, guard = redisCache, redisCache
		checks["redis"] = redisCache
	}

	alertRepo := mongodb.NewPanicAlertRepository(db.Database)
	userRepo := mongodb.NewUserRepository(db.Database, userCache, cfg.Redis.UserCacheTTL)
	contactRepo := mongodb.NewTrustedContactRepository(db.Database)
	tokenRepo := mongodb.NewDeviceTokenRepository(db.Database)
	notificationRepo := mongodb.NewNotificationRepository(db.Database)

	publisher, closeQueue, err := newEventPublisher(ctx, cfg, tokenRepo, notificationRepo, guard, appMetrics, appLogger)
	if err != nil {
		return err
	}
	defer closeQueue()

	smsProvider, err := app.NewSMSProvider(ctx, cfg)
	if err != nil {
		return err
	}
	geocoder, err := app.NewGeocoder(cfg)
	if err != nil {
		return err
	}

	hub := websocket.NewHub(appLogger, appMetrics)
	go hub.Run(ctx)

	notificationService := services.NewNotificationService(notificationRepo, publisher, hub, appMetrics, appLogger)
	contactService := services.NewTrustedContactService(contactRepo, hub, appLogger)
	tokenService := services.NewDeviceTokenService(tokenRepo, appLogger)
	alertService := services.NewAlertService(alertRepo, userRepo, contactRepo, notificationService, geocoder, smsProvider, cfg.Alert, appMetrics, appLogger)

	wsHandler := websocket.NewHandler(hub, websocket.Config{
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		PingInterval:    cfg.WebSocket.PingInterval,
		PongTimeout:     cfg.WebSocket.PongTimeout,
		WriteTimeout:    cfg.WebSocket.WriteTimeout,
		MaxMessageSize:  cfg.WebSocket.MaxMessageSize,
		AllowedOrigins:  cfg.WebSocket.AllowedOrigins,
	}, services.NewLiveFeed(notificationService, contactService), appLogger)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.NewRouter(routes.RouterConfig{
		JWTSecret:      cfg.Security.JWTSecret,
		AllowedOrigins: cfg.Security.CORSAllowedOrigins,
		WebSocketPath:  cfg.WebSocket.Path,
	}, &routes.Handlers{
		Alert:          handlers.NewAlertHandler(alertService),
		DeviceToken:    handlers.NewDeviceTokenHandler(tokenService),
		TrustedContact: handlers.NewTrustedContactHandler(contactService),
		Notification:   handlers.NewNotificationHandler(notificationService),
		Health:         handlers.NewHealthHandler(cfg.App.Version, checks),
		WebSocket:      wsHandler,
	}, appMetrics, appLogger)
	if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		return fmt.Errorf("invalid trusted proxies: %w", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		appLogger.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	appLogger.Info("Server exiting")
	return nil
}

// newEventPublisher publishes NotificationCreated events to RabbitMQ, or runs
// push delivery in-process when the queue is disabled.
func newEventPublisher(
	ctx context.Context,
	cfg *config.Config,
	tokenRepo interfaces.DeviceTokenRepository,
	notificationRepo interfaces.NotificationRepository,
	guard services.DeliveryGuard,
	m *metrics.Metrics,
	appLogger *logger.Logger,
) (services.EventPublisher, func(), error) {
	if !cfg.Queue.Enabled {
		router, err := app.NewPushRouter(ctx, cfg.Push, appLogger)
		if err != nil {
			return nil, nil, err
		}
		delivery := services.NewPushDeliveryService(tokenRepo, notificationRepo, router, guard, cfg.Alert.DeliveryGuardTTL, m, appLogger)
		appLogger.Warn("Queue disabled, push delivery runs inside the API process")
		return services.NewInlineEventPublisher(delivery, appLogger), func() {}, nil
	}

	manager, err := queue.NewManager(cfg.Queue.URL, appLogger)
	if err != nil {
		return nil, nil, err
	}
	if err := manager.DeclareTopology(app.QueueTopology(cfg.Queue)); err != nil {
		_ = manager.Close()
		return nil, nil, err
	}

	publisher := queue.NewPublisher(manager, cfg.Queue.Exchange)
	closeFn := func() {
		if err := manager.Close(); err != nil {
			appLogger.WithError(err).Warn("Failed to close queue connection")
		}
	}
	return services.NewQueueEventPublisher(publisher, cfg.Queue.RoutingKey, cfg.Queue.PublishTimeout), closeFn, nil
}
