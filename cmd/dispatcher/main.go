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
	"time"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/app"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/config"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/repositories/mongodb"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/services"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/logger"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/metrics"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/queue"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// The dispatcher consumes NotificationCreated events and sends one push per
// event to the recipient's registered device.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if !cfg.Queue.Enabled {
		log.Fatal("QUEUE_ENABLED is false; push delivery runs inside the API server")
	}

	appLogger, err := app.NewLogger(cfg, "dispatcher")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if err := run(cfg, appLogger); err != nil {
		appLogger.WithError(err).Fatal("Dispatcher stopped")
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

	var guard services.DeliveryGuard
	redisCache, err := app.ConnectRedis(cfg.Redis)
	if err != nil {
		return err
	}
	if redisCache != nil {
		defer redisCache.Close()
		guard = redisCache
	} else {
		appLogger.Warn("Redis disabled, redelivered events will be pushed again")
	}

	router, err := app.NewPushRouter(ctx, cfg.Push, appLogger)
	if err != nil {
		return err
	}

	delivery := services.NewPushDeliveryService(
		mongodb.NewDeviceTokenRepository(db.Database),
		mongodb.NewNotificationRepository(db.Database),
		router,
		guard,
		cfg.Alert.DeliveryGuardTTL,
		appMetrics,
		appLogger,
	)

	manager, err := queue.NewManager(cfg.Queue.URL, appLogger)
	if err != nil {
		return err
	}
	defer manager.Close()

	if err := manager.DeclareTopology(app.QueueTopology(cfg.Queue)); err != nil {
		return err
	}

	if cfg.App.MetricsEnabled {
		metricsSrv := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.MetricsPort),
			Handler:           appMetrics.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				appLogger.WithError(err).Error("Metrics server failed")
			}
		}()
		defer metricsSrv.Close()
	}

	consumer := queue.NewConsumer(manager, cfg.Queue.Queue, cfg.Queue.ConsumerTag, cfg.Queue.Prefetch, appLogger)
	appLogger.WithField("queue", cfg.Queue.Queue).Info("Push dispatcher started")

	if err := consumer.Run(ctx, services.NewDeliveryHandler(delivery, appLogger)); err != nil {
		return fmt.Errorf("consumer stopped: %w", err)
	}

	appLogger.Info("Push dispatcher exiting")
	return nil
}
