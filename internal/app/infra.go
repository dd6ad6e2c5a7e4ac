// Package app builds the infrastructure shared by the API server and the
// push dispatcher.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/config"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/models"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/cache"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/database"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/logger"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/maps"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/push"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/queue"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/sms"
	"github.com/sony/gobreaker"
)

func NewLogger(cfg *config.Config, component string) (*logger.Logger, error) {
	return logger.NewLogger(&logger.Config{
		Level:      logger.LogLevel(cfg.Log.Level),
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		Caller:     cfg.Log.Caller,
		AppName:    cfg.App.Name + "-" + component,
		Version:    cfg.App.Version,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
}

// ConnectMongo opens the database and applies pending migrations when
// configured to.
func ConnectMongo(ctx context.Context, cfg *config.DatabaseConfig, log *logger.Logger) (*database.MongoDB, error) {
	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.URI,
		Database:       cfg.Database,
		MaxPoolSize:    cfg.MaxPoolSize,
		MinPoolSize:    cfg.MinPoolSize,
		ConnectTimeout: cfg.ConnectTimeout,
		SocketTimeout:  cfg.SocketTimeout,
	})
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := database.NewMigrator(db.Database, log).Up(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	return db, nil
}

// ConnectRedis returns nil without error when Redis is disabled.
func ConnectRedis(cfg *config.RedisConfig) (*cache.RedisCache, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	return cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Host,
		Port:         cfg.Port,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
}

// NewPushRouter sends through FCM by default and through APNs for iOS
// devices when APNs credentials are present. Every gateway sits behind its
// own circuit breaker.
func NewPushRouter(ctx context.Context, cfg *config.PushConfig, log *logger.Logger) (*push.Router, error) {
	settings := push.BreakerSettings{
		MaxRequests:         cfg.Breaker.MaxRequests,
		Interval:            cfg.Breaker.Interval,
		Timeout:             cfg.Breaker.Timeout,
		ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Push gateway circuit breaker changed state")
		},
	}

	fcm, err := push.NewFCMProvider(ctx, cfg.FCM.Credentials, cfg.FCM.ProjectID)
	if err != nil {
		return nil, err
	}
	router := push.NewRouter(push.NewBreakerProvider(fcm, settings))

	if cfg.APNS.Configured() {
		apns, err := push.NewAPNSProvider(cfg.APNS.KeyFile, cfg.APNS.KeyID, cfg.APNS.TeamID, cfg.APNS.BundleID, cfg.APNS.Production)
		if err != nil {
			return nil, err
		}
		router.Route(string(models.DevicePlatformIOS), push.NewBreakerProvider(apns, settings))
	}

	return router, nil
}

// NewSMSProvider returns nil when the SMS fallback is off.
func NewSMSProvider(ctx context.Context, cfg *config.Config) (sms.SMSProvider, error) {
	if !cfg.Alert.SMSFallback {
		return nil, nil
	}

	switch strings.ToLower(cfg.SMS.Provider) {
	case "twilio":
		if cfg.SMS.Twilio.AccountSID == "" || cfg.SMS.Twilio.AuthToken == "" {
			return nil, fmt.Errorf("twilio credentials are required for the SMS fallback")
		}
		return sms.NewTwilioProvider(cfg.SMS.Twilio.AccountSID, cfg.SMS.Twilio.AuthToken, cfg.SMS.Twilio.FromNumber), nil
	case "aws", "sns":
		provider, err := sms.NewAWSSNSProvider(ctx, cfg.SMS.AWS.Region, cfg.SMS.AWS.SenderID)
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unsupported SMS provider: %s", cfg.SMS.Provider)
	}
}

// NewGeocoder returns nil when reverse geocoding is off.
func NewGeocoder(cfg *config.Config) (maps.Geocoder, error) {
	if !cfg.Alert.GeocodeEnabled {
		return nil, nil
	}
	if cfg.Maps.GoogleMaps.APIKey == "" {
		return nil, fmt.Errorf("GOOGLE_MAPS_API_KEY is required when ALERT_GEOCODE_ENABLED is set")
	}
	geocoder, err := maps.NewGoogleMapsProvider(cfg.Maps.GoogleMaps.APIKey, cfg.Maps.GoogleMaps.Language)
	if err != nil {
		return nil, err
	}
	return geocoder, nil
}

func QueueTopology(cfg *config.QueueConfig) queue.Topology {
	return queue.Topology{
		Exchange:   cfg.Exchange,
		Bindings:   map[string]string{cfg.Queue: cfg.RoutingKey},
		DeadLetter: cfg.DeadLetter,
	}
}
