package config

import "time"

type PushConfig struct {
	Provider string         `yaml:"provider"`
	FCM      *FCMConfig     `yaml:"fcm"`
	APNS     *APNSConfig    `yaml:"apns"`
	Breaker  *BreakerConfig `yaml:"breaker"`
}

type FCMConfig struct {
	ProjectID   string `yaml:"project_id"`
	Credentials string `yaml:"credentials_file"`
}

type APNSConfig struct {
	KeyID      string `yaml:"key_id"`
	TeamID     string `yaml:"team_id"`
	BundleID   string `yaml:"bundle_id"`
	KeyFile    string `yaml:"key_file"`
	Production bool   `yaml:"production"`
}

// BreakerConfig controls the circuit breaker in front of the push gateway.
type BreakerConfig struct {
	MaxRequests         uint32        `yaml:"max_requests"`
	Interval            time.Duration `yaml:"interval"`
	Timeout             time.Duration `yaml:"timeout"`
	ConsecutiveFailures uint32        `yaml:"consecutive_failures"`
}

func (c *APNSConfig) Configured() bool {
	return c != nil && c.KeyFile != "" && c.KeyID != "" && c.TeamID != ""
}

func loadPushConfig() *PushConfig {
	return &PushConfig{
		Provider: getEnv("PUSH_PROVIDER", "fcm"),
		FCM: &FCMConfig{
			ProjectID:   getEnv("FCM_PROJECT_ID", ""),
			Credentials: getEnv("FCM_CREDENTIALS_FILE", ""),
		},
		APNS: &APNSConfig{
			KeyID:      getEnv("APNS_KEY_ID", ""),
			TeamID:     getEnv("APNS_TEAM_ID", ""),
			BundleID:   getEnv("APNS_BUNDLE_ID", ""),
			KeyFile:    getEnv("APNS_KEY_FILE", ""),
			Production: getEnvAsBool("APNS_PRODUCTION", false),
		},
		Breaker: &BreakerConfig{
			MaxRequests:         uint32(getEnvAsInt("PUSH_BREAKER_MAX_REQUESTS", 1)),
			Interval:            getEnvAsDuration("PUSH_BREAKER_INTERVAL", time.Minute),
			Timeout:             getEnvAsDuration("PUSH_BREAKER_TIMEOUT", 30*time.Second),
			ConsecutiveFailures: uint32(getEnvAsInt("PUSH_BREAKER_CONSECUTIVE_FAILURES", 5)),
		},
	}
}
