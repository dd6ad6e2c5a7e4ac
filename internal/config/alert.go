package config

import "time"

type AlertConfig struct {
	MapLinkBase      string        `yaml:"map_link_base"`
	ProtocolAttempts int           `yaml:"protocol_attempts"`
	GeocodeEnabled   bool          `yaml:"geocode_enabled"`
	GeocodeTimeout   time.Duration `yaml:"geocode_timeout"`
	SMSFallback      bool          `yaml:"sms_fallback"`
	DeliveryGuardTTL time.Duration `yaml:"delivery_guard_ttl"`
	VisibleGenders   []string      `yaml:"visible_genders"`
}

func loadAlertConfig() *AlertConfig {
	return &AlertConfig{
		MapLinkBase:      getEnv("ALERT_MAP_LINK_BASE", "https://www.google.com/maps/search/?api=1&query="),
		ProtocolAttempts: getEnvAsInt("ALERT_PROTOCOL_ATTEMPTS", 3),
		GeocodeEnabled:   getEnvAsBool("ALERT_GEOCODE_ENABLED", false),
		GeocodeTimeout:   getEnvAsDuration("ALERT_GEOCODE_TIMEOUT", 2*time.Second),
		SMSFallback:      getEnvAsBool("ALERT_SMS_FALLBACK", false),
		DeliveryGuardTTL: getEnvAsDuration("ALERT_DELIVERY_GUARD_TTL", 24*time.Hour),
		VisibleGenders:   getEnvAsSlice("ALERT_VISIBLE_GENDERS", []string{"feminino", "female"}),
	}
}
