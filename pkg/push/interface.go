package push

import (
	"context"
	"errors"
)

var (
	// ErrInvalidToken marks a rejection caused by the device token itself
	// (unregistered or malformed) rather than by the gateway.
	ErrInvalidToken = errors.New("push token rejected")
	// ErrGatewayUnavailable is returned while the circuit breaker is open.
	ErrGatewayUnavailable = errors.New("push gateway unavailable")
)

type PushProvider interface {
	SendNotification(ctx context.Context, request *NotificationRequest) (*NotificationResponse, error)
	Name() string
}

type NotificationRequest struct {
	Token       string            `json:"token"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	Data        map[string]string `json:"data,omitempty"`
	Sound       string            `json:"sound,omitempty"`
	Priority    string            `json:"priority,omitempty"`
	TTL         int               `json:"ttl,omitempty"`
	CollapseKey string            `json:"collapse_key,omitempty"`
	IOS         *IOSConfig        `json:"ios,omitempty"`
	Android     *AndroidConfig    `json:"android,omitempty"`
}

type NotificationResponse struct {
	MessageID string `json:"message_id"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	Token     string `json:"token,omitempty"`
	Provider  string `json:"provider,omitempty"`
}

type IOSConfig struct {
	Sound          string `json:"sound,omitempty"`
	Category       string `json:"category,omitempty"`
	InterruptLevel string `json:"interruption_level,omitempty"`
}

type AndroidConfig struct {
	Priority    string `json:"priority,omitempty"`
	Sound       string `json:"sound,omitempty"`
	Color       string `json:"color,omitempty"`
	Tag         string `json:"tag,omitempty"`
	ClickAction string `json:"click_action,omitempty"`
	ChannelID   string `json:"channel_id,omitempty"`
}
