package push

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

type BreakerSettings struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
	OnStateChange       func(name string, from, to gobreaker.State)
}

// BreakerProvider fails fast while the wrapped gateway keeps erroring.
// Token rejections do not count against the gateway.
type BreakerProvider struct {
	next PushProvider
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerProvider(next PushProvider, settings BreakerSettings) *BreakerProvider {
	failures := settings.ConsecutiveFailures
	if failures == 0 {
		failures = 5
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "push-" + next.Name(),
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrInvalidToken)
		},
		OnStateChange: settings.OnStateChange,
	})

	return &BreakerProvider{next: next, cb: cb}
}

func (b *BreakerProvider) Name() string {
	return b.next.Name()
}

func (b *BreakerProvider) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerProvider) SendNotification(ctx context.Context, request *NotificationRequest) (*NotificationResponse, error) {
	var response *NotificationResponse
	_, err := b.cb.Execute(func() (interface{}, error) {
		var sendErr error
		response, sendErr = b.next.SendNotification(ctx, request)
		return response, sendErr
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
		return &NotificationResponse{
			Success:  false,
			Error:    err.Error(),
			Token:    request.Token,
			Provider: b.Name(),
		}, err
	}

	return response, err
}
