package push

import (
	"context"
	"strings"
)

// Router picks a provider by device platform and falls back to a default
// provider for platforms without a dedicated one.
type Router struct {
	fallback  PushProvider
	platforms map[string]PushProvider
}

func NewRouter(fallback PushProvider) *Router {
	return &Router{
		fallback:  fallback,
		platforms: make(map[string]PushProvider),
	}
}

func (r *Router) Route(platform string, provider PushProvider) {
	r.platforms[strings.ToLower(platform)] = provider
}

func (r *Router) ProviderFor(platform string) PushProvider {
	if provider, ok := r.platforms[strings.ToLower(platform)]; ok {
		return provider
	}
	return r.fallback
}

// Send delivers request through the provider registered for platform.
func (r *Router) Send(ctx context.Context, platform string, request *NotificationRequest) (*NotificationResponse, error) {
	return r.ProviderFor(platform).SendNotification(ctx, request)
}
