package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/utils"
	"github.com/gin-gonic/gin"
)

// Pinger is a dependency the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	version string
	checks  map[string]Pinger
	timeout time.Duration
}

func NewHealthHandler(version string, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{version: version, checks: checks, timeout: 2 * time.Second}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := "healthy"
	components := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			components[name] = "unhealthy: " + err.Error()
			status = "degraded"
			continue
		}
		components[name] = "healthy"
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":     status,
		"version":    h.version,
		"components": components,
		"timestamp":  time.Now().UTC(),
	})
}

// Ready is a liveness probe that never touches dependencies.
func (h *HealthHandler) Ready(c *gin.Context) {
	utils.SuccessResponse(c, "ready", gin.H{"version": h.version})
}
