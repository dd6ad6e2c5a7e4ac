package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	handlers "github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/handlers/shared"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/utils"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/logger"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &Handlers{
		Alert:          handlers.NewAlertHandler(nil),
		DeviceToken:    handlers.NewDeviceTokenHandler(nil),
		TrustedContact: handlers.NewTrustedContactHandler(nil),
		Notification:   handlers.NewNotificationHandler(nil),
		Health:         handlers.NewHealthHandler("test", nil),
	}
	return NewRouter(RouterConfig{JWTSecret: "routes-secret"}, h, metrics.NewMetrics(prometheus.NewRegistry()), logger.NewNop())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter()

	for _, route := range []struct{ method, path string }{
		{http.MethodPut, "/api/v1/devices/token"},
		{http.MethodPut, "/api/v1/contacts/trusted"},
		{http.MethodPost, "/api/v1/alerts"},
		{http.MethodGet, "/api/v1/alerts/availability"},
		{http.MethodGet, "/api/v1/notifications"},
		{http.MethodPost, "/api/v1/notifications/read-all"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
	}
}

func TestAuthenticatedRequestReachesHandler(t *testing.T) {
	r := newTestRouter()
	token, err := utils.GenerateAccessToken(primitive.NewObjectID(), "ana@example.com", "test", "routes-secret", time.Hour)
	require.NoError(t, err)

	// The handler rejects the malformed body before touching its service.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOperationalEndpoints(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
