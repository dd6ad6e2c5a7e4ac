package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of the alert pipeline. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	gatherer prometheus.Gatherer

	// HTTP
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Alerts
	alertsTotal          *prometheus.CounterVec
	notificationsCreated prometheus.Counter
	eventsPublished      *prometheus.CounterVec

	// Delivery
	pushDeliveriesTotal *prometheus.CounterVec
	pushDuration        prometheus.Histogram
	smsFallbackTotal    *prometheus.CounterVec

	// Live feed
	websocketClients prometheus.Gauge
}

// NewMetrics registers the collectors on reg. Passing a fresh registry keeps
// tests isolated from the global default registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		alertsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "panic_alerts_total",
				Help: "Panic alert emissions by outcome",
			},
			[]string{"outcome"},
		),

		notificationsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "notifications_created_total",
				Help: "Notification records appended to inboxes",
			},
		),

		eventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notification_events_published_total",
				Help: "NotificationCreated events handed to the delivery pipeline",
			},
			[]string{"status"},
		),

		pushDeliveriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "push_deliveries_total",
				Help: "Push delivery attempts by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),

		pushDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "push_delivery_duration_seconds",
				Help:    "Time spent handing a message to the push gateway",
				Buckets: prometheus.DefBuckets,
			},
		),

		smsFallbackTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sms_fallback_total",
				Help: "SMS fallback sends by outcome",
			},
			[]string{"outcome"},
		),

		websocketClients: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "websocket_clients",
				Help: "Connected live feed clients",
			},
		),
	}
}

func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) RecordAlert(outcome string) {
	if m == nil {
		return
	}
	m.alertsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordNotificationCreated() {
	if m == nil {
		return
	}
	m.notificationsCreated.Inc()
}

func (m *Metrics) RecordEventPublished(err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.eventsPublished.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordPushDelivery(provider, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.pushDeliveriesTotal.WithLabelValues(provider, outcome).Inc()
	if duration > 0 {
		m.pushDuration.Observe(duration.Seconds())
	}
}

func (m *Metrics) RecordSMSFallback(outcome string) {
	if m == nil {
		return
	}
	m.smsFallbackTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetWebSocketClients(count int) {
	if m == nil {
		return
	}
	m.websocketClients.Set(float64(count))
}

// Middleware records request counts and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
