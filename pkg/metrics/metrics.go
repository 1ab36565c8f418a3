package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Control API metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
		[]string{"service"},
	)

	// Poller metrics
	PollCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poll_cycles_total",
			Help: "Total number of poll cycles per source",
		},
		[]string{"service", "source", "status"},
	)

	PollCycleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poll_cycle_duration_seconds",
			Help:    "Poll cycle duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "source"},
	)

	DetailPollFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "detail_poll_consecutive_failures",
			Help: "Current consecutive failure count of the active ride detail poll",
		},
		[]string{"service"},
	)

	// Engine metrics
	ActiveRideGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "active_ride",
			Help: "1 when an active ride is held, 0 otherwise",
		},
		[]string{"service"},
	)

	OnlineGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rider_online",
			Help: "1 when the rider presence is online, 0 otherwise",
		},
		[]string{"service"},
	)

	StatusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ride_status_transitions_total",
			Help: "Total number of ride status transitions submitted",
		},
		[]string{"service", "to_status", "status"},
	)

	// Gateway metrics
	GatewayCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_calls_total",
			Help: "Total number of remote API calls",
		},
		[]string{"service", "operation", "status"},
	)

	GatewayCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_call_duration_seconds",
			Help:    "Remote API call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "operation"},
	)

	WebSocketConnectionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "websocket_connections_total",
			Help: "Current number of active WebSocket connections",
		},
		[]string{"service"},
	)
)

// RecordHTTPMetrics records HTTP request metrics
func RecordHTTPMetrics(service, method, path string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	HttpRequestsTotal.WithLabelValues(service, method, path, status).Inc()
	HttpRequestDuration.WithLabelValues(service, method, path, status).Observe(duration.Seconds())
}

// RecordPollCycle records the outcome of one poll cycle
func RecordPollCycle(service, source string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	PollCyclesTotal.WithLabelValues(service, source, status).Inc()
	PollCycleDuration.WithLabelValues(service, source).Observe(duration.Seconds())
}

// RecordGatewayCall records remote API call metrics
func RecordGatewayCall(service, operation string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	GatewayCallsTotal.WithLabelValues(service, operation, status).Inc()
	GatewayCallDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}
