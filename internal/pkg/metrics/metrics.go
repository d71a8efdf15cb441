/*
Package metrics registers the Prometheus collectors exposed on /metrics.

It covers the HTTP surface (request counts and latencies) and the realtime
gateway (active connections, per-event counters, broadcast delivery failures).
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecotrade_http_requests_total",
			Help: "Total number of HTTP requests processed by the server.",
		},
		[]string{"method", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecotrade_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ecotrade_ws_active_connections",
			Help: "Number of active websocket connections on the gateway.",
		},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecotrade_ws_events_total",
			Help: "Total number of websocket events handled, by event type.",
		},
		[]string{"event"},
	)
	wsDeliveryErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ecotrade_ws_delivery_errors_total",
			Help: "Total number of per-recipient broadcast delivery failures.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		wsActiveConnections,
		wsEventsTotal,
		wsDeliveryErrorsTotal,
	)
}

// Handler returns the HTTP handler serving the Prometheus exposition endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HTTPMiddleware records request counts and latencies for every route.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		httpRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(ww.Status())).Inc()
		httpRequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}

// IncWSActive increments the active websocket connection gauge.
func IncWSActive() {
	wsActiveConnections.Inc()
}

// DecWSActive decrements the active websocket connection gauge.
func DecWSActive() {
	wsActiveConnections.Dec()
}

// IncWSEvent counts one handled websocket event of the given type.
func IncWSEvent(event string) {
	wsEventsTotal.WithLabelValues(event).Inc()
}

// IncWSDeliveryError counts one failed per-recipient broadcast delivery.
func IncWSDeliveryError() {
	wsDeliveryErrorsTotal.Inc()
}
