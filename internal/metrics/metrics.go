package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes application metrics that are safe to scrape via Prometheus.
type Metrics struct {
	registry            *prometheus.Registry
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	streamMessages      *prometheus.CounterVec
	streamReconnects    prometheus.Counter
	streamDropped       prometheus.Counter
	layoutPasses        prometheus.Histogram
	refreshFailures     *prometheus.CounterVec
}

// New creates a fresh Metrics registry with HTTP, stream, and layout metrics
// registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "watchtower",
		Name:      "http_requests_total",
		Help:      "Count of HTTP requests processed by dashd",
	}, []string{"method", "path", "status"})

	httpRequestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "watchtower",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests served by dashd",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	streamMessages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "watchtower",
		Name:      "stream_messages_total",
		Help:      "Stream frames handled, by frame type",
	}, []string{"type"})

	streamReconnects := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "watchtower",
		Name:      "stream_reconnects_total",
		Help:      "Times the stream connection was lost and rescheduled",
	})

	streamDropped := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "watchtower",
		Name:      "stream_dropped_entries_total",
		Help:      "Batch entries dropped for unresolved device identity",
	})

	layoutPasses := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "watchtower",
		Name:      "layout_resolution_passes",
		Help:      "Relaxation passes per layout resolution",
		Buckets:   []float64{1, 2, 3, 5, 10, 20, 50},
	})

	refreshFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "watchtower",
		Name:      "refresh_failures_total",
		Help:      "Periodic refresh failures, by fetch kind",
	}, []string{"kind"})

	registry.MustRegister(
		httpRequests,
		httpRequestDuration,
		streamMessages,
		streamReconnects,
		streamDropped,
		layoutPasses,
		refreshFailures,
	)

	return &Metrics{
		registry:            registry,
		httpRequests:        httpRequests,
		httpRequestDuration: httpRequestDuration,
		streamMessages:      streamMessages,
		streamReconnects:    streamReconnects,
		streamDropped:       streamDropped,
		layoutPasses:        layoutPasses,
		refreshFailures:     refreshFailures,
	}
}

// ObserveHTTPRequest records a single HTTP request/response cycle.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(status),
	}
	m.httpRequests.With(labels).Inc()
	m.httpRequestDuration.With(labels).Observe(duration.Seconds())
}

// IncStreamMessage counts one handled stream frame.
func (m *Metrics) IncStreamMessage(frameType string) {
	if m == nil {
		return
	}
	m.streamMessages.WithLabelValues(frameType).Inc()
}

// IncStreamReconnect counts one lost connection.
func (m *Metrics) IncStreamReconnect() {
	if m == nil {
		return
	}
	m.streamReconnects.Inc()
}

// IncStreamDropped counts one dropped batch entry.
func (m *Metrics) IncStreamDropped() {
	if m == nil {
		return
	}
	m.streamDropped.Inc()
}

// ObserveLayoutPasses records how many passes a layout resolution took.
func (m *Metrics) ObserveLayoutPasses(passes int) {
	if m == nil {
		return
	}
	m.layoutPasses.Observe(float64(passes))
}

// IncRefreshFailure counts a failed periodic fetch.
func (m *Metrics) IncRefreshFailure(kind string) {
	if m == nil {
		return
	}
	m.refreshFailures.WithLabelValues(kind).Inc()
}

// Handler exposes the Prometheus registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("metrics unavailable"))
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
