// Package metrics holds the Prometheus collectors of the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tripsplit"

// Metrics owns a private registry so tests can create as many as they like.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	splits          *prometheus.CounterVec
	balanceDuration prometheus.Histogram
	balanceIssues   prometheus.Counter
	activityFailed  prometheus.Counter
	wsClients       prometheus.Gauge
	wsDropped       prometheus.Counter
}

// New registers every collector on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		splits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "splits_computed_total",
			Help:      "Expense splits computed by mode.",
		}, []string{"mode"}),
		balanceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "balance_compute_duration_seconds",
			Help:      "Time spent loading and aggregating trip balances.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		balanceIssues: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_input_issues_total",
			Help:      "Suspicious expense or settlement rows seen while aggregating.",
		}),
		activityFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_record_failures_total",
			Help:      "Activity entries that could not be written.",
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_clients",
			Help:      "Connected websocket clients.",
		}),
		wsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_dropped_total",
			Help:      "Broadcasts skipped because a client was too slow.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.splits,
		m.balanceDuration,
		m.balanceIssues,
		m.activityFailed,
		m.wsClients,
		m.wsDropped,
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) SplitComputed(mode string) {
	if m == nil {
		return
	}
	m.splits.WithLabelValues(mode).Inc()
}

func (m *Metrics) BalanceComputed(elapsed time.Duration, issues int) {
	if m == nil {
		return
	}
	m.balanceDuration.Observe(elapsed.Seconds())
	m.balanceIssues.Add(float64(issues))
}

func (m *Metrics) ActivityFailed() {
	if m == nil {
		return
	}
	m.activityFailed.Inc()
}

func (m *Metrics) ClientConnected() {
	if m == nil {
		return
	}
	m.wsClients.Inc()
}

func (m *Metrics) ClientDisconnected() {
	if m == nil {
		return
	}
	m.wsClients.Dec()
}

func (m *Metrics) MessageDropped() {
	if m == nil {
		return
	}
	m.wsDropped.Inc()
}
