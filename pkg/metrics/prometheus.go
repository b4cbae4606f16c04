// Package metrics provides Prometheus metrics for the league site and its edge proxy.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the ekcx processes.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Edge Metrics - redirect, proxy and TLS behaviour
	edgeRedirects      prometheus.Counter
	edgeUpstreamErrors *prometheus.CounterVec
	edgeCertReloads    *prometheus.CounterVec

	// Generation Metrics - standings and result sections
	generationRuns     *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	filesParsed        *prometheus.CounterVec
	normalizations     *prometheus.CounterVec
	standingsRiders    *prometheus.GaugeVec
	standingsTeams     prometheus.Gauge

	// Queue Metrics - regeneration triggers
	queueSize      prometheus.Gauge
	queueEnqueued  prometheus.Counter
	queueCoalesced prometheus.Counter
	queueDequeued  prometheus.Counter

	// Worker Metrics
	workerErrors            prometheus.Counter
	workerProcessingLatency prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ekcx",
		subsystem:        "",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// NewMetricsManager is an alias of NewManager.
func NewMetricsManager(opts ...Option) *Manager { return NewManager(opts...) }

// Enabled reports whether the manager records observations.
func (m *Manager) Enabled() bool { return m.enabled }

// RefreshInterval is how often periodic gauges should be refreshed by their owners.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	// HTTP Performance Metrics - User experience indicators
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_requests_total"),
			Help:        "Total number of HTTP requests by handler, method and status code",
			ConstLabels: labels,
		},
		[]string{"handler", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_request_duration_seconds"),
			Help:        "HTTP request duration in seconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"handler", "method", "status_code"},
	)

	m.edgeRedirects = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("edge_redirects_total"),
		Help:        "Total number of plaintext requests redirected to HTTPS",
		ConstLabels: labels,
	})

	m.edgeUpstreamErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("edge_upstream_errors_total"),
			Help:        "Total number of failed upstream round trips by kind (bad_gateway, timeout)",
			ConstLabels: labels,
		},
		[]string{"kind"},
	)

	m.edgeCertReloads = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("edge_cert_reloads_total"),
			Help:        "Total number of certificate reload attempts by result",
			ConstLabels: labels,
		},
		[]string{"result"},
	)

	m.generationRuns = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("generation_runs_total"),
			Help:        "Total number of generation runs by job and result",
			ConstLabels: labels,
		},
		[]string{"job", "result"},
	)

	m.generationDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("generation_duration_seconds"),
			Help:        "Duration of generation runs in seconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"job"},
	)

	m.filesParsed = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("files_parsed_total"),
			Help:        "Total number of result files parsed by kind and result",
			ConstLabels: labels,
		},
		[]string{"kind", "result"},
	)

	m.normalizations = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("normalizations_total"),
			Help:        "Total number of rider and team name normalizations applied",
			ConstLabels: labels,
		},
		[]string{"kind"},
	)

	m.standingsRiders = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("standings_riders"),
			Help:        "Number of riders in the latest standings by category",
			ConstLabels: labels,
		},
		[]string{"category"},
	)

	m.standingsTeams = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("standings_teams"),
		Help:        "Number of teams in the latest team standings",
		ConstLabels: labels,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_size"),
		Help:        "Current number of pending regeneration triggers",
		ConstLabels: labels,
	})

	m.queueEnqueued = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_enqueued_total"),
		Help:        "Total number of regeneration triggers accepted",
		ConstLabels: labels,
	})

	m.queueCoalesced = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_coalesced_total"),
		Help:        "Total number of triggers merged into an already pending one",
		ConstLabels: labels,
	})

	m.queueDequeued = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_dequeued_total"),
		Help:        "Total number of regeneration triggers handed to the worker",
		ConstLabels: labels,
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("worker_errors_total"),
		Help:        "Total number of failed regeneration jobs",
		ConstLabels: labels,
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("worker_processing_seconds"),
		Help:        "Time the worker spends on one regeneration trigger",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(handler, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(handler, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in seconds.
func RecordHTTPRequestDuration(handler, method, statusCode string, seconds float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(handler, method, statusCode).Observe(seconds)
}

// Edge Metrics Functions.

// RecordRedirect increments the HTTPS redirect counter.
func RecordRedirect() {
	if !globalManager.enabled {
		return
	}
	globalManager.edgeRedirects.Inc()
}

// RecordUpstreamError records a failed upstream round trip.
func RecordUpstreamError(kind string) {
	if !globalManager.enabled {
		return
	}
	globalManager.edgeUpstreamErrors.WithLabelValues(kind).Inc()
}

// RecordCertReload records a certificate reload attempt.
func RecordCertReload(ok bool) {
	if !globalManager.enabled {
		return
	}
	globalManager.edgeCertReloads.WithLabelValues(result(ok)).Inc()
}

// Generation Metrics Functions.

// RecordGeneration records one generation run of job.
func RecordGeneration(job string, ok bool, d time.Duration) {
	if !globalManager.enabled {
		return
	}
	globalManager.generationRuns.WithLabelValues(job, result(ok)).Inc()
	globalManager.generationDuration.WithLabelValues(job).Observe(d.Seconds())
}

// RecordFileParsed records one parsed result file of kind (race, section).
func RecordFileParsed(kind string, ok bool) {
	if !globalManager.enabled {
		return
	}
	globalManager.filesParsed.WithLabelValues(kind, result(ok)).Inc()
}

// RecordNormalizations adds n normalizations of kind (rider, team).
func RecordNormalizations(kind string, n int) {
	if !globalManager.enabled || n <= 0 {
		return
	}
	globalManager.normalizations.WithLabelValues(kind).Add(float64(n))
}

// UpdateStandingsRiders sets the rider count for a category.
func UpdateStandingsRiders(category string, count int) {
	globalManager.standingsRiders.WithLabelValues(category).Set(float64(count))
}

// UpdateStandingsTeams sets the team count.
func UpdateStandingsTeams(count int) {
	globalManager.standingsTeams.Set(float64(count))
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueCoalesced increments the coalesced trigger counter.
func RecordQueueCoalesced() {
	globalManager.queueCoalesced.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// Worker Metrics Functions.

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordWorkerProcessingLatency records how long one trigger took.
func RecordWorkerProcessingLatency(d time.Duration) {
	globalManager.workerProcessingLatency.Observe(d.Seconds())
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
